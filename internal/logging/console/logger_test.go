package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-mdsite/internal/logging"
	"github.com/goliatone/go-mdsite/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := logging.WithFields(provider.GetLogger("mdsite.generator"), map[string]any{"module": "mdsite.generator"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"build_id": "build-1",
	})
	logger = logger.WithContext(ctx)

	pageID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("page.rendered",
		"page_id", pageID,
		"output", "blog/first post.html",
	)

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535897Z INFO page.rendered build_id=build-1 logger=mdsite.generator module=mdsite.generator output="blog/first post.html" page_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("mdsite.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Info("included.info", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "included.info") {
		t.Fatalf("expected info log to be written, got %s", lines[0])
	}
}

func TestConsoleLogger_PositionalArguments(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("x").Error("failed", 42, "value", "err", errors.New("boom"), "dangling")

	got := buf.String()
	for _, want := range []string{"arg_0=value", "err=boom", "arg_4=dangling"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		" info ":  console.LevelInfo,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
		"fatal":   console.LevelFatal,
	}
	for input, want := range cases {
		got, err := console.ParseLevel(input)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", input, got, want)
		}
	}
	if _, err := console.ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
