package sitecmd

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-mdsite/internal/commands"
	"github.com/goliatone/go-mdsite/internal/generator"
	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// BuildSiteHandler runs generator builds.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		result, err := service.Build(ctx, generator.BuildOptions{
			Sources: normalizeSources(msg.Sources),
			Force:   msg.Force,
			DryRun:  msg.DryRun,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result:   result,
			Metadata: map[string]any{"operation": "build"},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Sources) > 0 {
				fields["sources"] = len(msg.Sources)
			}
			if msg.Force {
				fields["force"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DiffSiteHandler performs dry-run builds.
type DiffSiteHandler struct {
	inner *commands.Handler[DiffSiteCommand]
}

func NewDiffSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DiffSiteCommand]) *DiffSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg DiffSiteCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		result, err := service.Build(ctx, generator.BuildOptions{
			Sources: normalizeSources(msg.Sources),
			Force:   msg.Force,
			DryRun:  true,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result:   result,
			Metadata: map[string]any{"operation": "diff"},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[DiffSiteCommand]{
		commands.WithLogger[DiffSiteCommand](baseLogger),
		commands.WithOperation[DiffSiteCommand]("site.diff"),
		commands.WithMessageFields(func(msg DiffSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Sources) > 0 {
				fields["sources"] = len(msg.Sources)
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DiffSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DiffSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[DiffSiteCommand].
func (h *DiffSiteHandler) Execute(ctx context.Context, msg DiffSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears generator artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, _ CleanSiteCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderDocumentHandler renders a single page for previews.
type RenderDocumentHandler struct {
	inner *commands.Handler[RenderDocumentCommand]
}

func NewRenderDocumentHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RenderDocumentCommand]) *RenderDocumentHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RenderDocumentCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		page, err := service.RenderDocument(ctx, strings.TrimSpace(msg.Source))
		if err != nil {
			return err
		}
		if page == nil {
			return errors.New("site render: generator returned no page")
		}
		if msg.Callback != nil {
			msg.Callback(page)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderDocumentCommand]{
		commands.WithLogger[RenderDocumentCommand](baseLogger),
		commands.WithOperation[RenderDocumentCommand]("site.render"),
		commands.WithMessageFields(func(msg RenderDocumentCommand) map[string]any {
			return map[string]any{"source": strings.TrimSpace(msg.Source)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderDocumentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderDocumentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderDocumentCommand].
func (h *RenderDocumentHandler) Execute(ctx context.Context, msg RenderDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

func normalizeSources(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
