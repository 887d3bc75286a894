package sitecmd

import (
	"errors"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-mdsite/internal/generator"
)

const (
	buildSiteMessageType      = "mdsite.site.build"
	diffSiteMessageType       = "mdsite.site.diff"
	cleanSiteMessageType      = "mdsite.site.clean"
	renderDocumentMessageType = "mdsite.site.render"
)

// ResultCallback receives build results produced by generator operations. It
// is invoked synchronously, also when the build reported errors.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a command that produced a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand renders the content tree into the output directory.
type BuildSiteCommand struct {
	// Sources limits the build to content relative Markdown paths.
	Sources        []string       `json:"sources,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

func (m BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Sources, validation.Each(validation.By(sourcePath))),
	)
}

// DiffSiteCommand performs a dry-run build to report what would change.
type DiffSiteCommand struct {
	Sources        []string       `json:"sources,omitempty"`
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (DiffSiteCommand) Type() string { return diffSiteMessageType }

func (m DiffSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Sources, validation.Each(validation.By(sourcePath))),
	)
}

// CleanSiteCommand removes generated output and forgets the manifest.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// RenderDocumentCommand renders one source into a full page without writing
// it anywhere.
type RenderDocumentCommand struct {
	Source   string                        `json:"source"`
	Callback func(*generator.RenderedPage) `json:"-"`
}

// Type implements command.Message.
func (RenderDocumentCommand) Type() string { return renderDocumentMessageType }

func (m RenderDocumentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Source, validation.Required, validation.By(sourcePath)),
	)
}

var (
	errSourceBlank     = validation.NewError("mdsite.site.source_blank", "source must not be blank")
	errSourceExtension = validation.NewError("mdsite.site.source_extension", "source must be a .md file")
	errSourceEscapes   = validation.NewError("mdsite.site.source_escapes", "source must stay inside the content directory")
)

func sourcePath(value any) error {
	source, ok := value.(string)
	if !ok {
		return errors.New("source must be a string")
	}
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return errSourceBlank
	}
	clean := path.Clean(strings.ReplaceAll(trimmed, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return errSourceEscapes
	}
	if !strings.HasSuffix(clean, ".md") {
		return errSourceExtension
	}
	return nil
}
