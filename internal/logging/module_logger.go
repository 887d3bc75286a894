package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

const (
	rootModule      = "mdsite"
	markdownModule  = "mdsite.markdown"
	generatorModule = "mdsite.generator"
	manifestModule  = "mdsite.manifest"
)

// CommandsModule prefixes the per group command loggers.
const CommandsModule = "mdsite.commands"

const (
	fieldDocumentPath = "document_path"
	fieldBuildID      = "build_id"
	fieldAction       = "action"
)

// ModuleLogger returns a logger scoped to module and tagged with a "module"
// field. A nil provider yields NoOp.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if strings.TrimSpace(module) == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

func ManifestLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, manifestModule)
}

// WithDocumentContext annotates logger with the document path, build id and
// action. Blank values are skipped.
func WithDocumentContext(logger interfaces.Logger, path, buildID, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(buildID); trimmed != "" {
		fields[fieldBuildID] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
