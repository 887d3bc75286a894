package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

type fieldsKey struct{}

// WithFields returns logger with fields attached when it implements
// interfaces.FieldsLogger, otherwise logger itself.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fl, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fl.WithFields(maps.Clone(fields))
}

// ContextWithFields layers fields over the ones already stored on ctx. Loggers
// bound with WithContext merge them into every entry.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// ContextWithBuild tags ctx with the build id so document level logs emitted
// below the generator can be correlated with their build.
func ContextWithBuild(ctx context.Context, buildID string) context.Context {
	if buildID == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{"build_id": buildID})
}

// ContextFields returns a copy of the fields stored on ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}
