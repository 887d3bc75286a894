package interfaces

import "context"

// Logger is the leveled logger every mdsite package writes to. Arguments
// after the message are key/value pairs. The method set matches go-logger so
// its loggers can be passed in directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider returns the logger for a module name such as
// "mdsite.generator".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can carry fields, e.g. the
// document path and build id of a page render.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
