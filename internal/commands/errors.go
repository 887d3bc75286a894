package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to command failures.
const (
	CodeInvalidMessage = "MDSITE_COMMAND_INVALID"
	CodeCanceled       = "MDSITE_COMMAND_CANCELED"
	CodeTimedOut       = "MDSITE_COMMAND_TIMEOUT"
	CodeInterrupted    = "MDSITE_COMMAND_INTERRUPTED"
	CodeFailed         = "MDSITE_COMMAND_FAILED"
)

// tag wraps err unless it already carries a go-errors category, so failures
// categorised below the command layer (front matter validation, conversion
// errors) surface unchanged.
func tag(err error, category goerrors.Category, msg, code string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, msg).WithTextCode(code)
}

func wrapValidationError(err error) error {
	return tag(err, goerrors.CategoryValidation, "invalid site command", CodeInvalidMessage)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return tag(err, goerrors.CategoryCommand, "site command canceled", CodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return tag(err, goerrors.CategoryCommand, "site command timed out", CodeTimedOut)
	default:
		return tag(err, goerrors.CategoryCommand, "site command interrupted", CodeInterrupted)
	}
}

func wrapExecuteError(err error) error {
	return tag(err, goerrors.CategoryCommand, "site command failed", CodeFailed)
}
