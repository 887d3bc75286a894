package markdown

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-mdsite/internal/htmlnode"
	"github.com/goliatone/go-mdsite/internal/markdown/inline"
)

const (
	CodeMalformedInline    = "MARKDOWN_MALFORMED_INLINE"
	CodeMissingTag         = "MARKDOWN_MISSING_TAG"
	CodeMissingValue       = "MARKDOWN_MISSING_VALUE"
	CodeTitleNotFound      = "MARKDOWN_TITLE_NOT_FOUND"
	CodeFrontMatterInvalid = "MARKDOWN_FRONTMATTER_INVALID"
	CodeConversionFailed   = "MARKDOWN_CONVERSION_FAILED"
)

// ErrFrontMatterInvalid marks documents whose front matter failed schema
// validation.
var ErrFrontMatterInvalid = errors.New("markdown: front matter invalid")

// wrapConversionError tags err with a go-errors validation category and a
// text code describing which rule failed. Sentinels stay reachable through
// errors.Is.
func wrapConversionError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "markdown conversion failed").
		WithTextCode(conversionCode(err))
}

func conversionCode(err error) string {
	switch {
	case errors.Is(err, inline.ErrMalformedInlineMarkup):
		return CodeMalformedInline
	case errors.Is(err, htmlnode.ErrMissingTag):
		return CodeMissingTag
	case errors.Is(err, htmlnode.ErrMissingValue):
		return CodeMissingValue
	case errors.Is(err, ErrTitleNotFound):
		return CodeTitleNotFound
	case errors.Is(err, ErrFrontMatterInvalid):
		return CodeFrontMatterInvalid
	default:
		return CodeConversionFailed
	}
}
