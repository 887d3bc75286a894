// Package markdown turns Markdown sources into HTML fragments.
//
// The builtin engine splits a document into blank-line separated blocks,
// classifies each one (heading, code, quote, lists, paragraph), compiles it to
// an htmlnode tree and renders that tree inside a single div. Inline markup is
// handled by the inline subpackage. A goldmark backed parser is available for
// content that needs full CommonMark.
//
// On top of the engines the package provides front matter parsing, a
// filesystem loader and a Service that resolves titles, validates metadata and
// renders documents for the site generator.
package markdown
