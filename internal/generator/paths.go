package generator

import (
	"path"
	"strings"
)

const (
	sourceExt = ".md"
	outputExt = ".html"
)

// OutputPath maps a content relative source path onto its output path by
// swapping a trailing ".md" for ".html". Only the extension changes, so
// "notes.md.bak" stays intact apart from the appended ".html".
func OutputPath(source string) string {
	clean := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(source)), "/")
	if strings.HasSuffix(clean, sourceExt) {
		return strings.TrimSuffix(clean, sourceExt) + outputExt
	}
	return clean + outputExt
}

// pageRoute is the public URL path of an output file.
func pageRoute(basePath, output string) string {
	return NormalizeBasePath(basePath) + strings.TrimPrefix(output, "/")
}
