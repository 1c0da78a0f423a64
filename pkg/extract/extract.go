// Package extract pulls partial, classification-sized text samples out
// of documents: a body sample for Tier-1/Tier-2/Tier-3 classification,
// and a first-page sample for cover-page detection and grouping.
package extract

import (
	"path/filepath"
	"strings"
)

// ExtractText returns a bounded text sample for the file at path, using
// the format-specific strategy from §4.1. The second return is false on
// any failure: missing library, corrupt file, external-tool timeout, or
// an extension with no strategy and no sniffable fallback.
func ExtractText(path string) (string, bool) {
	switch ext(path) {
	case ".pdf":
		return extractPDFBody(path)
	case ".docx":
		return extractDocxBody(path)
	case ".xlsx":
		return extractXlsxBody(path)
	case ".csv":
		return extractCsvBody(path)
	case ".txt", ".md":
		return extractPlain(path)
	case ".doc":
		return extractDocBody(path)
	}
	if strategy, ok := sniffedStrategy(path); ok {
		return strategy(path)
	}
	return "", false
}

// ExtractCoverText reads only the first page/paragraph block and returns
// it when IsCoverPage accepts it; otherwise it reports false even if the
// read itself succeeded.
func ExtractCoverText(path string) (string, bool) {
	var candidate string
	var ok bool

	switch ext(path) {
	case ".pdf":
		candidate, ok = extractPDFCover(path)
	case ".docx":
		candidate, ok = extractDocxCover(path)
	default:
		return "", false
	}
	if !ok {
		return "", false
	}
	candidate = strings.TrimSpace(candidate)
	if !IsCoverPage(candidate) {
		return "", false
	}
	return candidate, true
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
