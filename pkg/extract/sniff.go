package extract

import (
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

// sniffedStrategy inspects the first 261 bytes of a file with no
// recognized extension (missing, unusual casing, or simply absent) and
// picks the extraction strategy its magic bytes actually match — the
// supplemental content-sniffing fallback from §4.1. It never runs when
// the extension already matched a known strategy.
func sniffedStrategy(path string) (func(string) (string, bool), bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	head := make([]byte, 261)
	n, _ := f.Read(head)
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return nil, false
	}

	switch kind {
	case matchers.TypePdf:
		return extractPDFBody, true
	case matchers.TypeDocx:
		return extractDocxBody, true
	case matchers.TypeXlsx:
		return extractXlsxBody, true
	case matchers.TypeZip:
		// An office document saved under an unexpected extension is still
		// a ZIP container; try DOCX's paragraph shape before giving up.
		return extractDocxBody, true
	}
	return nil, false
}
