package extract

import (
	"os"
	"sort"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// extractPDFBody implements §4.1's skip-front-matter, four-ratio sampling
// strategy: pages are 1-indexed in unipdf, kept 0-indexed internally to
// mirror the ratio math in text_extractor.py.
func extractPDFBody(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	reader, err := model.NewPdfReaderLazy(f)
	if err != nil {
		return "", false
	}
	total, err := reader.GetNumPages()
	if err != nil || total == 0 {
		return "", false
	}

	start := 0
	if total >= 3 {
		start = 2
	}
	effective := make([]int, 0, total-start)
	for i := start; i < total; i++ {
		effective = append(effective, i)
	}
	if len(effective) == 0 {
		return "", false
	}

	var chunks []string
	if len(effective) < 4 {
		for _, idx := range effective {
			text, ok := pageText(reader, idx+1)
			if ok {
				chunks = append(chunks, truncateRunes(text, 1200))
			}
		}
	} else {
		n := len(effective)
		seen := map[int]bool{}
		var indices []int
		for _, ratio := range []float64{0.30, 0.45, 0.65, 0.85} {
			pick := int(ratio * float64(n))
			if pick >= n {
				pick = n - 1
			}
			idx := effective[pick]
			if !seen[idx] {
				seen[idx] = true
				indices = append(indices, idx)
			}
		}
		sort.Ints(indices)
		for _, idx := range indices {
			text, ok := pageText(reader, idx+1)
			if ok {
				chunks = append(chunks, truncateRunes(text, 300))
			}
		}
	}

	if len(chunks) == 0 {
		return "", false
	}
	return joinLines(chunks), true
}

// extractPDFCover reads page 1 only, for §4.1's cover-text extraction.
func extractPDFCover(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	reader, err := model.NewPdfReaderLazy(f)
	if err != nil {
		return "", false
	}
	total, err := reader.GetNumPages()
	if err != nil || total == 0 {
		return "", false
	}
	return pageText(reader, 1)
}

func pageText(reader *model.PdfReader, pageNum int) (string, bool) {
	page, err := reader.GetPage(pageNum)
	if err != nil {
		return "", false
	}
	ex, err := extractor.New(page)
	if err != nil {
		return "", false
	}
	text, err := ex.ExtractText()
	if err != nil {
		return "", false
	}
	return text, true
}

func joinLines(chunks []string) string {
	out := chunks[0]
	for _, c := range chunks[1:] {
		out += "\n" + c
	}
	return out
}
