package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"
)

type sharedStringItem struct {
	Text string `xml:"t"`
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

type sharedStrings struct {
	Items []sharedStringItem `xml:"si"`
}

type sheetCell struct {
	Ref  string `xml:"r,attr"`
	Type string `xml:"t,attr"`
	V    string `xml:"v"`
}

type sheetRow struct {
	Cells []sheetCell `xml:"c"`
}

type sheetData struct {
	Rows []sheetRow `xml:"sheetData>row"`
}

// extractXlsxBody reads the first worksheet's header row plus the next
// five data rows, cells comma-joined per row and rows newline-joined,
// truncated to 5000 chars (§4.1). Cell values are read as cached/computed
// text, never as formulas.
func extractXlsxBody(path string) (string, bool) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", false
	}
	defer zr.Close()

	strs := loadSharedStrings(zr)
	sheetFile := firstWorksheet(zr)
	if sheetFile == nil {
		return "", false
	}

	rc, err := sheetFile.Open()
	if err != nil {
		return "", false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", false
	}

	var sd sheetData
	if err := xml.Unmarshal(data, &sd); err != nil {
		return "", false
	}
	if len(sd.Rows) == 0 {
		return "", false
	}

	limit := len(sd.Rows)
	if limit > 6 {
		limit = 6
	}
	lines := make([]string, 0, limit)
	for _, row := range sd.Rows[:limit] {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, cellValue(c, strs))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return truncateRunes(strings.Join(lines, "\n"), 5000), true
}

func loadSharedStrings(zr *zip.ReadCloser) []string {
	for _, f := range zr.File {
		if f.Name == "xl/sharedStrings.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil
			}
			var ss sharedStrings
			if err := xml.Unmarshal(data, &ss); err != nil {
				return nil
			}
			out := make([]string, len(ss.Items))
			for i, item := range ss.Items {
				if item.Text != "" {
					out[i] = item.Text
					continue
				}
				var b strings.Builder
				for _, r := range item.Runs {
					b.WriteString(r.Text)
				}
				out[i] = b.String()
			}
			return out
		}
	}
	return nil
}

// firstWorksheet picks the sheetN.xml under xl/worksheets/ whose name sorts
// first as a string (sheet1.xml when present), standing in for "the active sheet" — OOXML's
// actual active-tab bit lives in workbook.xml's <workbookView> and isn't
// worth a second parse pass for this best-effort extractor.
func firstWorksheet(zr *zip.ReadCloser) *zip.File {
	var candidates []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	return candidates[0]
}

func cellValue(c sheetCell, strs []string) string {
	if c.Type == "s" {
		idx, err := strconv.Atoi(c.V)
		if err != nil || idx < 0 || idx >= len(strs) {
			return ""
		}
		return strs[idx]
	}
	return c.V
}
