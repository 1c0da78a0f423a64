package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

// DOCX and XLSX are both ZIP-packaged OOXML; no pack example wires a
// dedicated library for either, so both are read directly with
// archive/zip + encoding/xml rather than hand-rolling a fake dependency.

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []string `xml:"t"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"body>p"`
}

// docxParagraphTexts returns every non-empty paragraph's joined runs, in
// document order, from word/document.xml.
func docxParagraphTexts(path string) ([]string, bool) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, false
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, false
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false
	}

	var body docxBody
	if err := xml.Unmarshal(data, &body); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(body.Paragraphs))
	for _, p := range body.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			for _, t := range r.Text {
				b.WriteString(t)
			}
		}
		text := strings.TrimSpace(b.String())
		if text != "" {
			out = append(out, text)
		}
	}
	return out, true
}

// extractDocxBody joins every non-empty paragraph, truncated to 5000
// chars (§4.1).
func extractDocxBody(path string) (string, bool) {
	paras, ok := docxParagraphTexts(path)
	if !ok || len(paras) == 0 {
		return "", false
	}
	return truncateRunes(strings.Join(paras, "\n"), 5000), true
}

// extractDocxCover joins the first 10 non-empty paragraphs only.
func extractDocxCover(path string) (string, bool) {
	paras, ok := docxParagraphTexts(path)
	if !ok || len(paras) == 0 {
		return "", false
	}
	if len(paras) > 10 {
		paras = paras[:10]
	}
	return strings.Join(paras, "\n"), true
}
