package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Chapter One</w:t></w:r></w:p>
<w:p><w:r><w:t>Once upon a </w:t></w:r><w:r><w:t>time.</w:t></w:r></w:p>
<w:p></w:p>
</w:body>
</w:document>`

func writeTestDocx(t *testing.T, path string, documentXML string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestExtractDocxBodyJoinsNonEmptyParagraphs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.docx")
	writeTestDocx(t, path, sampleDocumentXML)

	text, ok := extractDocxBody(path)
	require.True(t, ok)
	assert.Equal(t, "Chapter One\nOnce upon a time.", text)
}

func TestExtractDocxCoverLimitsToTenParagraphs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cover.docx")

	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for i := 0; i < 15; i++ {
		b.WriteString("<w:p><w:r><w:t>line</w:t></w:r></w:p>")
	}
	b.WriteString("</w:body></w:document>")
	writeTestDocx(t, path, b.String())

	text, ok := extractDocxCover(path)
	require.True(t, ok)
	assert.Equal(t, 10, len(strings.Split(text, "\n")))
}

func TestExtractDocxBodyMissingDocumentXMLFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, ok := extractDocxBody(path)
	assert.False(t, ok)
}

func TestExtractDocxBodyNotAZipFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notreally.docx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip file"), 0o644))

	_, ok := extractDocxBody(path)
	assert.False(t, ok)
}
