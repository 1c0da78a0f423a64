package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSharedStrings = `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="2" uniqueCount="2">
<si><t>Name</t></si>
<si><t>Age</t></si>
</sst>`

const sampleSheet = `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2"><v>Alice</v></c><c r="B2"><v>30</v></c></row>
</sheetData>
</worksheet>`

func writeTestXlsx(t *testing.T, path string, sharedStrings string, sheets map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	if sharedStrings != "" {
		w, err := zw.Create("xl/sharedStrings.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte(sharedStrings))
		require.NoError(t, err)
	}
	for name, body := range sheets {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestExtractXlsxBodyResolvesSharedStringsAndInlineValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")
	writeTestXlsx(t, path, sampleSharedStrings, map[string]string{
		"xl/worksheets/sheet1.xml": sampleSheet,
	})

	text, ok := extractXlsxBody(path)
	require.True(t, ok)
	assert.Equal(t, "Name,Age\nAlice,30", text)
}

func TestExtractXlsxBodyPicksLowestNumberedSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.xlsx")
	writeTestXlsx(t, path, sampleSharedStrings, map[string]string{
		"xl/worksheets/sheet2.xml": `<?xml version="1.0"?><worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData><row r="1"><c r="A1"><v>wrong sheet</v></c></row></sheetData></worksheet>`,
		"xl/worksheets/sheet1.xml": sampleSheet,
	})

	text, ok := extractXlsxBody(path)
	require.True(t, ok)
	assert.Equal(t, "Name,Age\nAlice,30", text)
}

func TestExtractXlsxBodyLimitsToSixRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "long.xlsx")

	sheet := `<?xml version="1.0"?><worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`
	for i := 0; i < 20; i++ {
		sheet += `<row><c><v>x</v></c></row>`
	}
	sheet += `</sheetData></worksheet>`
	writeTestXlsx(t, path, "", map[string]string{"xl/worksheets/sheet1.xml": sheet})

	text, ok := extractXlsxBody(path)
	require.True(t, ok)
	lines := 1
	for _, c := range text {
		if c == '\n' {
			lines++
		}
	}
	assert.Equal(t, 6, lines)
}

func TestExtractXlsxBodyNoWorksheetFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.xlsx")
	writeTestXlsx(t, path, "", map[string]string{})

	_, ok := extractXlsxBody(path)
	assert.False(t, ok)
}
