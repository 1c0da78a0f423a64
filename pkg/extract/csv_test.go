package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestExtractCsvBodyUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age\nAlice,30\nBob,40\n"), 0o644))

	text, ok := extractCsvBody(path)
	require.True(t, ok)
	assert.Equal(t, "name,age\nAlice,30\nBob,40", text)
}

func TestExtractCsvBodyUTF8BOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.csv")
	content := append([]byte("\xef\xbb\xbf"), []byte("a,b\n1,2\n")...)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	text, ok := extractCsvBody(path)
	require.True(t, ok)
	assert.Equal(t, "a,b\n1,2", text)
}

func TestExtractCsvBodyEUCKR(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.csv")
	encoded, err := korean.EUCKR.NewEncoder().String("이름,나이\n홍길동,30\n")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	text, ok := extractCsvBody(path)
	require.True(t, ok)
	assert.Contains(t, text, "홍길동")
}

func TestExtractCsvBodyLimitsToSixRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d.csv")
	var content string
	for i := 0; i < 20; i++ {
		content += "col1,col2\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	text, ok := extractCsvBody(path)
	require.True(t, ok)
	assert.Len(t, splitLines(text), 6)
}

func TestExtractCsvBodyMissingFileReturnsFalse(t *testing.T) {
	_, ok := extractCsvBody("/nonexistent/path.csv")
	assert.False(t, ok)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
