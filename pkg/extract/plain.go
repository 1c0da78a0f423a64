package extract

import (
	"os"
	"strings"
	"unicode/utf8"
)

const maxPlainChars = 5000

// extractPlain reads the first maxPlainChars runes of a TXT/MD file,
// lossily decoding anything that isn't valid UTF-8.
func extractPlain(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	buf := make([]byte, maxPlainChars*4)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return "", false
	}
	return truncateRunes(strings.ToValidUTF8(string(buf[:n]), "�"), maxPlainChars), true
}

// truncateRunes trims s to at most n runes, tolerating invalid UTF-8
// (utf8.RuneCountInString counts each bad byte as one rune, same as a
// lossy decode would).
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	out := make([]rune, 0, n)
	for _, r := range s {
		if len(out) >= n {
			break
		}
		out = append(out, r)
	}
	return string(out)
}
