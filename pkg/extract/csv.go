package extract

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
)

// csvEncodings is the trial order from §4.1: each is attempted in turn
// and the first strict decode wins.
var csvEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"utf-8", nil},
	{"utf-8-sig", unicode.UTF8BOM},
	{"cp949", korean.EUCKR},
	{"euc-kr", korean.EUCKR},
}

// extractCsvBody decodes the file with the first encoding that produces
// valid text, then emits the header plus up to five data rows in the
// same comma-joined/newline-joined shape as XLSX.
func extractCsvBody(path string) (string, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	decoded, ok := decodeCsvBytes(raw)
	if !ok {
		return "", false
	}

	r := csv.NewReader(strings.NewReader(decoded))
	r.FieldsPerRecord = -1
	var rows [][]string
	for len(rows) < 6 {
		rec, err := r.Read()
		if err != nil {
			break
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return "", false
	}

	lines := make([]string, 0, len(rows))
	for _, rec := range rows {
		lines = append(lines, strings.Join(rec, ","))
	}
	return truncateRunes(strings.Join(lines, "\n"), 5000), true
}

func decodeCsvBytes(raw []byte) (string, bool) {
	for _, candidate := range csvEncodings {
		if candidate.enc == nil {
			if utf8.Valid(raw) {
				return strings.TrimPrefix(string(raw), "﻿"), true
			}
			continue
		}
		decoded, err := candidate.enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		if utf8.Valid(decoded) && !bytes.ContainsRune(decoded, utf8.RuneError) {
			return string(decoded), true
		}
	}
	return "", false
}
