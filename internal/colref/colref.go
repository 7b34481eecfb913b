// Package colref converts between zero-based column indices and the
// spreadsheet-style letter labels ("A".."Z", "AA".."ZZ", ...) used by
// the terminal UI and CSV import/export, over the full column range
// the grid allows rather than a hardcoded single/double-letter cap.
package colref

import "strings"

// Label renders a zero-based column index as its spreadsheet letter
// name: 0->"A", 25->"Z", 26->"AA".
func Label(col int) string {
	var b strings.Builder
	col++ // switch to the 1-based alphabet used by the encoding
	var letters []byte
	for col > 0 {
		col--
		letters = append(letters, byte('A'+col%26))
		col /= 26
	}
	for i := len(letters) - 1; i >= 0; i-- {
		b.WriteByte(letters[i])
	}
	return b.String()
}

// Parse is the inverse of Label: it reads a run of uppercase letters
// and returns the zero-based column index they encode.
func Parse(label string) (int, bool) {
	if label == "" {
		return 0, false
	}
	col := 0
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c < 'A' || c > 'Z' {
			return 0, false
		}
		col = col*26 + int(c-'A'+1)
	}
	return col - 1, true
}
