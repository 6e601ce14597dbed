// Package plaintext reads utf-8 text documents.
package plaintext

import (
	"strings"
	"unicode/utf8"
)

// ExtractText returns the trimmed content of a utf-8 document, or "" for
// binary input.
func ExtractText(raw []byte) string {
	if !utf8.Valid(raw) {
		return ""
	}
	raw = trimBOM(raw)
	return strings.TrimSpace(string(raw))
}

func trimBOM(raw []byte) []byte {
	if len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF {
		return raw[3:]
	}
	return raw
}
