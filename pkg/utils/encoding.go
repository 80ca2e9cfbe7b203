package utils

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// mojibakeCharsets are the single-byte encodings UTF-8 text is most often misread as
var mojibakeCharsets = []encoding.Encoding{charmap.Windows1252, charmap.ISO8859_1}

// RepairMojibake recovers text that was stored as UTF-8 but decoded with a
// single-byte charset ("SÃ£o Paulo" becomes "São Paulo"). The repair is a
// heuristic: when no charset yields valid UTF-8 the input is returned as is.
func RepairMojibake(s string) string {
	if isASCII(s) {
		return s
	}
	for _, cs := range mojibakeCharsets {
		if fixed, ok := reencode(s, cs); ok {
			return fixed
		}
	}
	return s
}

// RepairMapStrings applies RepairMojibake to every string value of m in place
func RepairMapStrings(m map[string]any) {
	for k, v := range m {
		if s, ok := v.(string); ok {
			m[k] = RepairMojibake(s)
		}
	}
}

func reencode(s string, cs encoding.Encoding) (string, bool) {
	raw, err := cs.NewEncoder().String(s)
	if err != nil || raw == s || !utf8.ValidString(raw) {
		return "", false
	}
	return raw, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
