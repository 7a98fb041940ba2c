package domain

import (
	"strings"
	"unicode"
)

// NormalizeHex returns an uppercase #RRGGBB value. Three digit shorthand is
// expanded; anything else is rejected.
func NormalizeHex(raw string) (string, bool) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(value) == 3 {
		value = string([]byte{value[0], value[0], value[1], value[1], value[2], value[2]})
	}
	if len(value) != 6 {
		return "", false
	}
	for _, r := range value {
		if !unicode.Is(unicode.ASCII_Hex_Digit, r) {
			return "", false
		}
	}
	return "#" + strings.ToUpper(value), true
}

// NormalizeBarcode strips separators from a scanned GTIN or SKU.
func NormalizeBarcode(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r == ' ' || r == '-' || r == '.':
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
