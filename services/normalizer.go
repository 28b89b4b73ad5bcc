package services

import "strings"

// NormalizePhone reduces a raw phone value to its comparable digit string.
// Non-digits are dropped and a US country code "1" is stripped while more
// than 10 digits remain. Non-numeric input yields "".
//
// The "1" is stripped repeatedly, not once, so "115551234567" becomes
// "5551234567" rather than "15551234567"; this keeps the result stable
// when a normalized value is normalized again.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}

	digits := b.String()
	for len(digits) > 10 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// NumberToText rewrites a decimal-looking value such as "5551234.0" as its
// integer text "5551234". Anything else is returned as is.
func NumberToText(s string) string {
	if strings.Count(s, ".") > 1 {
		return s
	}
	intPart, frac, _ := strings.Cut(s, ".")
	if !isDigits(intPart + frac) {
		return s
	}

	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		return "0"
	}
	return intPart
}

// IsNullLike reports whether s is one of the textual null markers left
// behind by spreadsheet and dataframe exports. Whitespace is significant.
func IsNullLike(s string) bool {
	switch s {
	case "", "NaN", "nan", "NaT":
		return true
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
