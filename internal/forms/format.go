// internal/forms/format.go
package forms

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	spacesPattern   = regexp.MustCompile(`\s+`)
	alnumPattern    = regexp.MustCompile(`[^a-zA-Z0-9]`)
	nonDigitPattern = regexp.MustCompile(`[^0-9]`)
	nonUpperPattern = regexp.MustCompile(`[^A-Z]`)
)

// FormatName normalizes a name as it is typed: all whitespace removed
// (internal included), first rune uppercased, the rest lowercased.
func FormatName(name string) string {
	if name == "" {
		return ""
	}
	cleaned := spacesPattern.ReplaceAllString(strings.TrimSpace(name), "")
	if cleaned == "" {
		return cleaned
	}
	runes := []rune(cleaned)
	head := string(unicode.ToUpper(runes[0]))
	tail := strings.ToLower(string(runes[1:]))
	return head + tail
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FormatBI progressively reformats identity-card input. The grammar is 9
// digits, 2 uppercase letters, 3 digits; characters of the wrong class for
// their position are dropped rather than rejected, and the result never
// exceeds 14 characters.
func FormatBI(input string) string {
	cleaned := strings.ToUpper(alnumPattern.ReplaceAllString(input, ""))
	length := len(cleaned)

	var formatted string
	switch {
	case length <= 9:
		formatted = nonDigitPattern.ReplaceAllString(cleaned, "")
	case length <= 11:
		numbers := nonDigitPattern.ReplaceAllString(cleaned[:9], "")
		letters := nonUpperPattern.ReplaceAllString(cleaned[9:], "")
		formatted = numbers + letters
	default:
		numbers := nonDigitPattern.ReplaceAllString(cleaned[:9], "")
		letters := nonUpperPattern.ReplaceAllString(cleaned[9:11], "")
		finalNumbers := nonDigitPattern.ReplaceAllString(cleaned[11:], "")
		formatted = numbers + letters + finalNumbers
	}

	if len(formatted) > 14 {
		formatted = formatted[:14]
	}
	return formatted
}

// BIPlaceholder builds the dynamic input hint: typed characters followed by
// the remaining template (0 for digit slots, X for letter slots).
func BIPlaceholder(bi string) string {
	length := len(bi)

	switch {
	case length <= 9:
		return bi + strings.Repeat("0", 9-length) + "XX000"
	case length <= 11:
		numbers := bi[:9]
		letters := bi[9:]
		return numbers + letters + strings.Repeat("X", 2-len(letters)) + "000"
	default:
		numbers := bi[:9]
		letters := bi[9:11]
		finalNumbers := bi[11:]
		return numbers + letters + finalNumbers + strings.Repeat("0", 3-len(finalNumbers))
	}
}
