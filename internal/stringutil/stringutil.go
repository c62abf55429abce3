package stringutil

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	emailPattern       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	titleCaser         = cases.Title(language.English)
	englishPrinter     = message.NewPrinter(language.English)
	specialCharPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// ToSnakeCase converts camelCase or PascalCase to snake_case
func ToSnakeCase(text string) string {
	var builder strings.Builder
	for i, r := range text {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				builder.WriteByte('_')
			}
			builder.WriteRune(r + ('a' - 'A'))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// ToCamelCase converts snake_case to camelCase. The first component is kept
// as-is, subsequent components are title-cased.
func ToCamelCase(text string) string {
	components := strings.Split(text, "_")
	var builder strings.Builder
	builder.WriteString(components[0])
	for _, component := range components[1:] {
		builder.WriteString(titleCaser.String(component))
	}
	return builder.String()
}

// ToTitleCase capitalizes the first letter of each word and lowercases the
// rest
func ToTitleCase(text string) string {
	return titleCaser.String(text)
}

// RemoveSpecialChars strips everything but letters and digits. Characters in
// keepChars survive in addition.
func RemoveSpecialChars(text, keepChars string) string {
	if keepChars == "" {
		return specialCharPattern.ReplaceAllString(text, "")
	}
	pattern, err := regexp.Compile(fmt.Sprintf("[^a-zA-Z0-9%s]", regexp.QuoteMeta(keepChars)))
	if err != nil {
		return specialCharPattern.ReplaceAllString(text, "")
	}
	return pattern.ReplaceAllString(text, "")
}

// Truncate shortens a string to at most length characters, suffix included.
// When the suffix alone does not fit, the text is hard-cut without it.
func Truncate(text string, length int, suffix string) string {
	if len(text) <= length {
		return text
	}
	if length <= 0 {
		return ""
	}
	if length <= len(suffix) {
		return text[:length]
	}
	return text[:length-len(suffix)] + suffix
}

// FormatInt renders an integer with thousands separators
func FormatInt(number int64) string {
	return englishPrinter.Sprintf("%d", number)
}

// FormatFloat renders a float with thousands separators and the given number
// of decimal places
func FormatFloat(number float64, decimals int) string {
	return englishPrinter.Sprintf("%.*f", decimals, number)
}

// Mask replaces the middle of a string with maskChar, exposing the given
// number of characters on each end. Strings short enough to be fully exposed
// are returned unchanged.
func Mask(text, maskChar string, exposeLeft, exposeRight int) string {
	if len(text) <= exposeLeft+exposeRight {
		return text
	}
	return text[:exposeLeft] +
		strings.Repeat(maskChar, len(text)-exposeLeft-exposeRight) +
		text[len(text)-exposeRight:]
}

// IsValidEmail reports whether the string looks like an email address
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
