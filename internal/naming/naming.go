// Package naming derives generated file stems from interface type names.
package naming

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// an upper case letter starting a lower case run, preceded by anything
	wordStart = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	// an upper case letter preceded by a lower case letter or a digit
	wordBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// LowerUnderscore converts a CamelCase interface name to its
// lower_case_underscore file stem, e.g. "MultiWord123Name" becomes
// "multi_word123_name". Digits stay attached to the word before them and
// acronyms are kept together ("HTTPHeader" becomes "http_header").
func LowerUnderscore(name string) string {
	s := wordStart.ReplaceAllString(name, "${1}_${2}")
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// Words returns the lower case words LowerUnderscore splits name into.
func Words(name string) []string {
	stem := LowerUnderscore(name)
	if stem == "" {
		return nil
	}
	return strings.Split(stem, "_")
}

// CamelCase re-capitalizes each word of a lower_case_underscore stem and
// concatenates them.
func CamelCase(stem string) string {
	var sb strings.Builder
	for _, word := range strings.Split(stem, "_") {
		if word == "" {
			continue
		}
		runes := []rune(word)
		sb.WriteRune(unicode.ToUpper(runes[0]))
		sb.WriteString(string(runes[1:]))
	}
	return sb.String()
}
