package entity

import (
	"regexp"
	"strings"
)

var trailingAnnotation = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// NormalizeSubmission strips a trailing parenthetical annotation such as a
// release year or a department, then trims the remainder.
func NormalizeSubmission(text string) string {
	return strings.TrimSpace(trailingAnnotation.ReplaceAllString(text, ""))
}
