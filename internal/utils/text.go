package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// HasMarkup reports whether s carries HTML tags. Entities and a lone "<" in
// running text are not markup, so "Smith &amp; Sons" and "a < b" pass.
func HasMarkup(s string) bool {
	return html.UnescapeString(strict.Sanitize(s)) != html.UnescapeString(s)
}

// TrimOptional trims an optional field. Blank values become nil.
func TrimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// KeepOptional returns s unchanged unless it is blank, in which case it
// returns nil.
func KeepOptional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
