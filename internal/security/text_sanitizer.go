// Package security holds input hardening shared by services.
package security

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer reduces user supplied free text to plain text.
type TextSanitizer interface {
	Sanitize(raw string) string
}

// markup matches complete tags, comments and declarations. A "<" outside of these is text.
var markup = regexp.MustCompile(`<(?:/?[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?/?|!--[\s\S]*?--|![A-Za-z][^<>]*)>`)

type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer strips every HTML element and attribute. Issue descriptions and
// addresses are rendered on the admin dashboard, so markup never survives storage.
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize removes markup, restores entities the policy escaped, and trims whitespace.
// A "<" that does not open a tag is kept as written.
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := s.policy.Sanitize(escapeStrayBrackets(raw))
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// escapeStrayBrackets entity-encodes every "<" that is not part of a tag, so the
// parser reads it as text instead of the start of an element.
func escapeStrayBrackets(raw string) string {
	if !strings.Contains(raw, "<") {
		return raw
	}
	tags := markup.FindAllStringIndex(raw, -1)
	var b strings.Builder
	b.Grow(len(raw))
	next := 0
	for i := 0; i < len(raw); i++ {
		for next < len(tags) && tags[next][1] <= i {
			next++
		}
		inTag := next < len(tags) && tags[next][0] <= i
		if raw[i] == '<' && !inTag {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}
