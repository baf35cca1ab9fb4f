// Package narrative normalises raw complaint narratives before chunking:
// redaction markers, date scrubbing, boilerplate removal, and whitespace
// collapse.
package narrative

import (
	"regexp"
	"strings"
)

// Cleaning patterns, compiled once.
var (
	// Dates like 01/15/2023 or xx/xx/xxxx as submitted by consumers.
	datePattern = regexp.MustCompile(`(\d{2}|\w{2})/(\d{2}|\w{2})/(\d{4}|\w{4})`)

	// Runs of two or more x characters are the regulator's redaction marker.
	redactedPattern = regexp.MustCompile(`\b(x{2,})\b`)

	// Whitespace runs collapse to a single space.
	whitespacePattern = regexp.MustCompile(`\s+`)

	// Formulaic complaint openers carry no signal for retrieval.
	boilerplatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^i am writing to file a complaint`),
		regexp.MustCompile(`(?i)^to whom it may concern`),
		regexp.MustCompile(`(?i)^complaint against`),
		regexp.MustCompile(`(?i)^this is a complaint regarding`),
	}
)

// Normaliser cleans complaint narrative text.
type Normaliser struct{}

// New creates a new narrative normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise returns the cleaned form of a raw narrative. Empty input
// yields an empty string.
func (n *Normaliser) Normalise(text string) string {
	return Clean(text)
}

// Clean applies the full cleaning pipeline to one narrative:
// byte-literal unwrapping, lowercasing, date and redaction markers,
// boilerplate stripping, and whitespace collapse.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	// Exports occasionally carry Python byte-literal wrappers.
	if strings.HasPrefix(text, "b'") || strings.HasPrefix(text, `b"`) {
		text = text[2:]
		text = strings.TrimSuffix(strings.TrimSuffix(text, "'"), `"`)
	}

	text = strings.ToLower(text)
	text = datePattern.ReplaceAllString(text, "[DATE]")
	text = redactedPattern.ReplaceAllString(text, "[REDACTED]")

	for _, pattern := range boilerplatePatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
