package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedTemplate is returned when a template exposes no placeholders.
var ErrMalformedTemplate = errors.New("template has no placeholders")

// MalformedTemplateError reports which template failed field extraction.
type MalformedTemplateError struct {
	Template string
}

func (e *MalformedTemplateError) Error() string {
	if e.Template == "" {
		return ErrMalformedTemplate.Error()
	}
	return fmt.Sprintf("template %q: %s", e.Template, ErrMalformedTemplate)
}

func (e *MalformedTemplateError) Unwrap() error {
	return ErrMalformedTemplate
}

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+?)\}\}`)

// FieldOrder lists placeholder keys in order of first appearance.
type FieldOrder []string

// Index returns the position of key matched case-insensitively, or -1.
func (f FieldOrder) Index(key string) int {
	for i, k := range f {
		if strings.EqualFold(k, key) {
			return i
		}
	}
	return -1
}

// ExtractFields scans text for {{key}} markers and returns the distinct keys.
func ExtractFields(text string) (FieldOrder, error) {
	seen := make(map[string]bool)
	var fields FieldOrder
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		key := strings.TrimSpace(m[1])
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		fields = append(fields, key)
	}
	if len(fields) == 0 {
		return nil, &MalformedTemplateError{}
	}
	return fields, nil
}

// Render substitutes every placeholder with its buffered lines, or [key] when unfilled.
func Render(text string, buffer FieldBuffer) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := strings.TrimSpace(match[2 : len(match)-2])
		if key == "" {
			return match
		}
		lines := buffer[key]
		if len(lines) == 0 {
			return "[" + key + "]"
		}
		return strings.Join(lines, "\n")
	})
}

// Template is a named template text as supplied by a catalog.
type Template struct {
	Name string
	Text string
}
