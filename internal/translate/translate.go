// Package translate renders stat identifiers and values into display lines.
package translate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrNoLanguage = errors.New("no translations for language")

// Translator renders tags with their values into display lines for lang.
// Tags without a translation produce no line.
type Translator interface {
	Translate(tags []string, values []int64, lang string) ([]string, error)
}

// Static translates from fixed templates: language -> tag -> template.
// "{0}" in a template is replaced by the tag's value.
type Static map[string]map[string]string

func (s Static) Translate(tags []string, values []int64, lang string) ([]string, error) {
	templates, ok := s[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoLanguage, lang)
	}
	if len(values) != len(tags) {
		return nil, fmt.Errorf("translate: %d tags but %d values", len(tags), len(values))
	}
	var lines []string
	for i, tag := range tags {
		tmpl, ok := templates[tag]
		if !ok {
			continue
		}
		lines = append(lines, strings.ReplaceAll(tmpl, "{0}", strconv.FormatInt(values[i], 10)))
	}
	return lines, nil
}

// LoadFile reads a JSON translation file shaped like Static.
func LoadFile(path string) (Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read translations: %w", err)
	}
	var s Static
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}
	return s, nil
}
