// Package format provides output formatting for the favorites commands.
package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cristianoliveira/soundboard/internal/domain"
	"gopkg.in/yaml.v3"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// FormatSounds formats a list of sounds and writes it to w.
	FormatSounds(sounds []domain.Sound, w io.Writer) error
}

// FormatterType represents the type of formatter to use.
type FormatterType string

const (
	// FormatterTypeSimple displays one sound per line: position, label, reference.
	FormatterTypeSimple FormatterType = "simple"

	// FormatterTypeTable displays sounds in a table with headers.
	FormatterTypeTable FormatterType = "table"

	// FormatterTypeJSON displays the persisted JSON records.
	FormatterTypeJSON FormatterType = "json"

	// FormatterTypeYAML displays sounds as a YAML sequence.
	FormatterTypeYAML FormatterType = "yaml"
)

// NewFormatter creates a new formatter of the specified type.
func NewFormatter(formatterType FormatterType) Formatter {
	switch formatterType {
	case FormatterTypeTable:
		return NewTableFormatter()
	case FormatterTypeJSON:
		return jsonFormatter{}
	case FormatterTypeYAML:
		return yamlFormatter{}
	default:
		// Default to simple formatter for unknown types
		return simpleFormatter{}
	}
}

type simpleFormatter struct{}

func (simpleFormatter) FormatSounds(sounds []domain.Sound, w io.Writer) error {
	for i, s := range sounds {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, s.Label(), summarizeRef(s.AudioRef)); err != nil {
			return err
		}
	}
	return nil
}

type jsonFormatter struct{}

func (jsonFormatter) FormatSounds(sounds []domain.Sound, w io.Writer) error {
	if sounds == nil {
		sounds = []domain.Sound{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sounds)
}

type yamlFormatter struct{}

func (yamlFormatter) FormatSounds(sounds []domain.Sound, w io.Writer) error {
	if sounds == nil {
		sounds = []domain.Sound{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sounds); err != nil {
		return err
	}
	return enc.Close()
}
