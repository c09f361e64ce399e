// Package board loads the sound button grid from a TOML, YAML or JSON file.
package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cristianoliveira/soundboard/internal/colors"
	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultColumns is used when a board does not set columns.
const DefaultColumns = 4

// ErrUnsupportedFormat is returned for board files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported board format")

// Board is the grid of sound buttons.
type Board struct {
	Title   string         `toml:"title" yaml:"title" json:"title"`
	Columns int            `toml:"columns" yaml:"columns" json:"columns"`
	Sounds  []domain.Sound `toml:"sounds" yaml:"sounds" json:"sounds"`
}

// Load reads the board at path. Invalid sounds are skipped and duplicate
// references keep the first occurrence, each reported as a warning. Relative
// audio paths are resolved against the board file's directory.
func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	b, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse board %s: %w", path, err)
	}
	b.resolvePaths(filepath.Dir(path))
	return b, nil
}

// Parse decodes a board from data in the format named by ext.
func Parse(ext string, data []byte) (*Board, error) {
	var b Board
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, &b)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &b)
	case ".json":
		err = json.Unmarshal(data, &b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	b.normalize()
	return &b, nil
}

func (b *Board) normalize() {
	if b.Columns <= 0 {
		b.Columns = DefaultColumns
	}
	for _, s := range b.Sounds {
		if !s.Valid() {
			colors.Warning(fmt.Sprintf("skipping board sound without audio or title: %q", s.Label()))
		}
	}
	sounds, dropped := domain.Dedupe(b.Sounds)
	if dupes := dropped - countInvalid(b.Sounds); dupes > 0 {
		colors.Warning(fmt.Sprintf("skipping %d duplicate board sounds", dupes))
	}
	b.Sounds = sounds
}

func countInvalid(list []domain.Sound) int {
	n := 0
	for _, s := range list {
		if !s.Valid() {
			n++
		}
	}
	return n
}

func (b *Board) resolvePaths(dir string) {
	for i, s := range b.Sounds {
		if isLocalRelative(s.AudioRef) {
			b.Sounds[i].AudioRef = filepath.Join(dir, s.AudioRef)
		}
	}
}

func isLocalRelative(ref string) bool {
	if ref == "" || filepath.IsAbs(ref) {
		return false
	}
	return !strings.Contains(ref, ":")
}

// Sound returns the sound with the given reference.
func (b *Board) Sound(ref string) (domain.Sound, bool) {
	idx := domain.IndexOf(b.Sounds, ref)
	if idx < 0 {
		return domain.Sound{}, false
	}
	return b.Sounds[idx], true
}

// Find returns the sound whose reference is query or whose title matches
// query case-insensitively. References win over titles.
func (b *Board) Find(query string) (domain.Sound, bool) {
	if s, ok := b.Sound(query); ok {
		return s, true
	}
	for _, s := range b.Sounds {
		if strings.EqualFold(s.Title, query) {
			return s, true
		}
	}
	return domain.Sound{}, false
}
