package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cristianoliveira/soundboard/internal/colors"
	"github.com/cristianoliveira/soundboard/internal/domain"
	"github.com/mattn/go-runewidth"
)

const (
	dataRefPrefix = "data:"
	refPreview    = 24
)

// TableConfig holds configuration for table formatting.
type TableConfig struct {
	// ShowHeaders determines whether to show column headers.
	ShowHeaders bool

	// HeaderColor is the color to use for headers.
	HeaderColor string
}

// DefaultTableConfig returns a default table configuration.
func DefaultTableConfig() *TableConfig {
	return &TableConfig{
		ShowHeaders: true,
		HeaderColor: colors.Blue,
	}
}

// TableColumn represents a column in a table.
type TableColumn struct {
	// Name is the column name displayed in the header.
	Name string

	// Width is the column width in terminal cells.
	Width int

	// Extractor extracts the value from a sound at position i.
	Extractor func(i int, s domain.Sound) string
}

// TableFormatter prints sounds as aligned columns.
type TableFormatter struct {
	config  *TableConfig
	columns []TableColumn
}

// NewTableFormatter creates a TableFormatter with the default columns.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		config: DefaultTableConfig(),
		columns: []TableColumn{
			{Name: "#", Width: 3, Extractor: func(i int, _ domain.Sound) string { return strconv.Itoa(i + 1) }},
			{Name: "Sound", Width: 24, Extractor: func(_ int, s domain.Sound) string { return s.Label() }},
			{Name: "Repeat", Width: 6, Extractor: func(_ int, s domain.Sound) string {
				if s.Repeatable {
					return "yes"
				}
				return "no"
			}},
			{Name: "Audio", Width: 40, Extractor: func(_ int, s domain.Sound) string { return summarizeRef(s.AudioRef) }},
		},
	}
}

// WithColumns adds custom columns to the formatter.
func (f *TableFormatter) WithColumns(columns ...TableColumn) *TableFormatter {
	f.columns = append(f.columns, columns...)
	return f
}

// FormatSounds formats sounds as a table.
func (f *TableFormatter) FormatSounds(sounds []domain.Sound, w io.Writer) error {
	if len(sounds) == 0 {
		return nil
	}
	if f.config.ShowHeaders {
		cells := make([]string, len(f.columns))
		for i, col := range f.columns {
			cells[i] = pad(col.Name, col.Width)
		}
		header := strings.TrimRight(strings.Join(cells, "  "), " ")
		if f.config.HeaderColor != "" {
			header = f.config.HeaderColor + header + colors.Reset
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
	}
	for i, s := range sounds {
		cells := make([]string, len(f.columns))
		for j, col := range f.columns {
			cells[j] = pad(truncateString(col.Extractor(i, s), col.Width), col.Width)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}
	return nil
}

// summarizeRef shortens data: URLs to their media type and size.
func summarizeRef(ref string) string {
	if !strings.HasPrefix(ref, dataRefPrefix) {
		return ref
	}
	media := strings.TrimPrefix(ref, dataRefPrefix)
	if i := strings.IndexAny(media, ";,"); i >= 0 {
		media = media[:i]
	}
	return fmt.Sprintf("%s%s (%d bytes)", dataRefPrefix, media, len(ref))
}

func truncateString(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}
