// Package render draws the soundboard sections. It holds no state; the
// caller passes everything a frame needs.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/soundboard/internal/colors"
)

const (
	buttonWidth    = 18
	buttonGap      = 1
	dropzoneHeight = 3
	grabbedSymbol  = "✋"
	repeatSymbol   = "↻"
	ellipsis       = "…"
)

// ButtonState defines the inputs needed to render one sound button.
type ButtonState struct {
	Label      string
	Progress   float64
	Repeatable bool
	Focused    bool
	Grabbed    bool
	Playing    bool
}

// DropzoneState defines the inputs needed to render the drop zone.
type DropzoneState struct {
	Label    string
	Targeted bool
	Removing bool
	Focused  bool
	Width    int
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ansiColorNumber(colors.Blue)))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(buttonWidth).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Yellow)))
)

// ButtonWidth returns the outer width of a rendered button.
func ButtonWidth() int {
	return lipgloss.Width(buttonStyle.Render(""))
}

// Title renders the board title.
func Title(title string) string {
	if title == "" {
		title = "soundboard"
	}
	return titleStyle.Render(title)
}

// Section renders a section heading.
func Section(name string) string {
	return sectionStyle.Render(name)
}

// Button renders a sound button with its progress bar.
func Button(state ButtonState) string {
	style := buttonStyle
	switch {
	case state.Grabbed:
		style = style.BorderForeground(lipgloss.Color(ansiColorNumber(colors.Yellow)))
	case state.Focused:
		style = style.BorderForeground(lipgloss.Color(ansiColorNumber(colors.Cyan))).Bold(true)
	}

	label := state.Label
	if state.Repeatable {
		label += " " + repeatSymbol
	}
	if state.Grabbed {
		label = grabbedSymbol + " " + label
	}
	inner := buttonWidth - 2
	label = truncate(label, inner)

	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(inner),
		progress.WithoutPercentage(),
	)
	return style.Render(label + "\n" + bar.ViewAs(clampPercent(state.Progress)/100))
}

// Row joins rendered buttons horizontally.
func Row(buttons []string) string {
	if len(buttons) == 0 {
		return ""
	}
	spaced := make([]string, 0, len(buttons)*2-1)
	for i, b := range buttons {
		if i > 0 {
			spaced = append(spaced, strings.Repeat(" ", buttonGap))
		}
		spaced = append(spaced, b)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
}

// Grid lays buttons out in rows of columns.
func Grid(buttons []string, columns int) string {
	if columns <= 0 {
		columns = 1
	}
	var rows []string
	for start := 0; start < len(buttons); start += columns {
		end := start + columns
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, Row(buttons[start:end]))
	}
	return strings.Join(rows, "\n")
}

// Dropzone renders the catch-all drop target.
func Dropzone(state DropzoneState) string {
	width := state.Width
	if width <= 0 {
		width = ButtonWidth() * 2
	}
	border := lipgloss.Color("240")
	switch {
	case state.Removing && state.Targeted:
		border = lipgloss.Color(ansiColorNumber(colors.Red))
	case state.Targeted:
		border = lipgloss.Color(ansiColorNumber(colors.Green))
	case state.Focused:
		border = lipgloss.Color(ansiColorNumber(colors.Cyan))
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Width(width - 2).
		Height(dropzoneHeight - 2).
		Align(lipgloss.Center)
	return style.Render(state.Label)
}

// Status renders a transient status message.
func Status(msg string) string {
	if msg == "" {
		return ""
	}
	return statusStyle.Render(msg)
}

// Empty renders a placeholder for an empty section.
func Empty(msg string) string {
	return sectionStyle.MarginTop(0).Italic(true).Render(msg)
}

// Count renders a section heading with an item count.
func Count(name string, n int) string {
	return Section(fmt.Sprintf("%s (%d)", name, n))
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)+ellipsis) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ellipsis
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}
