package ui

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

var (
	grey  = lipgloss.Color("240")
	pink  = lipgloss.Color("#FF6B9D")
	blue  = lipgloss.Color("4")
	red   = lipgloss.Color("1")
	white = lipgloss.Color("#FFFFFF")

	titleStyle     = lipgloss.NewStyle().Foreground(pink).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(blue).Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(grey).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(red)
	separatorStyle = lipgloss.NewStyle().Foreground(grey)
	clockStyle     = lipgloss.NewStyle().Foreground(grey).Bold(true)

	// Border blend of the field being edited, pink to green and back.
	activeBorder = []color.Color{
		lipgloss.Color("#FF6B9D"),
		lipgloss.Color("#9B59B6"),
		lipgloss.Color("#3498DB"),
		lipgloss.Color("#2ECC71"),
		lipgloss.Color("#FF6B9D"),
	}
)

// fieldBox frames one prompt field.
func fieldBox(active bool) lipgloss.Style {
	s := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if active {
		return s.BorderForegroundBlend(activeBorder...)
	}
	return s.BorderForeground(grey)
}

// pill renders text on a coloured background.
func pill(bg color.Color, bold bool, text string) string {
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(white).
		Bold(bold).
		Padding(0, 1).
		Render(text)
}

// clampLines keeps the first n lines of s.
func clampLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
