package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

var (
	barBg  = lipgloss.Color("#353533")
	planBg = lipgloss.Color("#FF5FAF")
	zoneBg = lipgloss.Color("#6124DF")
	destBg = lipgloss.Color("#7B5EA7")
)

// headerBar is the one-line summary above a plan preview:
// [PLAN] [n messages] ... [destination] [zone]
type headerBar struct {
	plan        string
	destination string
	zone        string
	count       int
	width       int
}

func (h headerBar) View() string {
	noun := "messages"
	if h.count == 1 {
		noun = "message"
	}

	left := pill(planBg, true, strings.ToUpper(h.plan)) +
		pill(barBg, false, fmt.Sprintf("%d %s", h.count, noun))
	right := pill(destBg, true, h.destination) + pill(zoneBg, true, h.zone)

	gap := max(h.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().Background(barBg).Render(strings.Repeat(" ", gap))

	return lipgloss.NewStyle().
		Background(barBg).
		Width(h.width).
		Render(left + filler + right)
}
