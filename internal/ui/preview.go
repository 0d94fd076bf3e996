package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/danhigham/autotele/internal/domain"
	"github.com/danhigham/autotele/internal/telegram"
)

const defaultPreviewWidth = 80

// PreviewOptions controls RenderPreview.
type PreviewOptions struct {
	Plan        string
	Destination string
	Location    *time.Location
	Width       int
	// Style is a glamour style name or path; "dark" when empty.
	Style string
}

// RenderPreview renders the messages a run would schedule, grouped by day
// with entities shown as markdown.
func RenderPreview(req domain.ScheduleRequest, opts PreviewOptions) (string, error) {
	if opts.Width <= 0 {
		opts.Width = defaultPreviewWidth
	}
	if opts.Style == "" {
		opts.Style = "dark"
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	wordWrap := opts.Width - 2
	if wordWrap < 10 {
		wordWrap = 10
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	var b strings.Builder
	b.WriteString(headerBar{
		plan:        opts.Plan,
		destination: opts.Destination,
		zone:        loc.String(),
		count:       len(req),
		width:       opts.Width,
	}.View())
	b.WriteString("\n")

	if len(req) == 0 {
		b.WriteString(hintStyle.Render("Nothing left to schedule."))
		b.WriteString("\n")
		return b.String(), nil
	}

	times := make([]int64, 0, len(req))
	for ts := range req {
		times = append(times, ts)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	var currentDate string
	for _, ts := range times {
		at := time.Unix(ts, 0).In(loc)
		date := at.Format("Monday, January 2, 2006")
		if date != currentDate {
			b.WriteString("\n")
			b.WriteString(separatorStyle.Render(fmt.Sprintf("───── %s ─────", date)))
			b.WriteString("\n")
			currentDate = date
		}

		msg := req[ts]
		body := renderMessageText(renderer, telegram.EntitiesToMarkdown(msg.Text, msg.Entities))
		fmt.Fprintf(&b, "%s\n%s\n\n", clockStyle.Render(at.Format("15:04")), body)
	}

	return lipgloss.NewStyle().Width(opts.Width).Render(strings.TrimRight(b.String(), "\n")), nil
}

// renderMessageText renders text through glamour one line at a time.
// Glamour joins consecutive lines into one paragraph, which would lose the
// line breaks Telegram keeps. Blank lines separate blocks; list items are
// rendered per line too.
func renderMessageText(r *glamour.TermRenderer, text string) string {
	blocks := strings.Split(text, "\n\n")
	rendered := make([]string, len(blocks))

	for i, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		out := make([]string, len(lines))
		for j, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			out[j] = renderBlock(r, line)
		}
		rendered[i] = strings.Join(out, "\n")
	}

	return strings.Join(rendered, "\n\n")
}

// renderBlock renders a single text block through glamour, trimming whitespace.
func renderBlock(r *glamour.TermRenderer, text string) string {
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	out = strings.TrimRight(out, "\n ")
	out = strings.TrimLeft(out, "\n")
	return out
}
