// Package plan expands recurring message plans into concrete schedule
// requests.
package plan

import (
	"fmt"
	"sort"
	"time"
	_ "time/tzdata" // plans name fixed zones

	"github.com/araddon/dateparse"
	"github.com/robfig/cron"

	"github.com/danhigham/autotele/internal/domain"
)

// Window returns the half-open interval [from, to) a plan covers for a
// reference time.
type Window func(ref time.Time) (from, to time.Time)

// NextDay covers the calendar day after ref.
func NextDay(ref time.Time) (time.Time, time.Time) {
	y, m, d := ref.Date()
	from := time.Date(y, m, d+1, 0, 0, 0, 0, ref.Location())
	return from, from.AddDate(0, 0, 1)
}

// Month covers the calendar month of ref.
func Month(ref time.Time) (time.Time, time.Time) {
	y, m, _ := ref.Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
	return from, from.AddDate(0, 1, 0)
}

// Entry is one recurring message. Cron is a five-field cron expression
// evaluated in the plan's location.
type Entry struct {
	Cron    string
	Message domain.Message
}

type Plan struct {
	Name string
	// Channel is the secrets key prefix of the destination, "angelus"
	// for angelus_channel.
	Channel  string
	Location *time.Location
	Window   Window
	Entries  []Entry
}

// Occurrence is a single planned delivery.
type Occurrence struct {
	At      time.Time
	Message domain.Message
}

// Occurrences lists every delivery of the plan inside its window for ref,
// in time order.
func (p Plan) Occurrences(ref time.Time) ([]Occurrence, error) {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	window := p.Window
	if window == nil {
		window = NextDay
	}
	from, to := window(ref.In(loc))

	var out []Occurrence
	for _, e := range p.Entries {
		sched, err := cron.ParseStandard(e.Cron)
		if err != nil {
			return nil, fmt.Errorf("plan %s: entry %q: %w", p.Name, e.Cron, err)
		}
		for t := sched.Next(from.Add(-time.Second)); !t.IsZero() && t.Before(to); t = sched.Next(t) {
			out = append(out, Occurrence{At: t, Message: e.Message})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

// Build returns the schedule request for ref, keeping only deliveries
// after now. Entries landing on the same second keep the later one.
func (p Plan) Build(ref, now time.Time) (domain.ScheduleRequest, error) {
	occ, err := p.Occurrences(ref)
	if err != nil {
		return nil, err
	}
	req := make(domain.ScheduleRequest, len(occ))
	for _, o := range occ {
		if !o.At.After(now) {
			continue
		}
		req[o.At.Unix()] = o.Message
	}
	return req, nil
}

// ParseDate reads a free-text date override in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
