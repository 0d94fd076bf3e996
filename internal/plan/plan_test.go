package plan_test

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhigham/autotele/internal/domain"
	"github.com/danhigham/autotele/internal/plan"
)

func unixTimes(t *testing.T, req domain.ScheduleRequest, loc *time.Location) []string {
	t.Helper()
	var out []string
	for ts := range req {
		out = append(out, time.Unix(ts, 0).In(loc).Format("2006-01-02 15:04"))
	}
	sort.Strings(out)
	return out
}

func TestMassBooking_EveryTuesdayOfMonth(t *testing.T) {
	p := plan.MassBooking()
	ref := time.Date(2026, time.October, 15, 12, 0, 0, 0, plan.Singapore)

	occ, err := p.Occurrences(ref)
	require.NoError(t, err)

	var got []string
	for _, o := range occ {
		got = append(got, o.At.Format("2006-01-02 15:04 Mon"))
	}
	assert.Equal(t, []string{
		"2026-10-06 09:00 Tue",
		"2026-10-13 09:00 Tue",
		"2026-10-20 09:00 Tue",
		"2026-10-27 09:00 Tue",
	}, got)
}

func TestMassBooking_OnlyFutureOccurrences(t *testing.T) {
	p := plan.MassBooking()
	now := time.Date(2026, time.October, 19, 10, 0, 0, 0, plan.Singapore)

	req, err := p.Build(now, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-20 09:00", "2026-10-27 09:00"}, unixTimes(t, req, plan.Singapore))
}

func TestMassBooking_ZoneIndependentOfCaller(t *testing.T) {
	p := plan.MassBooking()
	// 20:00 UTC on 30 September is already 1 October in Singapore.
	ref := time.Date(2026, time.September, 30, 20, 0, 0, 0, time.UTC)

	occ, err := p.Occurrences(ref)
	require.NoError(t, err)
	require.NotEmpty(t, occ)
	assert.Equal(t, time.October, occ[0].At.Month())
	assert.Equal(t, time.Date(2026, time.October, 6, 1, 0, 0, 0, time.UTC).Unix(), occ[0].At.Unix())
}

func TestMassBooking_Entities(t *testing.T) {
	msg := plan.MassBooking().Entries[0].Message
	require.Len(t, msg.Entities, 4)

	// The text is ASCII, so byte offsets equal UTF-16 offsets.
	covers := []struct {
		kind domain.EntityKind
		sub  string
	}{
		{domain.EntityURL, "https://mycatholic.sg"},
		{domain.EntityUnderline, "Churches with Mass Booking Time starting at 9am"},
		{domain.EntityUnderline, "Churches with Mass Booking Time starting at 12pm"},
		{domain.EntityUnderline, "Churches with Mass Booking Time starting at 3pm"},
	}
	for i, c := range covers {
		e := msg.Entities[i]
		assert.Equal(t, c.kind, e.Kind, c.sub)
		assert.Equal(t, strings.Index(msg.Text, c.sub), e.Offset, c.sub)
		assert.Equal(t, len(c.sub), e.Length, c.sub)
		assert.Equal(t, c.sub, msg.Text[e.Offset:e.Offset+e.Length])
	}

	assert.Equal(t, 60, msg.Entities[0].Offset)
	assert.Equal(t, 83, msg.Entities[1].Offset)
}

func TestAngelus_Tomorrow(t *testing.T) {
	loc := time.FixedZone("SGT", 8*60*60)
	p := plan.Angelus(loc)
	now := time.Date(2026, time.October, 19, 21, 0, 0, 0, loc)

	req, err := p.Build(now, now)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2026-10-20 06:00",
		"2026-10-20 12:00",
		"2026-10-20 18:00",
		"2026-10-20 22:30",
	}, unixTimes(t, req, loc))

	examen := req[time.Date(2026, time.October, 20, 22, 30, 0, 0, loc).Unix()]
	assert.Contains(t, examen.Text, "Examen")
	require.Len(t, examen.Entities, 1)
	assert.Equal(t, domain.EntityBold, examen.Entities[0].Kind)
}

func TestAngelus_AcrossMonthEnd(t *testing.T) {
	p := plan.Angelus(time.UTC)
	ref := time.Date(2026, time.October, 31, 8, 0, 0, 0, time.UTC)

	occ, err := p.Occurrences(ref)
	require.NoError(t, err)
	require.Len(t, occ, 4)
	assert.Equal(t, time.Date(2026, time.November, 1, 6, 0, 0, 0, time.UTC), occ[0].At)
}

func TestBuild_PastReferenceIsEmpty(t *testing.T) {
	p := plan.MassBooking()
	ref := time.Date(2026, time.August, 1, 0, 0, 0, 0, plan.Singapore)
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, plan.Singapore)

	req, err := p.Build(ref, now)
	require.NoError(t, err)
	assert.Empty(t, req)
}

func TestBuild_SameSecondLastEntryWins(t *testing.T) {
	p := plan.Plan{
		Name:     "dup",
		Location: time.UTC,
		Window:   plan.NextDay,
		Entries: []plan.Entry{
			{Cron: "0 7 * * *", Message: domain.Message{Text: "first"}},
			{Cron: "0 7 * * *", Message: domain.Message{Text: "second"}},
		},
	}
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

	req, err := p.Build(now, now)
	require.NoError(t, err)
	require.Len(t, req, 1)
	for _, m := range req {
		assert.Equal(t, "second", m.Text)
	}
}

func TestOccurrences_BadCronExpression(t *testing.T) {
	p := plan.Plan{Name: "bad", Entries: []plan.Entry{{Cron: "every other blue moon"}}}
	_, err := p.Occurrences(time.Now())
	require.Error(t, err)
}

func TestBuiltin(t *testing.T) {
	p, err := plan.Builtin("Angelus", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "angelus", p.Channel)

	p, err = plan.Builtin(plan.MassBookingName, nil)
	require.NoError(t, err)
	assert.Equal(t, "legion", p.Channel)

	_, err = plan.Builtin("vespers", nil)
	require.Error(t, err)

	assert.Equal(t, []string{"angelus", "massbooking"}, plan.Names())
}

func TestParseDate(t *testing.T) {
	got, err := plan.ParseDate("2026-11-03", plan.Singapore)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.November, 3, 0, 0, 0, 0, plan.Singapore).Unix(), got.Unix())

	_, err = plan.ParseDate("someday soon", plan.Singapore)
	require.Error(t, err)
}
