package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danhigham/autotele/internal/domain"
	"github.com/danhigham/autotele/internal/telegram"
)

const (
	AngelusName     = "angelus"
	MassBookingName = "massbooking"
)

const massBookingURL = "https://mycatholic.sg"

var massBookingHeadings = []string{
	"Churches with Mass Booking Time starting at 9am",
	"Churches with Mass Booking Time starting at 12pm",
	"Churches with Mass Booking Time starting at 3pm",
}

const massBookingText = `Dear brothers and sisters, booking for Mass begins today at https://mycatholic.sg

Churches with Mass Booking Time starting at 9am
- Church of the Holy Trinity
- Church of St Michael
- St Mary of the Angels
- Church of the Holy Spirit
- Church of St Stephen
- Church of Sts Peter and Paul
- St Anne's Church
- Church of St Alphonsus (Novena)
- Church of Our Lady of Perpetual Succour
- St Joseph Church (Victoria Street)
- Cathedral of the Good Shepherd

Churches with Mass Booking Time starting at 12pm
- Church of Our Lady of Lourdes
- Church of Christ the King
- Immaculate Heart of Mary
- Church of Divine Mercy
- Church of St Bernadette
- Church of St Francis of Assisi
- St Joseph's Church (Bukit Timah)
- Church of St Francis Xavier
- Church of the Risen Christ
- Blessed Sacrament Church
- Church of St Vincent de Paul

Churches with Mass Booking Time starting at 3pm
- Church of Our Lady Queen of Peace
- Church of the Holy Cross
- Church of Our Lady Star of the Sea (OLSS)
- Church of St Anthony
- Church of St Ignatius
- Church of the Holy Family
- Church of the Sacred Heart
- Church of the Transfiguration
- Church of the Nativity of the Blessed Virgin Mary
- Church of St Teresa

Jesus waits for each one of us in the tabernacle. Let's take each opportunity we can get to receive Our Blessed Lord!`

const (
	angelusText = "The Angelus\nThe Angel of the Lord declared unto Mary, and she conceived of the Holy Spirit."
	examenText  = "Examen\nBefore you sleep, take a few minutes to look back on the day with God."
)

// Singapore is where Mass booking opens.
var Singapore = loadLocation("Asia/Singapore", 8*60*60)

func loadLocation(name string, offset int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, offset)
	}
	return loc
}

// Angelus schedules the Angelus at 06:00, 12:00 and 18:00 and the examen
// at 22:30 on the day after the reference date.
func Angelus(loc *time.Location) Plan {
	angelus := withHeading(angelusText, "The Angelus")
	return Plan{
		Name:     AngelusName,
		Channel:  "angelus",
		Location: loc,
		Window:   NextDay,
		Entries: []Entry{
			{Cron: "0 6 * * *", Message: angelus},
			{Cron: "0 12 * * *", Message: angelus},
			{Cron: "0 18 * * *", Message: angelus},
			{Cron: "30 22 * * *", Message: withHeading(examenText, "Examen")},
		},
	}
}

// MassBooking announces the opening of Mass booking every Tuesday at
// 09:00 Singapore time in the reference month.
func MassBooking() Plan {
	msg := domain.Message{Text: massBookingText}
	if e, ok := telegram.EntityFor(msg.Text, massBookingURL, domain.EntityURL); ok {
		msg.Entities = append(msg.Entities, e)
	}
	for _, h := range massBookingHeadings {
		if e, ok := telegram.EntityFor(msg.Text, h, domain.EntityUnderline); ok {
			msg.Entities = append(msg.Entities, e)
		}
	}
	return Plan{
		Name:     MassBookingName,
		Channel:  "legion",
		Location: Singapore,
		Window:   Month,
		Entries:  []Entry{{Cron: "0 9 * * 2", Message: msg}},
	}
}

func withHeading(text, heading string) domain.Message {
	msg := domain.Message{Text: text}
	if e, ok := telegram.EntityFor(text, heading, domain.EntityBold); ok {
		msg.Entities = []domain.TextEntity{e}
	}
	return msg
}

var builtins = map[string]func(loc *time.Location) Plan{
	AngelusName:     Angelus,
	MassBookingName: func(*time.Location) Plan { return MassBooking() },
}

// Builtin returns the named plan. loc is the zone for plans that follow
// the user's time zone.
func Builtin(name string, loc *time.Location) (Plan, error) {
	f, ok := builtins[strings.ToLower(name)]
	if !ok {
		return Plan{}, fmt.Errorf("unknown plan %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return f(loc), nil
}

// Names lists the built-in plans.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
