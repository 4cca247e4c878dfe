// Package calendar renders the upcoming birthdays of an address book as an
// iCalendar feed.
package calendar

import (
	"bytes"
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tartampluch/go-contactbook/internal/config"
	"github.com/tartampluch/go-contactbook/internal/contacts"
)

// Entry is one upcoming birthday.
type Entry struct {
	Name     string
	Next     time.Time
	DaysLeft int
}

// Generator turns an address book into calendar events.
type Generator struct {
	Clock contacts.Clock

	// Summary lets callers inject localized event titles.
	Summary func(name string, days int) string

	// CalendarName overrides the X-WR-CALNAME value.
	CalendarName string

	// Reminder is an ISO8601 trigger (e.g. "-P1D"); empty disables alarms.
	Reminder string

	// ReminderText lets callers inject a localized alarm description.
	ReminderText func(name string) string
}

// Upcoming lists every record with a birthday, soonest first, ties by name.
func Upcoming(book *contacts.AddressBook, today time.Time) []Entry {
	var entries []Entry
	for _, r := range book.Records() {
		next, ok := r.NextBirthday(today)
		if !ok {
			continue
		}
		days, _ := r.DaysToBirthday(today)
		entries = append(entries, Entry{
			Name:     r.Name().String(),
			Next:     next,
			DaysLeft: days,
		})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.DaysLeft, b.DaysLeft), cmp.Compare(a.Name, b.Name))
	})
	return entries
}

// Render builds the ICS document and returns it with the number of birthdays today.
func (g *Generator) Render(book *contacts.AddressBook) ([]byte, int, error) {
	now := g.Clock.Now()
	entries := Upcoming(book, now)

	if len(entries) == 0 {
		g.logSuccess(0, 0)
		return []byte(config.StubVCalendar), 0, nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, cmp.Or(g.CalendarName, config.ICalCalName))
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := 0
	for _, e := range entries {
		if e.DaysLeft == 0 {
			today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyName, e.Name)
		}
		event := g.createEvent(e)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(len(entries), today)
	return buf.Bytes(), today, nil
}

func (g *Generator) createEvent(e Entry) *ical.Event {
	event := ical.NewEvent()
	uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.AppID+"/"+e.Name))
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uid.String(), e.Next.Year(), config.ICalDomain))

	summary := fmt.Sprintf(config.FallbackSummary, e.Name)
	if g.Summary != nil {
		summary = g.Summary(e.Name, e.DaysLeft)
	}
	event.Props.SetText(config.PropSummary, summary)

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(e.Next)
	event.Props.Set(dtStartProp)

	if g.Reminder != "" {
		description := summary
		if g.ReminderText != nil {
			description = g.ReminderText(e.Name)
		}
		addAlarm(event, g.Reminder, description)
	}
	return event
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set the raw value to avoid a VALUE=TEXT parameter on the trigger.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

func (g *Generator) logSuccess(found, today int) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompCalendar,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyFound, found),
			slog.Int(config.LogKeyToday, today),
		),
	)
}
