package ledger

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"groupstay/pkg/model"
)

// MaxGuestID is the largest client-chosen guest id, the largest integer a
// JSON number carries exactly. Generated ids stay positive above it.
const MaxGuestID = 1<<53 - 1

// UpsertGuest stores a guest profile keyed by ID. A zero ID or an unknown ID
// appends the guest; a known ID replaces the stored profile in place. The
// matching guest alert is recorded and returned.
func (l *Ledger) UpsertGuest(g model.Guest) (model.Guest, bool, model.Alert, error) {
	if strings.TrimSpace(g.Name) == "" {
		return model.Guest{}, false, model.Alert{}, validationf("guest name is required")
	}
	if g.ID < 0 || g.ID > MaxGuestID {
		return model.Guest{}, false, model.Alert{}, validationf("guest id must be within [0, %d], got %d", MaxGuestID, g.ID)
	}
	if g.ID == 0 {
		g.ID = l.nextGuestID()
	}
	g.UpdatedAt = l.now()
	if g.DietaryRequirements == nil {
		g.DietaryRequirements = []string{}
	}
	if g.SpecialNeeds == nil {
		g.SpecialNeeds = []string{}
	}

	var alert model.Alert
	created := false
	if i := l.guestIndex(g.ID); i >= 0 {
		l.guests[i] = g
		alert = model.Alert{
			Type:      model.AlertPreferenceUpdate,
			Title:     "Guest Preference Updated",
			Message:   fmt.Sprintf("%s's preferences have been updated", g.Name),
			GuestName: g.Name,
		}
	} else {
		created = true
		l.guests = append(l.guests, g)
		alert = model.Alert{
			Type:      model.AlertGuestAdded,
			Title:     "New Guest Added",
			Message:   fmt.Sprintf("%s has been added to the guest list", g.Name),
			GuestName: g.Name,
		}
	}

	return g, created, l.RecordAlerts(alert)[0], nil
}

func (l *Ledger) GetGuest(id int64) (model.Guest, error) {
	i := l.guestIndex(id)
	if i < 0 {
		return model.Guest{}, ErrGuestNotFound
	}
	return l.guests[i], nil
}

func (l *Ledger) DeleteGuest(id int64) (model.Guest, model.Alert, error) {
	i := l.guestIndex(id)
	if i < 0 {
		return model.Guest{}, model.Alert{}, ErrGuestNotFound
	}
	removed := l.guests[i]
	l.guests = slices.Delete(l.guests, i, i+1)

	alert := l.RecordAlerts(model.Alert{
		Type:      model.AlertGuestRemoved,
		Title:     "Guest Removed",
		Message:   fmt.Sprintf("%s has been removed from the guest list", removed.Name),
		GuestName: removed.Name,
	})[0]
	return removed, alert, nil
}

func (l *Ledger) Guests() []model.Guest {
	return slices.Clone(l.guests)
}

func (l *Ledger) guestIndex(id int64) int {
	return slices.IndexFunc(l.guests, func(g model.Guest) bool { return g.ID == id })
}

func (l *Ledger) nextGuestID() int64 {
	var highest int64
	for _, g := range l.guests {
		highest = max(highest, g.ID)
	}
	return highest + 1
}

// DietarySummary counts guests per dietary requirement.
func DietarySummary(guests []model.Guest) map[string]int {
	summary := make(map[string]int)
	for _, g := range guests {
		for _, d := range g.DietaryRequirements {
			summary[d]++
		}
	}
	return summary
}

func SpecialNeeds(guests []model.Guest) model.SpecialNeedsSummary {
	s := model.SpecialNeedsSummary{TotalGuests: len(guests)}
	for _, g := range guests {
		if g.WheelchairAccessible {
			s.WheelchairAccessible++
		}
		if g.MobilityAssistance {
			s.MobilityAssistance++
		}
		if len(g.SpecialNeeds) > 0 {
			s.WithSpecialNeeds++
		}
	}
	return s
}

func GuestReport(guests []model.Guest, generatedAt time.Time) model.GuestReport {
	list := slices.Clone(guests)
	if list == nil {
		list = []model.Guest{}
	}
	return model.GuestReport{
		TotalGuests:         len(guests),
		DietarySummary:      DietarySummary(guests),
		SpecialNeedsSummary: SpecialNeeds(guests),
		GuestsList:          list,
		GeneratedAt:         generatedAt,
	}
}
