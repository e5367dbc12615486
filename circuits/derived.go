// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package circuits

import (
	"slices"
	"time"

	"github.com/danielhkuo/smartgarden/models"
)

// HealthWindow is how recent a heartbeat must be for a circuit to count
// as healthy.
const HealthWindow = 15 * time.Minute

// DayBounds returns the UTC calendar day containing now as [from, to).
func DayBounds(now time.Time) (from, to time.Time) {
	y, m, d := now.UTC().Date()
	from = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

// Healthy reports whether the circuit's last heartbeat is within
// HealthWindow of now. A circuit that never reported is unhealthy.
func Healthy(c *models.Circuit, now time.Time) bool {
	if c.HealthCheck == nil {
		return false
	}
	return now.Sub(*c.HealthCheck) < HealthWindow
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// TodayOneTimeActivations keeps the activations dated on now's UTC day,
// newest first.
func TodayOneTimeActivations(list []models.OneTimeActivation, now time.Time) []models.OneTimeActivation {
	today := make([]models.OneTimeActivation, 0, len(list))
	for _, a := range list {
		if sameDay(a.Timestamp, now) {
			today = append(today, a)
		}
	}
	slices.SortStableFunc(today, func(a, b models.OneTimeActivation) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return int(b.ID) - int(a.ID)
	})
	return today
}

// CurrentOneTimeActivation returns the latest activation dated today, or nil.
func CurrentOneTimeActivation(list []models.OneTimeActivation, now time.Time) *models.OneTimeActivation {
	today := TodayOneTimeActivations(list, now)
	if len(today) == 0 {
		return nil
	}
	return &today[0]
}

// OrderSchedule returns a copy of list ordered by time of day, latest
// first, ties by id.
func OrderSchedule(list []models.ScheduledActivation) []models.ScheduledActivation {
	ordered := slices.Clone(list)
	slices.SortStableFunc(ordered, func(a, b models.ScheduledActivation) int {
		if a.Time != b.Time {
			return int(b.Time) - int(a.Time)
		}
		return int(a.ID) - int(b.ID)
	})
	return ordered
}

// View builds the circuit representation served to clients.
func View(c *models.Circuit, now time.Time) models.CircuitView {
	view := models.CircuitView{
		ID:       c.ID,
		Name:     c.Name,
		Active:   c.Active,
		Healthy:  Healthy(c, now),
		Schedule: ScheduleEntries(c.Schedule),
	}
	if c.HealthCheck != nil {
		ts := models.NewTimestamp(*c.HealthCheck)
		view.HealthCheck = &ts
	}
	if a := CurrentOneTimeActivation(c.OneTimeActivations, now); a != nil {
		entry := models.ActivationEntry{Amount: a.Amount, Timestamp: models.NewTimestamp(a.Timestamp)}
		view.OneTimeActivation = &entry
	}
	return view
}

// ScheduleEntries converts stored rows to wire entries in schedule order.
func ScheduleEntries(list []models.ScheduledActivation) []models.ScheduleEntry {
	entries := make([]models.ScheduleEntry, 0, len(list))
	for _, s := range OrderSchedule(list) {
		entries = append(entries, models.ScheduleEntry{Active: s.Active, Amount: s.Amount, Time: s.Time})
	}
	return entries
}
