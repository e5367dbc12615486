// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package circuits

import (
	"testing"
	"time"

	"github.com/danielhkuo/smartgarden/models"
)

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestHealthy(t *testing.T) {
	at := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}

	tests := []struct {
		name        string
		healthCheck *time.Time
		want        bool
	}{
		{"never reported", nil, false},
		{"just now", at(0), true},
		{"five minutes ago", at(-5 * time.Minute), true},
		{"just inside window", at(-HealthWindow + time.Second), true},
		{"exactly at window", at(-HealthWindow), false},
		{"an hour ago", at(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &models.Circuit{HealthCheck: tt.healthCheck}
			if got := Healthy(c, now); got != tt.want {
				t.Errorf("Healthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDayBounds(t *testing.T) {
	// 23:30 at -05:00 is already the next day in UTC
	local := time.Date(2024, 1, 1, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	from, to := DayBounds(local)

	wantFrom := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
	if !to.Equal(wantFrom.AddDate(0, 0, 1)) {
		t.Errorf("to = %v, want %v", to, wantFrom.AddDate(0, 0, 1))
	}
}

func TestCurrentOneTimeActivation(t *testing.T) {
	list := []models.OneTimeActivation{
		{ID: 1, Amount: 10, Timestamp: now.Add(-2 * time.Hour)},
		{ID: 2, Amount: 20, Timestamp: now.Add(3 * time.Hour)},
		{ID: 3, Amount: 30, Timestamp: now.Add(-24 * time.Hour)},
		{ID: 4, Amount: 40, Timestamp: now.Add(24 * time.Hour)},
	}

	got := CurrentOneTimeActivation(list, now)
	if got == nil || got.ID != 2 {
		t.Fatalf("CurrentOneTimeActivation() = %+v, want id 2", got)
	}

	today := TodayOneTimeActivations(list, now)
	if len(today) != 2 || today[0].ID != 2 || today[1].ID != 1 {
		t.Errorf("TodayOneTimeActivations() = %+v, want ids [2 1]", today)
	}

	if got := CurrentOneTimeActivation(list[2:3], now); got != nil {
		t.Errorf("expected nil for yesterday only, got %+v", got)
	}
	if got := CurrentOneTimeActivation(nil, now); got != nil {
		t.Errorf("expected nil for empty list, got %+v", got)
	}
}

func TestCurrentOneTimeActivationTieBreaksByID(t *testing.T) {
	list := []models.OneTimeActivation{
		{ID: 5, Amount: 1, Timestamp: now},
		{ID: 9, Amount: 2, Timestamp: now},
	}
	if got := CurrentOneTimeActivation(list, now); got.ID != 9 {
		t.Errorf("expected most recently created entry, got id %d", got.ID)
	}
}

func TestOrderSchedule(t *testing.T) {
	tod := func(s string) models.TimeOfDay {
		v, err := models.ParseTimeOfDay(s)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}

	list := []models.ScheduledActivation{
		{ID: 1, Time: tod("06:00:00")},
		{ID: 2, Time: tod("18:30:00")},
		{ID: 3, Time: tod("06:00:00")},
		{ID: 4, Time: tod("12:00:00")},
	}

	ordered := OrderSchedule(list)
	wantIDs := []uint{2, 4, 1, 3}
	for i, id := range wantIDs {
		if ordered[i].ID != id {
			t.Fatalf("OrderSchedule() position %d = id %d, want %d", i, ordered[i].ID, id)
		}
	}

	// Input is left untouched
	if list[0].ID != 1 {
		t.Error("OrderSchedule() modified its input")
	}
}

func TestView(t *testing.T) {
	hc := now.Add(-time.Minute)
	c := &models.Circuit{
		ID:          3,
		Name:        "Front lawn",
		Active:      true,
		HealthCheck: &hc,
		OneTimeActivations: []models.OneTimeActivation{
			{ID: 1, Amount: 200, Timestamp: now.Add(-2 * time.Hour)},
		},
	}

	view := View(c, now)
	if !view.Healthy {
		t.Error("expected healthy circuit")
	}
	if view.HealthCheck == nil || !view.HealthCheck.Equal(hc) {
		t.Errorf("HealthCheck = %v, want %v", view.HealthCheck, hc)
	}
	if view.OneTimeActivation == nil || view.OneTimeActivation.Amount != 200 {
		t.Errorf("OneTimeActivation = %+v, want amount 200", view.OneTimeActivation)
	}
	if view.Schedule == nil || len(view.Schedule) != 0 {
		t.Errorf("Schedule = %v, want empty non-nil slice", view.Schedule)
	}

	bare := View(&models.Circuit{ID: 4, Name: "Bed"}, now)
	if bare.Healthy || bare.HealthCheck != nil || bare.OneTimeActivation != nil {
		t.Errorf("unexpected derived fields on bare circuit: %+v", bare)
	}
}
