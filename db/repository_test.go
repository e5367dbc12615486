// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"

	"github.com/danielhkuo/smartgarden/models"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()

	ctx := context.Background()
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "smartgarden_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := Migrate(ctx, conn, TypeSQLite); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return NewRepository(conn)
}

func mustUser(t *testing.T, repo *Repository, email string) models.User {
	t.Helper()
	user := models.User{Email: email}
	if err := repo.CreateUser(context.Background(), &user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func mustCircuit(t *testing.T, repo *Repository, name string) models.Circuit {
	t.Helper()
	circuit := models.Circuit{Name: name, Active: true}
	if err := repo.CreateCircuit(context.Background(), &circuit); err != nil {
		t.Fatalf("create circuit %s: %v", name, err)
	}
	return circuit
}

func mustTime(t *testing.T, s string) models.TimeOfDay {
	t.Helper()
	tod, err := models.ParseTimeOfDay(s)
	if err != nil {
		t.Fatal(err)
	}
	return tod
}

func TestMigrateIsIdempotent(t *testing.T) {
	repo := setupRepository(t)
	if err := Migrate(context.Background(), repo.db, TypeSQLite); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}

func TestOpenRejectsUnknownType(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported database type")
	}
}

func TestListCircuitsIsScopedToCollaborator(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)

	user := mustUser(t, repo, "user@test.com")
	other := mustUser(t, repo, "other@test.com")
	c1 := mustCircuit(t, repo, "c1")
	c2 := mustCircuit(t, repo, "c2")
	c3 := mustCircuit(t, repo, "c3")

	for _, c := range []models.Circuit{c1, c2} {
		if err := repo.AddCollaborator(ctx, c.ID, user.ID); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.AddCollaborator(ctx, c3.ID, other.ID); err != nil {
		t.Fatal(err)
	}
	// Adding twice is a no-op
	if err := repo.AddCollaborator(ctx, c1.ID, user.ID); err != nil {
		t.Fatalf("repeated AddCollaborator: %v", err)
	}

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	circuits, err := repo.ListCircuits(ctx, models.RelationCollaborator, user.ID, from, from.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListCircuits: %v", err)
	}
	if len(circuits) != 2 {
		t.Fatalf("expected 2 circuits, got %d", len(circuits))
	}
	if circuits[0].ID != c1.ID || circuits[1].ID != c2.ID {
		t.Errorf("unexpected circuits %d, %d", circuits[0].ID, circuits[1].ID)
	}

	_, err = repo.FindCircuit(ctx, models.RelationCollaborator, user.ID, c3.ID, from, from.Add(24*time.Hour))
	if !errors.Is(err, errors.NotFound) {
		t.Errorf("FindCircuit on foreign circuit: got %v, want NotFound", err)
	}
}

func TestListCircuitsIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)

	owner := mustUser(t, repo, "owner@test.com")
	owned := models.Circuit{Name: "owned", Active: true, OwnerID: &owner.ID}
	if err := repo.CreateCircuit(ctx, &owned); err != nil {
		t.Fatal(err)
	}
	mustCircuit(t, repo, "unowned")

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	circuits, err := repo.ListCircuits(ctx, models.RelationOwner, owner.ID, from, from.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(circuits) != 1 || circuits[0].ID != owned.ID {
		t.Errorf("expected only the owned circuit, got %+v", circuits)
	}
}

func TestPreloadsOnlyRequestedDay(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)

	user := mustUser(t, repo, "user@test.com")
	circuit := mustCircuit(t, repo, "c1")
	if err := repo.AddCollaborator(ctx, circuit.ID, user.ID); err != nil {
		t.Fatal(err)
	}

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{
		day.Add(-time.Hour),
		day.Add(10 * time.Hour),
		day.Add(11 * time.Hour),
		day.Add(25 * time.Hour),
	} {
		a := models.OneTimeActivation{CircuitID: circuit.ID, Amount: 100, Timestamp: ts}
		if err := repo.CreateOneTimeActivation(ctx, &a); err != nil {
			t.Fatal(err)
		}
	}

	found, err := repo.FindCircuit(ctx, models.RelationCollaborator, user.ID, circuit.ID, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(found.OneTimeActivations) != 2 {
		t.Fatalf("expected 2 activations for the day, got %d", len(found.OneTimeActivations))
	}
	if !found.OneTimeActivations[0].Timestamp.Equal(day.Add(11 * time.Hour)) {
		t.Errorf("expected newest first, got %v", found.OneTimeActivations[0].Timestamp)
	}
}

func TestReplaceSchedule(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)
	circuit := mustCircuit(t, repo, "c1")

	initial := []models.ScheduledActivation{
		{Active: true, Amount: 100, Time: mustTime(t, "08:00:00")},
		{Active: false, Amount: 50, Time: mustTime(t, "20:00:00")},
	}
	if _, err := repo.ReplaceSchedule(ctx, circuit.ID, initial); err != nil {
		t.Fatalf("initial replace: %v", err)
	}

	replacement := []models.ScheduledActivation{
		{Active: false, Amount: 200, Time: mustTime(t, "21:00:49")},
	}
	stored, err := repo.ReplaceSchedule(ctx, circuit.ID, replacement)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(stored) != 1 || stored[0].ID == 0 || stored[0].CircuitID != circuit.ID {
		t.Errorf("unexpected stored rows %+v", stored)
	}

	schedule, err := repo.Schedule(ctx, circuit.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(schedule) != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", len(schedule))
	}
	if schedule[0].Amount != 200 || schedule[0].Active || schedule[0].Time.String() != "21:00:49" {
		t.Errorf("unexpected entry %+v", schedule[0])
	}

	if _, err := repo.ReplaceSchedule(ctx, circuit.ID, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	schedule, _ = repo.Schedule(ctx, circuit.ID)
	if len(schedule) != 0 {
		t.Errorf("expected empty schedule, got %d entries", len(schedule))
	}
}

func TestReplaceScheduleUnknownCircuit(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.ReplaceSchedule(context.Background(), 9999, []models.ScheduledActivation{{Active: true, Amount: 1, Time: mustTime(t, "06:00:00")}})
	if !errors.Is(err, errors.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestReplaceScheduleConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)
	circuit := mustCircuit(t, repo, "c1")

	morning, noon, evening := mustTime(t, "06:00:00"), mustTime(t, "12:00:00"), mustTime(t, "18:00:00")

	const writers = 6
	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Writer w stores three entries, all carrying amount w
			entries := []models.ScheduledActivation{
				{Active: true, Amount: w, Time: morning},
				{Active: true, Amount: w, Time: noon},
				{Active: false, Amount: w, Time: evening},
			}
			if _, err := repo.ReplaceSchedule(ctx, circuit.ID, entries); err != nil {
				t.Errorf("writer %d: %v", w, err)
			}
		}()
	}
	wg.Wait()

	schedule, err := repo.Schedule(ctx, circuit.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(schedule) != 3 {
		t.Fatalf("expected exactly one writer's 3 entries, got %d", len(schedule))
	}
	for _, e := range schedule {
		if e.Amount != schedule[0].Amount {
			t.Errorf("schedule mixes writers: %+v", schedule)
			break
		}
	}
}

func TestDeleteCircuitCascades(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)
	user := mustUser(t, repo, "user@test.com")
	circuit := mustCircuit(t, repo, "c1")

	repo.AddCollaborator(ctx, circuit.ID, user.ID)
	repo.ReplaceSchedule(ctx, circuit.ID, []models.ScheduledActivation{{Active: true, Amount: 1, Time: mustTime(t, "06:00:00")}})
	repo.CreateOneTimeActivation(ctx, &models.OneTimeActivation{CircuitID: circuit.ID, Amount: 1, Timestamp: time.Now()})
	repo.CreateActivationLog(ctx, &models.ActivationLog{CircuitID: circuit.ID, Amount: 1, Timestamp: time.Now()})

	if err := repo.DeleteCircuit(ctx, circuit.ID); err != nil {
		t.Fatalf("DeleteCircuit: %v", err)
	}

	for _, table := range []string{"circuit_collaborations", "scheduled_activations", "one_time_activations", "activation_logs"} {
		var count int64
		if err := repo.db.Table(table).Where("circuit_id = ?", circuit.ID).Count(&count).Error; err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("%s: expected 0 rows after cascade, got %d", table, count)
		}
	}

	if err := repo.DeleteCircuit(ctx, circuit.ID); !errors.Is(err, errors.NotFound) {
		t.Errorf("second delete: got %v, want NotFound", err)
	}
}

func TestAssignControllerReleasesPreviousCircuit(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)
	device := mustUser(t, repo, "device@test.com")
	c1 := mustCircuit(t, repo, "c1")
	c2 := mustCircuit(t, repo, "c2")

	if err := repo.AssignController(ctx, c1.ID, &device.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.AssignController(ctx, c2.ID, &device.ID); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	day := time.Now().UTC()
	controlled, err := repo.ControlledCircuit(ctx, device.ID, day, day.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if controlled.ID != c2.ID {
		t.Errorf("expected controller on c2, got circuit %d", controlled.ID)
	}

	if err := repo.AssignController(ctx, c2.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.ControlledCircuit(ctx, device.ID, day, day.Add(time.Hour)); !errors.Is(err, errors.NotFound) {
		t.Errorf("after unassign: got %v, want NotFound", err)
	}
}

func TestHealthCheckAndActivationLog(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)
	circuit := mustCircuit(t, repo, "c1")

	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.SetHealthCheck(ctx, circuit.ID, at); err != nil {
		t.Fatal(err)
	}
	stored, err := repo.Circuit(ctx, circuit.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.HealthCheck == nil || !stored.HealthCheck.Equal(at) {
		t.Errorf("health_check = %v, want %v", stored.HealthCheck, at)
	}

	for i := 0; i < 3; i++ {
		entry := models.ActivationLog{CircuitID: circuit.ID, Amount: 100 + i, Timestamp: at.Add(time.Duration(i) * time.Hour)}
		if err := repo.CreateActivationLog(ctx, &entry); err != nil {
			t.Fatal(err)
		}
	}
	log, err := repo.ActivationLog(ctx, circuit.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 3 || log[0].Amount != 102 {
		t.Errorf("expected 3 entries newest first, got %+v", log)
	}
}

func TestUserByTokenHash(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)
	user := mustUser(t, repo, "user@test.com")

	if err := repo.CreateToken(ctx, &models.AuthToken{UserID: user.ID, Name: "cli", TokenHash: "abc"}); err != nil {
		t.Fatal(err)
	}

	found, err := repo.UserByTokenHash(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if found.ID != user.ID || found.UserType != models.UserTypeUser {
		t.Errorf("unexpected user %+v", found)
	}

	if _, err := repo.UserByTokenHash(ctx, "nope"); !errors.Is(err, errors.NotFound) {
		t.Errorf("unknown hash: got %v, want NotFound", err)
	}
}
