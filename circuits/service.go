// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package circuits

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/danielhkuo/smartgarden/auth"
	"github.com/danielhkuo/smartgarden/models"
)

// Store is the persistence the service needs. db.Repository implements it.
type Store interface {
	ListCircuits(ctx context.Context, rel models.Relation, userID uint, from, to time.Time) ([]models.Circuit, error)
	FindCircuit(ctx context.Context, rel models.Relation, userID, id uint, from, to time.Time) (*models.Circuit, error)
	ControlledCircuit(ctx context.Context, userID uint, from, to time.Time) (*models.Circuit, error)
	Circuit(ctx context.Context, id uint) (*models.Circuit, error)
	SetHealthCheck(ctx context.Context, circuitID uint, at time.Time) error

	Schedule(ctx context.Context, circuitID uint) ([]models.ScheduledActivation, error)
	ReplaceSchedule(ctx context.Context, circuitID uint, entries []models.ScheduledActivation) ([]models.ScheduledActivation, error)

	OneTimeActivations(ctx context.Context, circuitID uint, from, to time.Time) ([]models.OneTimeActivation, error)
	CreateOneTimeActivation(ctx context.Context, activation *models.OneTimeActivation) error
	CreateActivationLog(ctx context.Context, entry *models.ActivationLog) error
	ActivationLog(ctx context.Context, circuitID uint) ([]models.ActivationLog, error)
}

// Service answers circuit queries and applies writes on behalf of an
// authenticated principal.
type Service struct {
	store  Store
	policy auth.Policy
	clock  clock.Clock
}

func NewService(store Store, policy auth.Policy, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Service{store: store, policy: policy, clock: clk}
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

func requirePrincipal(p *auth.Principal) error {
	if p == nil {
		return errors.Unauthorizedf("authentication credentials were not provided")
	}
	return nil
}

// readable loads the circuit and checks read access to its sub-resources.
func (s *Service) readable(ctx context.Context, p *auth.Principal, circuitID uint) (*models.Circuit, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	c, err := s.store.Circuit(ctx, circuitID)
	if err != nil {
		return nil, err
	}
	ok, err := s.policy.CanRead(ctx, p, c)
	if err != nil {
		return nil, errors.Annotatef(err, "checking read access to circuit %d", circuitID)
	}
	if !ok {
		return nil, errors.Forbiddenf("user %d may not read circuit %d", p.ID(), circuitID)
	}
	return c, nil
}

// writable loads the circuit and checks write access.
func (s *Service) writable(ctx context.Context, p *auth.Principal, circuitID uint) (*models.Circuit, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	c, err := s.store.Circuit(ctx, circuitID)
	if err != nil {
		return nil, err
	}
	ok, err := s.policy.CanWrite(ctx, p, c)
	if err != nil {
		return nil, errors.Annotatef(err, "checking write access to circuit %d", circuitID)
	}
	if !ok {
		return nil, errors.Forbiddenf("user %d may not modify circuit %d", p.ID(), circuitID)
	}
	return c, nil
}

// AuthorizeWrite checks that p may change the circuit's schedule and
// one-time activations. Handlers call it before reading the request body.
func (s *Service) AuthorizeWrite(ctx context.Context, p *auth.Principal, circuitID uint) error {
	_, err := s.writable(ctx, p, circuitID)
	return err
}

// AuthorizeController checks that p controls a circuit.
func (s *Service) AuthorizeController(ctx context.Context, p *auth.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	from, to := DayBounds(s.now())
	_, err := s.store.ControlledCircuit(ctx, p.ID(), from, to)
	return err
}

// Queries

// ListCircuits returns the circuits in the principal's relation.
func (s *Service) ListCircuits(ctx context.Context, p *auth.Principal) ([]models.CircuitView, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	now := s.now()
	from, to := DayBounds(now)
	list, err := s.store.ListCircuits(ctx, s.policy.Relation(), p.ID(), from, to)
	if err != nil {
		return nil, err
	}

	views := make([]models.CircuitView, 0, len(list))
	for i := range list {
		views = append(views, View(&list[i], now))
	}
	return views, nil
}

// GetCircuit returns one circuit. Circuits outside the principal's
// relation are not found.
func (s *Service) GetCircuit(ctx context.Context, p *auth.Principal, id uint) (*models.CircuitView, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	now := s.now()
	from, to := DayBounds(now)
	c, err := s.store.FindCircuit(ctx, s.policy.Relation(), p.ID(), id, from, to)
	if err != nil {
		return nil, err
	}
	view := View(c, now)
	return &view, nil
}

// ControlledCircuit returns the circuit the principal controls.
func (s *Service) ControlledCircuit(ctx context.Context, p *auth.Principal) (*models.CircuitView, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	now := s.now()
	from, to := DayBounds(now)
	c, err := s.store.ControlledCircuit(ctx, p.ID(), from, to)
	if err != nil {
		return nil, err
	}
	view := View(c, now)
	return &view, nil
}

// Schedule returns the circuit's recurring activations.
func (s *Service) Schedule(ctx context.Context, p *auth.Principal, circuitID uint) ([]models.ScheduleEntry, error) {
	if _, err := s.readable(ctx, p, circuitID); err != nil {
		return nil, err
	}
	schedule, err := s.store.Schedule(ctx, circuitID)
	if err != nil {
		return nil, err
	}
	return ScheduleEntries(schedule), nil
}

// OneTimeActivations returns today's one-time activations, newest first.
func (s *Service) OneTimeActivations(ctx context.Context, p *auth.Principal, circuitID uint) ([]models.ActivationEntry, error) {
	if _, err := s.readable(ctx, p, circuitID); err != nil {
		return nil, err
	}
	now := s.now()
	from, to := DayBounds(now)
	list, err := s.store.OneTimeActivations(ctx, circuitID, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ActivationEntry, 0, len(list))
	for _, a := range TodayOneTimeActivations(list, now) {
		entries = append(entries, models.ActivationEntry{Amount: a.Amount, Timestamp: models.NewTimestamp(a.Timestamp)})
	}
	return entries, nil
}

// ActivationLog returns the circuit's completed activations, newest first.
func (s *Service) ActivationLog(ctx context.Context, p *auth.Principal, circuitID uint) ([]models.ActivationEntry, error) {
	if _, err := s.writable(ctx, p, circuitID); err != nil {
		return nil, err
	}
	list, err := s.store.ActivationLog(ctx, circuitID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.ActivationEntry, 0, len(list))
	for _, a := range list {
		entries = append(entries, models.ActivationEntry{Amount: a.Amount, Timestamp: models.NewTimestamp(a.Timestamp)})
	}
	return entries, nil
}

// Writes

// ReplaceSchedule swaps the circuit's whole schedule for raw, a decoded
// JSON list. Access is checked before the body is validated, and nothing
// is written unless every entry is valid.
func (s *Service) ReplaceSchedule(ctx context.Context, p *auth.Principal, circuitID uint, raw any) ([]models.ScheduleEntry, error) {
	if _, err := s.writable(ctx, p, circuitID); err != nil {
		return nil, err
	}

	entries, err := ValidateSchedule(raw)
	if err != nil {
		scheduleReplacements.WithLabelValues("invalid").Inc()
		return nil, err
	}

	rows := make([]models.ScheduledActivation, len(entries))
	for i, e := range entries {
		rows[i] = models.ScheduledActivation{Active: e.Active, Amount: e.Amount, Time: e.Time}
	}
	stored, err := s.store.ReplaceSchedule(ctx, circuitID, rows)
	if err != nil {
		scheduleReplacements.WithLabelValues("error").Inc()
		return nil, err
	}

	scheduleReplacements.WithLabelValues("ok").Inc()
	slog.Info("circuit schedule replaced",
		"circuit_id", circuitID,
		"user_id", p.ID(),
		"entries", len(stored),
	)
	return ScheduleEntries(stored), nil
}

// CreateOneTimeActivation stores an ad-hoc activation for the circuit.
func (s *Service) CreateOneTimeActivation(ctx context.Context, p *auth.Principal, circuitID uint, raw any) (*models.ActivationEntry, error) {
	if _, err := s.writable(ctx, p, circuitID); err != nil {
		return nil, err
	}

	amount, ts, err := ValidateActivation(raw)
	if err != nil {
		return nil, err
	}

	activation := &models.OneTimeActivation{CircuitID: circuitID, Amount: amount, Timestamp: ts}
	if err := s.store.CreateOneTimeActivation(ctx, activation); err != nil {
		return nil, err
	}

	activationsRecorded.WithLabelValues("one_time").Inc()
	slog.Info("one-time activation created",
		"circuit_id", circuitID,
		"user_id", p.ID(),
		"amount", amount,
		"timestamp", models.FormatTimestamp(ts),
	)
	return &models.ActivationEntry{Amount: activation.Amount, Timestamp: models.NewTimestamp(activation.Timestamp)}, nil
}

// RecordActivation appends a completed activation to the log of the
// circuit the principal controls.
func (s *Service) RecordActivation(ctx context.Context, p *auth.Principal, raw any) (*models.ActivationEntry, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	from, to := DayBounds(s.now())
	c, err := s.store.ControlledCircuit(ctx, p.ID(), from, to)
	if err != nil {
		return nil, err
	}

	amount, ts, err := ValidateActivation(raw)
	if err != nil {
		return nil, err
	}

	entry := &models.ActivationLog{CircuitID: c.ID, Amount: amount, Timestamp: ts}
	if err := s.store.CreateActivationLog(ctx, entry); err != nil {
		return nil, err
	}

	activationsRecorded.WithLabelValues("log").Inc()
	slog.Info("activation recorded",
		"circuit_id", c.ID,
		"controller_id", p.ID(),
		"amount", amount,
		"timestamp", models.FormatTimestamp(ts),
	)
	return &models.ActivationEntry{Amount: entry.Amount, Timestamp: models.NewTimestamp(entry.Timestamp)}, nil
}

// HealthCheck records a heartbeat for the principal's circuit and returns
// the updated circuit.
func (s *Service) HealthCheck(ctx context.Context, p *auth.Principal) (*models.CircuitView, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	now := s.now()
	from, to := DayBounds(now)
	c, err := s.store.ControlledCircuit(ctx, p.ID(), from, to)
	if err != nil {
		return nil, err
	}

	previous := "never"
	if c.HealthCheck != nil {
		previous = humanize.RelTime(*c.HealthCheck, now, "ago", "from now")
	}
	if err := s.store.SetHealthCheck(ctx, c.ID, now); err != nil {
		return nil, err
	}
	c.HealthCheck = &now

	heartbeats.Inc()
	slog.Debug("controller heartbeat",
		"circuit_id", c.ID,
		"controller_id", p.ID(),
		"previous", previous,
	)
	view := View(c, now)
	return &view, nil
}
