// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"time"

	"github.com/juju/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danielhkuo/smartgarden/models"
)

// Repository is the gorm-backed entity store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a Repository bound to a single transaction.
// An error from fn rolls back every write fn made.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

var (
	timestampColumn = clause.Column{Name: "timestamp"}
	newestFirst     = clause.OrderByColumn{Column: timestampColumn, Desc: true}
)

// between restricts rows to from <= timestamp < to.
func between(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.
			Where(clause.Gte{Column: timestampColumn, Value: from.UTC()}).
			Where(clause.Lt{Column: timestampColumn, Value: to.UTC()})
	}
}

// withDay preloads the schedule and the one-time activations in [from, to).
func withDay(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.
			Preload("Schedule").
			Preload("OneTimeActivations", func(tx *gorm.DB) *gorm.DB {
				return tx.Scopes(between(from, to)).Order(newestFirst)
			})
	}
}

// scopedTo limits circuits to those the user holds rel on.
func scopedTo(rel models.Relation, userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch rel {
		case models.RelationOwner:
			return tx.Where("circuits.owner_id = ?", userID)
		default:
			return tx.Joins("JOIN circuit_collaborations cc ON cc.circuit_id = circuits.id AND cc.user_id = ?", userID)
		}
	}
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFoundf(format, args...)
	}
	return errors.Trace(err)
}

// Circuits

// ListCircuits returns the circuits the user holds rel on, ordered by id,
// with their schedule and the one-time activations in [from, to).
func (r *Repository) ListCircuits(ctx context.Context, rel models.Relation, userID uint, from, to time.Time) ([]models.Circuit, error) {
	circuits := make([]models.Circuit, 0)
	err := r.db.WithContext(ctx).
		Scopes(scopedTo(rel, userID), withDay(from, to)).
		Order("circuits.id").
		Find(&circuits).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	return circuits, nil
}

// FindCircuit returns circuit id if the user holds rel on it.
// Circuits outside the scope are reported as not found.
func (r *Repository) FindCircuit(ctx context.Context, rel models.Relation, userID, id uint, from, to time.Time) (*models.Circuit, error) {
	var circuit models.Circuit
	err := r.db.WithContext(ctx).
		Scopes(scopedTo(rel, userID), withDay(from, to)).
		Where("circuits.id = ?", id).
		First(&circuit).Error
	if err != nil {
		return nil, notFound(err, "circuit %d", id)
	}
	return &circuit, nil
}

// ControlledCircuit returns the circuit whose controller is userID.
func (r *Repository) ControlledCircuit(ctx context.Context, userID uint, from, to time.Time) (*models.Circuit, error) {
	var circuit models.Circuit
	err := r.db.WithContext(ctx).
		Scopes(withDay(from, to)).
		Where("controller_id = ?", userID).
		First(&circuit).Error
	if err != nil {
		return nil, notFound(err, "circuit controlled by user %d", userID)
	}
	return &circuit, nil
}

// Circuit returns the bare circuit row.
func (r *Repository) Circuit(ctx context.Context, id uint) (*models.Circuit, error) {
	var circuit models.Circuit
	if err := r.db.WithContext(ctx).First(&circuit, id).Error; err != nil {
		return nil, notFound(err, "circuit %d", id)
	}
	return &circuit, nil
}

// AllCircuits lists every circuit, for provisioning tools.
func (r *Repository) AllCircuits(ctx context.Context) ([]models.Circuit, error) {
	circuits := make([]models.Circuit, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&circuits).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return circuits, nil
}

func (r *Repository) CreateCircuit(ctx context.Context, circuit *models.Circuit) error {
	return errors.Trace(r.db.WithContext(ctx).Omit(clause.Associations).Create(circuit).Error)
}

// DeleteCircuit removes the circuit; schedule, activation and
// collaboration rows cascade.
func (r *Repository) DeleteCircuit(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Circuit{}, id)
	if res.Error != nil {
		return errors.Trace(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NotFoundf("circuit %d", id)
	}
	return nil
}

func (r *Repository) SetHealthCheck(ctx context.Context, circuitID uint, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Circuit{}).
		Where("id = ?", circuitID).
		Update("health_check", at.UTC())
	if res.Error != nil {
		return errors.Trace(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NotFoundf("circuit %d", circuitID)
	}
	return nil
}

// AssignController makes userID the controller of the circuit, releasing
// any circuit the user controlled before. A nil userID unassigns.
func (r *Repository) AssignController(ctx context.Context, circuitID uint, userID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if userID != nil {
			err := tx.Model(&models.Circuit{}).
				Where("controller_id = ? AND id <> ?", *userID, circuitID).
				Update("controller_id", gorm.Expr("NULL")).Error
			if err != nil {
				return errors.Trace(err)
			}
		}

		var controller any = gorm.Expr("NULL")
		if userID != nil {
			controller = *userID
		}
		res := tx.Model(&models.Circuit{}).Where("id = ?", circuitID).Update("controller_id", controller)
		if res.Error != nil {
			return errors.Trace(res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.NotFoundf("circuit %d", circuitID)
		}
		return nil
	})
}

// Collaboration

func (r *Repository) AddCollaborator(ctx context.Context, circuitID, userID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CircuitCollaboration{CircuitID: circuitID, UserID: userID}).Error
	return errors.Trace(err)
}

func (r *Repository) RemoveCollaborator(ctx context.Context, circuitID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("circuit_id = ? AND user_id = ?", circuitID, userID).
		Delete(&models.CircuitCollaboration{}).Error
	return errors.Trace(err)
}

func (r *Repository) IsCollaborator(ctx context.Context, circuitID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CircuitCollaboration{}).
		Where("circuit_id = ? AND user_id = ?", circuitID, userID).
		Count(&count).Error
	if err != nil {
		return false, errors.Trace(err)
	}
	return count > 0, nil
}

// Schedule

func (r *Repository) Schedule(ctx context.Context, circuitID uint) ([]models.ScheduledActivation, error) {
	schedule := make([]models.ScheduledActivation, 0)
	err := r.db.WithContext(ctx).Where("circuit_id = ?", circuitID).Find(&schedule).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	return schedule, nil
}

// ReplaceSchedule deletes the circuit's schedule and inserts entries in
// one transaction, so readers see either the old or the new set. The
// circuit row is locked first so concurrent replaces run one after the
// other; SQLite has no row locks and relies on BEGIN IMMEDIATE instead.
func (r *Repository) ReplaceSchedule(ctx context.Context, circuitID uint, entries []models.ScheduledActivation) ([]models.ScheduledActivation, error) {
	stored := make([]models.ScheduledActivation, len(entries))
	for i, e := range entries {
		stored[i] = models.ScheduledActivation{
			CircuitID: circuitID,
			Active:    e.Active,
			Amount:    e.Amount,
			Time:      e.Time,
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var circuit models.Circuit
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&circuit, circuitID).Error; err != nil {
			return notFound(err, "circuit %d", circuitID)
		}
		if err := tx.Where("circuit_id = ?", circuitID).Delete(&models.ScheduledActivation{}).Error; err != nil {
			return err
		}
		if len(stored) == 0 {
			return nil
		}
		return tx.Create(&stored).Error
	})
	if err != nil {
		return nil, errors.Annotatef(err, "replacing schedule of circuit %d", circuitID)
	}
	return stored, nil
}

// Activations

// OneTimeActivations returns the circuit's one-time activations in
// [from, to), newest first.
func (r *Repository) OneTimeActivations(ctx context.Context, circuitID uint, from, to time.Time) ([]models.OneTimeActivation, error) {
	activations := make([]models.OneTimeActivation, 0)
	err := r.db.WithContext(ctx).
		Scopes(between(from, to)).
		Where("circuit_id = ?", circuitID).
		Order(newestFirst).
		Find(&activations).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	return activations, nil
}

func (r *Repository) CreateOneTimeActivation(ctx context.Context, activation *models.OneTimeActivation) error {
	activation.Timestamp = activation.Timestamp.UTC()
	return errors.Trace(r.db.WithContext(ctx).Create(activation).Error)
}

func (r *Repository) CreateActivationLog(ctx context.Context, entry *models.ActivationLog) error {
	entry.Timestamp = entry.Timestamp.UTC()
	return errors.Trace(r.db.WithContext(ctx).Create(entry).Error)
}

// ActivationLog returns the circuit's completed activations, newest first.
func (r *Repository) ActivationLog(ctx context.Context, circuitID uint) ([]models.ActivationLog, error) {
	entries := make([]models.ActivationLog, 0)
	err := r.db.WithContext(ctx).
		Where("circuit_id = ?", circuitID).
		Order(newestFirst).
		Find(&entries).Error
	if err != nil {
		return nil, errors.Trace(err)
	}
	return entries, nil
}

// Users and credentials

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.UserType == "" {
		user.UserType = models.UserTypeUser
	}
	return errors.Trace(r.db.WithContext(ctx).Create(user).Error)
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user %q", email)
	}
	return &user, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, errors.Trace(err)
	}
	return users, nil
}

func (r *Repository) CreateToken(ctx context.Context, token *models.AuthToken) error {
	return errors.Trace(r.db.WithContext(ctx).Create(token).Error)
}

// UserByTokenHash resolves the owner of a bearer token.
func (r *Repository) UserByTokenHash(ctx context.Context, hash string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN auth_tokens t ON t.user_id = users.id").
		Where("t.token_hash = ?", hash).
		First(&user).Error
	if err != nil {
		return nil, notFound(err, "token")
	}
	return &user, nil
}
