// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// UserType distinguishes people from controller devices.
type UserType string

const (
	UserTypeAdmin  UserType = "ADMIN"
	UserTypeUser   UserType = "USER"
	UserTypeDevice UserType = "DEVICE"
)

// Valid reports whether t is one of the known user types.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeUser, UserTypeDevice:
		return true
	}
	return false
}

// Relation is the user/circuit relationship that grants access.
type Relation string

const (
	RelationOwner        Relation = "owner"
	RelationCollaborator Relation = "collaborator"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	Username     *string   `json:"username"`
	UserType     UserType  `gorm:"not null;default:USER" json:"user_type"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the user may see administrative endpoints.
func (u User) IsAdmin() bool { return u.UserType == UserTypeAdmin }

type Circuit struct {
	ID           uint       `gorm:"primaryKey"`
	Name         string     `gorm:"not null"`
	Active       bool       `gorm:"not null"`
	HealthCheck  *time.Time // last controller heartbeat
	OwnerID      *uint      `gorm:"index"`
	ControllerID *uint      `gorm:"uniqueIndex"`
	CreatedAt    time.Time

	Schedule           []ScheduledActivation `gorm:"foreignKey:CircuitID;constraint:OnDelete:CASCADE"`
	OneTimeActivations []OneTimeActivation   `gorm:"foreignKey:CircuitID;constraint:OnDelete:CASCADE"`
}

func (Circuit) TableName() string { return "circuits" }

type CircuitCollaboration struct {
	CircuitID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (CircuitCollaboration) TableName() string { return "circuit_collaborations" }

// ScheduledActivation is one recurring daily rule of a circuit's schedule.
type ScheduledActivation struct {
	ID        uint      `gorm:"primaryKey"`
	CircuitID uint      `gorm:"not null;index"`
	Active    bool      `gorm:"not null"`
	Amount    int       `gorm:"not null"`
	Time      TimeOfDay `gorm:"column:time;not null"`
}

func (ScheduledActivation) TableName() string { return "scheduled_activations" }

// OneTimeActivation is an ad-hoc activation requested for a specific moment.
type OneTimeActivation struct {
	ID        uint      `gorm:"primaryKey"`
	CircuitID uint      `gorm:"not null;index"`
	Amount    int       `gorm:"not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
}

func (OneTimeActivation) TableName() string { return "one_time_activations" }

// ActivationLog records a watering cycle the controller reports as done.
// Rows are append-only.
type ActivationLog struct {
	ID        uint      `gorm:"primaryKey"`
	CircuitID uint      `gorm:"not null;index"`
	Amount    int       `gorm:"not null"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
}

func (ActivationLog) TableName() string { return "activation_logs" }

type AuthToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	Name      string `gorm:"not null"`
	TokenHash string `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time
}

func (AuthToken) TableName() string { return "auth_tokens" }
