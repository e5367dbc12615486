// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/juju/errors"

	"github.com/danielhkuo/smartgarden/auth"
	"github.com/danielhkuo/smartgarden/db"
	"github.com/danielhkuo/smartgarden/models"
)

// provisioner holds the provisioning steps shared by the single commands
// and the seed file.
type provisioner struct {
	repo *db.Repository
	salt string
}

func (p *provisioner) addUser(ctx context.Context, email, username string, userType models.UserType, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.NotValidf("empty email")
	}
	if userType == "" {
		userType = models.UserTypeUser
	}
	if !userType.Valid() {
		return nil, errors.NotValidf("user type %q", userType)
	}

	user := &models.User{Email: email, UserType: userType}
	if username != "" {
		user.Username = &username
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := p.repo.CreateUser(ctx, user); err != nil {
		return nil, errors.Annotatef(err, "creating user %s", email)
	}
	return user, nil
}

func (p *provisioner) addToken(ctx context.Context, email, name string) (string, error) {
	if p.salt == "" {
		return "", errors.NotValidf("empty token salt")
	}
	user, err := p.repo.UserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return auth.IssueToken(ctx, p.repo, user.ID, name, p.salt)
}

// addCircuit creates a circuit. The owner, when given, is also made a
// collaborator.
func (p *provisioner) addCircuit(ctx context.Context, name string, active bool, ownerEmail string) (*models.Circuit, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NotValidf("empty circuit name")
	}

	circuit := &models.Circuit{Name: name, Active: active}
	var owner *models.User
	if ownerEmail != "" {
		var err error
		if owner, err = p.repo.UserByEmail(ctx, ownerEmail); err != nil {
			return nil, err
		}
		circuit.OwnerID = &owner.ID
	}

	if err := p.repo.CreateCircuit(ctx, circuit); err != nil {
		return nil, errors.Annotatef(err, "creating circuit %q", name)
	}
	if owner != nil {
		if err := p.repo.AddCollaborator(ctx, circuit.ID, owner.ID); err != nil {
			return nil, err
		}
	}
	return circuit, nil
}

func (p *provisioner) addCollaborator(ctx context.Context, circuitID uint, email string) error {
	if _, err := p.repo.Circuit(ctx, circuitID); err != nil {
		return err
	}
	user, err := p.repo.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	return p.repo.AddCollaborator(ctx, circuitID, user.ID)
}

func (p *provisioner) removeCollaborator(ctx context.Context, circuitID uint, email string) error {
	user, err := p.repo.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	return p.repo.RemoveCollaborator(ctx, circuitID, user.ID)
}

// assignController makes email the circuit's controller; an empty email
// unassigns.
func (p *provisioner) assignController(ctx context.Context, circuitID uint, email string) error {
	if email == "" {
		return p.repo.AssignController(ctx, circuitID, nil)
	}
	user, err := p.repo.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.UserType != models.UserTypeDevice {
		return errors.NotValidf("controller %s has type %s, want %s", email, user.UserType, models.UserTypeDevice)
	}
	return p.repo.AssignController(ctx, circuitID, &user.ID)
}

func (p *provisioner) setSchedule(ctx context.Context, circuitID uint, entries []models.ScheduledActivation) error {
	_, err := p.repo.ReplaceSchedule(ctx, circuitID, entries)
	return err
}

func (p *provisioner) addOneTimeActivation(ctx context.Context, circuitID uint, amount int, timestamp string) error {
	ts, err := models.ParseTimestamp(timestamp)
	if err != nil {
		return errors.NewNotValid(err, fmt.Sprintf("circuit %d one-time activation", circuitID))
	}
	return p.repo.CreateOneTimeActivation(ctx, &models.OneTimeActivation{CircuitID: circuitID, Amount: amount, Timestamp: ts})
}
