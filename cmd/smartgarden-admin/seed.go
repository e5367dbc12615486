// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"io"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/smartgarden/db"
	"github.com/danielhkuo/smartgarden/models"
)

type fixture struct {
	Users    []fixtureUser    `yaml:"users"`
	Circuits []fixtureCircuit `yaml:"circuits"`
}

type fixtureUser struct {
	Email    string   `yaml:"email"`
	Username string   `yaml:"username"`
	Type     string   `yaml:"type"`
	Password string   `yaml:"password"`
	Tokens   []string `yaml:"tokens"` // token names to issue
}

type fixtureCircuit struct {
	Name               string              `yaml:"name"`
	Active             *bool               `yaml:"active"`
	Owner              string              `yaml:"owner"`
	Collaborators      []string            `yaml:"collaborators"`
	Controller         string              `yaml:"controller"`
	Schedule           []fixtureSchedule   `yaml:"schedule"`
	OneTimeActivations []fixtureActivation `yaml:"one_time_activations"`
}

type fixtureSchedule struct {
	Active *bool  `yaml:"active"`
	Amount int    `yaml:"amount"`
	Time   string `yaml:"time"`
}

type fixtureActivation struct {
	Amount    int    `yaml:"amount"`
	Timestamp string `yaml:"timestamp"`
}

type issuedToken struct {
	Email string
	Name  string
	Token string
}

func decodeFixture(r io.Reader) (*fixture, error) {
	var f fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, errors.Annotate(err, "decoding fixture")
	}
	return &f, nil
}

// boolOr returns *b, or def when the key was absent.
func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// seed provisions every user and circuit in f in one transaction and
// returns the tokens it issued. Any failure leaves the database untouched.
func (p *provisioner) seed(ctx context.Context, f *fixture) ([]issuedToken, error) {
	var tokens []issuedToken
	err := p.repo.Transaction(ctx, func(repo *db.Repository) error {
		var err error
		tokens, err = (&provisioner{repo: repo, salt: p.salt}).load(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (p *provisioner) load(ctx context.Context, f *fixture) ([]issuedToken, error) {
	var tokens []issuedToken
	for _, u := range f.Users {
		if _, err := p.addUser(ctx, u.Email, u.Username, models.UserType(u.Type), u.Password); err != nil {
			return tokens, err
		}
		for _, name := range u.Tokens {
			token, err := p.addToken(ctx, u.Email, name)
			if err != nil {
				return tokens, err
			}
			tokens = append(tokens, issuedToken{Email: u.Email, Name: name, Token: token})
		}
	}

	for _, fc := range f.Circuits {
		circuit, err := p.addCircuit(ctx, fc.Name, boolOr(fc.Active, true), fc.Owner)
		if err != nil {
			return tokens, err
		}
		for _, email := range fc.Collaborators {
			if err := p.addCollaborator(ctx, circuit.ID, email); err != nil {
				return tokens, err
			}
		}
		if fc.Controller != "" {
			if err := p.assignController(ctx, circuit.ID, fc.Controller); err != nil {
				return tokens, err
			}
		}

		entries := make([]models.ScheduledActivation, 0, len(fc.Schedule))
		for i, s := range fc.Schedule {
			tod, err := models.ParseTimeOfDay(s.Time)
			if err != nil {
				return tokens, errors.Annotatef(err, "circuit %q schedule[%d]", fc.Name, i)
			}
			entries = append(entries, models.ScheduledActivation{
				Active: boolOr(s.Active, true),
				Amount: s.Amount,
				Time:   tod,
			})
		}
		if len(entries) > 0 {
			if err := p.setSchedule(ctx, circuit.ID, entries); err != nil {
				return tokens, err
			}
		}

		for _, a := range fc.OneTimeActivations {
			if err := p.addOneTimeActivation(ctx, circuit.ID, a.Amount, a.Timestamp); err != nil {
				return tokens, err
			}
		}
	}
	return tokens, nil
}
