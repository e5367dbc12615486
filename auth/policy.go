// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"fmt"

	"github.com/danielhkuo/smartgarden/models"
)

// Policy decides whether a principal may read or change a circuit's
// sub-resources. List and detail reads are not checked here: they are
// scoped in the query by Relation.
type Policy interface {
	Name() string
	Relation() models.Relation
	CanRead(ctx context.Context, p *Principal, c *models.Circuit) (bool, error)
	CanWrite(ctx context.Context, p *Principal, c *models.Circuit) (bool, error)
}

// Memberships answers collaboration lookups.
type Memberships interface {
	IsCollaborator(ctx context.Context, circuitID, userID uint) (bool, error)
}

// Policy names accepted by NewPolicy
const (
	PolicyOwner        = "owner"
	PolicyCollaborator = "collaborator"
)

// NewPolicy returns the policy registered under name.
func NewPolicy(name string, m Memberships) (Policy, error) {
	switch name {
	case PolicyOwner:
		return OwnerPolicy{}, nil
	case PolicyCollaborator, "":
		return CollaboratorPolicy{Memberships: m}, nil
	}
	return nil, fmt.Errorf("unknown authorization policy %q", name)
}

// OwnerPolicy grants writes to the circuit's single owner.
type OwnerPolicy struct{}

func (OwnerPolicy) Name() string              { return PolicyOwner }
func (OwnerPolicy) Relation() models.Relation { return models.RelationOwner }

func (OwnerPolicy) CanRead(_ context.Context, p *Principal, _ *models.Circuit) (bool, error) {
	return p != nil, nil
}

func (OwnerPolicy) CanWrite(_ context.Context, p *Principal, c *models.Circuit) (bool, error) {
	if p == nil || c.OwnerID == nil {
		return false, nil
	}
	return *c.OwnerID == p.ID(), nil
}

// CollaboratorPolicy grants writes to every collaborator of the circuit.
type CollaboratorPolicy struct {
	Memberships Memberships
}

func (CollaboratorPolicy) Name() string              { return PolicyCollaborator }
func (CollaboratorPolicy) Relation() models.Relation { return models.RelationCollaborator }

func (CollaboratorPolicy) CanRead(_ context.Context, p *Principal, _ *models.Circuit) (bool, error) {
	return p != nil, nil
}

func (cp CollaboratorPolicy) CanWrite(ctx context.Context, p *Principal, c *models.Circuit) (bool, error) {
	if p == nil {
		return false, nil
	}
	return cp.Memberships.IsCollaborator(ctx, c.ID, p.ID())
}
