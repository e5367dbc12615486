// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/juju/errors"

	"github.com/danielhkuo/smartgarden/auth"
	"github.com/danielhkuo/smartgarden/middleware"
	"github.com/danielhkuo/smartgarden/models"
)

// UserStore lists accounts.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

type UserHandler struct {
	users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if p == nil {
		writeError(w, r, errors.Unauthorizedf("no principal"), "Failed to get user")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p.User)
}

// ListUsers handles GET /users (admins only)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if p == nil {
		writeError(w, r, errors.Unauthorizedf("no principal"), "Failed to list users")
		return
	}
	if !p.User.IsAdmin() {
		writeError(w, r, errors.Forbiddenf("user %d is not an admin", p.ID()), "Failed to list users")
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to list users")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, users)
}
