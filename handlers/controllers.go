// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/smartgarden/auth"
	"github.com/danielhkuo/smartgarden/circuits"
	"github.com/danielhkuo/smartgarden/middleware"
)

// ControllerHandler serves the device assigned to a circuit. The circuit
// is always resolved from the caller, never from the path.
type ControllerHandler struct {
	svc *circuits.Service
}

func NewControllerHandler(svc *circuits.Service) *ControllerHandler {
	return &ControllerHandler{svc: svc}
}

// GetMine handles GET /circuits/mine
func (h *ControllerHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ControlledCircuit(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err, "Failed to get circuit")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// HealthCheck handles PATCH /circuits/mine/health-check
func (h *ControllerHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.HealthCheck(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err, "Failed to record health check")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// RecordActivation handles POST /circuits/mine/activation-log
func (h *ControllerHandler) RecordActivation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.AuthorizeController(r.Context(), auth.PrincipalFrom(r.Context())); err != nil {
		writeError(w, r, err, "Failed to record activation")
		return
	}

	body, ok := parseBody(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.RecordActivation(r.Context(), auth.PrincipalFrom(r.Context()), body)
	if err != nil {
		writeError(w, r, err, "Failed to record activation")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entry)
}
