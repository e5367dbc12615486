// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/smartgarden/auth"
	"github.com/danielhkuo/smartgarden/circuits"
	"github.com/danielhkuo/smartgarden/middleware"
)

type CircuitHandler struct {
	svc *circuits.Service
}

func NewCircuitHandler(svc *circuits.Service) *CircuitHandler {
	return &CircuitHandler{svc: svc}
}

// ListCircuits handles GET /circuits
func (h *CircuitHandler) ListCircuits(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.ListCircuits(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		writeError(w, r, err, "Failed to list circuits")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, views)
}

// GetCircuit handles GET /circuits/{id}
func (h *CircuitHandler) GetCircuit(w http.ResponseWriter, r *http.Request) {
	id, err := circuitID(r)
	if err != nil {
		writeError(w, r, err, "Failed to get circuit")
		return
	}

	view, err := h.svc.GetCircuit(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err, "Failed to get circuit")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, view)
}

// GetSchedule handles GET /circuits/{id}/schedule
func (h *CircuitHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := circuitID(r)
	if err != nil {
		writeError(w, r, err, "Failed to get schedule")
		return
	}

	schedule, err := h.svc.Schedule(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err, "Failed to get schedule")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, schedule)
}

// ReplaceSchedule handles PUT /circuits/{id}/schedule
func (h *CircuitHandler) ReplaceSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := circuitID(r)
	if err != nil {
		writeError(w, r, err, "Failed to replace schedule")
		return
	}
	if err := h.svc.AuthorizeWrite(r.Context(), auth.PrincipalFrom(r.Context()), id); err != nil {
		writeError(w, r, err, "Failed to replace schedule")
		return
	}

	body, ok := parseBody(w, r)
	if !ok {
		return
	}

	schedule, err := h.svc.ReplaceSchedule(r.Context(), auth.PrincipalFrom(r.Context()), id, body)
	if err != nil {
		writeError(w, r, err, "Failed to replace schedule")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, schedule)
}

// ListOneTimeActivations handles GET /circuits/{id}/one-time-activations
func (h *CircuitHandler) ListOneTimeActivations(w http.ResponseWriter, r *http.Request) {
	id, err := circuitID(r)
	if err != nil {
		writeError(w, r, err, "Failed to list one-time activations")
		return
	}

	activations, err := h.svc.OneTimeActivations(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err, "Failed to list one-time activations")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, activations)
}

// CreateOneTimeActivation handles POST /circuits/{id}/one-time-activations
func (h *CircuitHandler) CreateOneTimeActivation(w http.ResponseWriter, r *http.Request) {
	id, err := circuitID(r)
	if err != nil {
		writeError(w, r, err, "Failed to create one-time activation")
		return
	}
	if err := h.svc.AuthorizeWrite(r.Context(), auth.PrincipalFrom(r.Context()), id); err != nil {
		writeError(w, r, err, "Failed to create one-time activation")
		return
	}

	body, ok := parseBody(w, r)
	if !ok {
		return
	}

	activation, err := h.svc.CreateOneTimeActivation(r.Context(), auth.PrincipalFrom(r.Context()), id, body)
	if err != nil {
		writeError(w, r, err, "Failed to create one-time activation")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, activation)
}

// ListActivationLog handles GET /circuits/{id}/activation-log
func (h *CircuitHandler) ListActivationLog(w http.ResponseWriter, r *http.Request) {
	id, err := circuitID(r)
	if err != nil {
		writeError(w, r, err, "Failed to list activation log")
		return
	}

	entries, err := h.svc.ActivationLog(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err, "Failed to list activation log")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, entries)
}
