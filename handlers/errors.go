// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/juju/errors"

	"github.com/danielhkuo/smartgarden/circuits"
	"github.com/danielhkuo/smartgarden/middleware"
	"github.com/danielhkuo/smartgarden/models"
)

// writeError maps service errors to HTTP responses. Unexpected errors are
// logged and reported as failedMsg.
func writeError(w http.ResponseWriter, r *http.Request, err error, failedMsg string) {
	var verr *circuits.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.JSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: "Invalid request body",
			Details: verr.Problems,
		})
	case errors.Is(err, errors.NotValid), errors.Is(err, errors.BadRequest):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.Unauthorized):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication credentials were not provided")
	case errors.Is(err, errors.Forbidden):
		middleware.ErrorResponse(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, errors.NotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
	default:
		slog.Error(failedMsg,
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestID(r.Context()),
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, failedMsg)
	}
}

// circuitID reads the {id} path value. Non-numeric ids match no circuit.
func circuitID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NotFoundf("circuit %q", raw)
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into an untyped value for validation.
func parseBody(w http.ResponseWriter, r *http.Request) (any, bool) {
	var body any
	if err := middleware.ParseJSONBody(r, &body); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	return body, true
}
