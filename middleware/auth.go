// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/juju/errors"

	"github.com/danielhkuo/smartgarden/auth"
)

// Authenticator resolves the principal of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*auth.Principal, error)
}

// RequireAuth rejects requests without valid credentials and stores the
// principal in the request context for next.
func RequireAuth(a Authenticator, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.Authenticate(r)
		if errors.Is(err, errors.Unauthorized) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="smartgarden"`)
			ErrorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}
		if err != nil {
			slog.Error("failed to authenticate request",
				"error", err,
				"request_id", RequestID(r.Context()),
			)
			ErrorResponse(w, http.StatusInternalServerError, "Authentication failed")
			return
		}

		next(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	}
}
