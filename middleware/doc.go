// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one record per request once the handler returns (method, path,
status, remote, request_id, duration_ms), at error level for 5xx. Each request gets an X-Request-ID, taken from the
client or generated with google/uuid, echoed in the response and available
through RequestID(ctx).

WithLogging also records Prometheus metrics per route pattern:

	smartgarden_http_requests_total{route, method, code}
	smartgarden_http_request_duration_seconds{route, method}

# Authentication

RequireAuth resolves the principal before the handler runs:

	mux.HandleFunc("GET /circuits", middleware.WithLogging(
		middleware.RequireAuth(authn, circuitHandler.ListCircuits)))

Requests without valid credentials get 401 with a WWW-Authenticate header.
Handlers read the principal with auth.PrincipalFrom(r.Context()).

# CORS Middleware

Enable cross-origin requests for the configured browser origins:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins)(mux),
	}

Listed origins are reflected with Access-Control-Allow-Credentials. A "*"
entry admits any origin without credentials, so browsers never send cached
Basic credentials to it. Other origins get no CORS headers and their
preflight requests get 403; allowed preflights get 204.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies. Numbers land as json.Number when decoded into
untyped values:

	var body any
	if err := middleware.ParseJSONBody(r, &body); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

The first X-Forwarded-For hop wins, then X-Real-IP, then RemoteAddr
without its port:

	ip := middleware.GetClientIP(r)
*/
package middleware
