// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the smartgarden API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux, err := router.NewRouter(conn, cfg, clock.WallClock)

It fails only when cfg.AuthPolicy names an unknown policy.

# Endpoints

Public:

	GET /health  - Liveness
	GET /metrics - Prometheus metrics

Circuits (bearer token or basic auth):

	GET  /circuits                           - Circuits the caller relates to
	GET  /circuits/{id}                      - Circuit detail
	GET  /circuits/{id}/schedule             - Recurring activations
	PUT  /circuits/{id}/schedule             - Replace the whole schedule
	GET  /circuits/{id}/one-time-activations - Today's one-time activations
	POST /circuits/{id}/one-time-activations - Add a one-time activation
	GET  /circuits/{id}/activation-log       - Completed activations

Controller device:

	GET   /circuits/mine                - The controlled circuit
	PATCH /circuits/mine/health-check   - Heartbeat
	POST  /circuits/mine/activation-log - Report a completed activation

Users:

	GET /users/me - The caller
	GET /users    - All users (admins only)

# Handler Initialization

The router builds the dependency graph once:

	repo := db.NewRepository(conn)
	policy, _ := auth.NewPolicy(cfg.AuthPolicy, repo)
	authn := auth.NewAuthenticator(repo, cfg.TokenSalt)
	svc := circuits.NewService(repo, policy, clk)

Protected routes are wrapped as WithLogging(RequireAuth(authn, handler)).
*/
package router
