// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the smartgarden API.

# Handler Types

  - CircuitHandler: circuit listing, detail, schedules, one-time activations
    and the activation log
  - ControllerHandler: the device side (/circuits/mine)
  - UserHandler: the caller's account and the admin user list

Circuit and controller handlers are thin wrappers around a
*circuits.Service:

	svc := circuits.NewService(repo, policy, clock.WallClock)
	circuitHandler := handlers.NewCircuitHandler(svc)

Every handler expects the principal in the request context (see
middleware.RequireAuth).

# Circuits

	GET  /circuits                          → ListCircuits
	GET  /circuits/{id}                     → GetCircuit
	GET  /circuits/{id}/schedule            → GetSchedule
	PUT  /circuits/{id}/schedule            → ReplaceSchedule (write access)
	GET  /circuits/{id}/one-time-activations → ListOneTimeActivations
	POST /circuits/{id}/one-time-activations → CreateOneTimeActivation (write access)
	GET  /circuits/{id}/activation-log      → ListActivationLog (write access)

A schedule replacement body is the full list of entries:

	[{"active": true, "amount": 100, "time": "08:00:00"}]

# Controllers

	GET   /circuits/mine                → GetMine
	PATCH /circuits/mine/health-check   → HealthCheck
	POST  /circuits/mine/activation-log → RecordActivation

Activation bodies are {"amount": 200, "timestamp": "2024-01-01T10:00:00"}.

# Errors

Service errors map to status codes:

	Unauthorized → 401
	Forbidden    → 403
	NotFound     → 404
	NotValid     → 400 (with "details" listing each failing field)
	other        → 500 (logged)

Non-numeric circuit ids are reported as 404.
*/
package handlers
