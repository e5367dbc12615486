// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package circuits implements the circuit queries and writes behind the API.

# Service

Service combines a Store (db.Repository in production), an auth.Policy and
a clock:

	svc := circuits.NewService(repo, policy, clock.WallClock)
	views, err := svc.ListCircuits(ctx, principal)

Every method takes the request's *auth.Principal. A nil principal yields an
Unauthorized error. Writes to a circuit the principal may not change yield
Forbidden. Lists and detail lookups are scoped by the policy's relation, so
circuits outside it are simply absent (NotFound for a detail lookup).

# Derived Fields

Circuit views carry fields computed from the stored entity and the current
time:

  - healthy: the last heartbeat is less than HealthWindow (15 minutes) old
  - one_time_activation: the latest one-time activation dated today
  - schedule: recurring activations, latest time of day first

"Today" is the UTC calendar day; see DayBounds.

# Schedule Replacement

ReplaceSchedule swaps the whole schedule of a circuit:

 1. check write access
 2. validate every entry (ValidateSchedule)
 3. delete and insert in one transaction

A *ValidationError lists every failing field as "[index].field: reason".
It unwraps to errors.NotValid (github.com/juju/errors). An empty list clears
the schedule.

# Controllers

A controller is the user assigned to a circuit's controller_id. HealthCheck
stores a heartbeat and RecordActivation appends to the activation log of
that circuit. Both return NotFound when the principal controls no circuit.

# Metrics

The package registers Prometheus counters for schedule replacements,
recorded activations and controller heartbeats.
*/
package circuits
