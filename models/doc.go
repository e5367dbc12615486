// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the stored entities and the JSON wire types.

# Entities

Stored through gorm, one table each:

  - User: email, username, user_type (ADMIN, USER, DEVICE)
  - Circuit: name, active, health_check, owner and controller references
  - CircuitCollaboration: grants a user access to a circuit
  - ScheduledActivation: recurring daily rule (active, amount, time)
  - OneTimeActivation: ad-hoc activation at a timestamp
  - ActivationLog: completed activation reported by the controller
  - AuthToken: HMAC hash of a bearer token

# Wire Types

  - CircuitView: id, name, active, healthy, health_check,
    one_time_activation, schedule
  - ScheduleEntry: active, amount, time
  - ActivationEntry: amount, timestamp
  - ErrorResponse: error, message, details

# Formats

Timestamps travel as YYYY-MM-DDTHH:MM:SS in UTC:

	models.FormatTimestamp(t)        // "2024-01-01T10:00:00"
	t, err := models.ParseTimestamp(s)

Times of day travel as HH:MM:SS and are stored the same way:

	tod, err := models.ParseTimeOfDay("08:00:00")
*/
package models
