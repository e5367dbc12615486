package models

// Response types

// ScheduleEntry is the wire shape of one scheduled activation, used both
// for schedule replacement input and for every schedule listing.
type ScheduleEntry struct {
	Active bool      `json:"active"`
	Amount int       `json:"amount"`
	Time   TimeOfDay `json:"time"`
}

// ActivationEntry is the wire shape shared by one-time activations and the
// activation log.
type ActivationEntry struct {
	Amount    int       `json:"amount"`
	Timestamp Timestamp `json:"timestamp"`
}

type CircuitView struct {
	ID                uint             `json:"id"`
	Name              string           `json:"name"`
	Active            bool             `json:"active"`
	Healthy           bool             `json:"healthy"`
	HealthCheck       *Timestamp       `json:"health_check"`
	OneTimeActivation *ActivationEntry `json:"one_time_activation"`
	Schedule          []ScheduleEntry  `json:"schedule"`
}

// Error response

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}
