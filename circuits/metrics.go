// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package circuits

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scheduleReplacements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartgarden",
		Name:      "schedule_replacements_total",
		Help:      "Schedule replacement attempts by outcome.",
	}, []string{"outcome"})

	activationsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartgarden",
		Name:      "activations_recorded_total",
		Help:      "One-time activations created and activation log entries recorded.",
	}, []string{"kind"})

	heartbeats = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "smartgarden",
		Name:      "controller_heartbeats_total",
		Help:      "Health checks reported by controllers.",
	})
)
