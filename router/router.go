// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/danielhkuo/smartgarden/auth"
	"github.com/danielhkuo/smartgarden/circuits"
	"github.com/danielhkuo/smartgarden/cliparse"
	"github.com/danielhkuo/smartgarden/db"
	"github.com/danielhkuo/smartgarden/handlers"
	"github.com/danielhkuo/smartgarden/middleware"
)

func NewRouter(conn *gorm.DB, cfg cliparse.Config, clk clock.Clock) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	repo := db.NewRepository(conn)
	policy, err := auth.NewPolicy(cfg.AuthPolicy, repo)
	if err != nil {
		return nil, err
	}
	authn := auth.NewAuthenticator(repo, cfg.TokenSalt)
	svc := circuits.NewService(repo, policy, clk)

	// Initialize handlers
	circuitHandler := handlers.NewCircuitHandler(svc)
	controllerHandler := handlers.NewControllerHandler(svc)
	userHandler := handlers.NewUserHandler(repo)

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(authn, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Circuits (owners and collaborators)
	mux.HandleFunc("GET /circuits", protected(circuitHandler.ListCircuits))
	mux.HandleFunc("GET /circuits/{id}", protected(circuitHandler.GetCircuit))
	mux.HandleFunc("GET /circuits/{id}/schedule", protected(circuitHandler.GetSchedule))
	mux.HandleFunc("PUT /circuits/{id}/schedule", protected(circuitHandler.ReplaceSchedule))
	mux.HandleFunc("GET /circuits/{id}/one-time-activations", protected(circuitHandler.ListOneTimeActivations))
	mux.HandleFunc("POST /circuits/{id}/one-time-activations", protected(circuitHandler.CreateOneTimeActivation))
	mux.HandleFunc("GET /circuits/{id}/activation-log", protected(circuitHandler.ListActivationLog))

	// Controller device
	mux.HandleFunc("GET /circuits/mine", protected(controllerHandler.GetMine))
	mux.HandleFunc("PATCH /circuits/mine/health-check", protected(controllerHandler.HealthCheck))
	mux.HandleFunc("POST /circuits/mine/activation-log", protected(controllerHandler.RecordActivation))

	// Users
	mux.HandleFunc("GET /users/me", protected(userHandler.GetMe))
	mux.HandleFunc("GET /users", protected(userHandler.ListUsers))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("smartgarden API v1"))
	})

	return mux, nil
}
