// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/juju/clock/testclock"
	"gorm.io/gorm"

	"github.com/danielhkuo/smartgarden/auth"
	"github.com/danielhkuo/smartgarden/circuits"
	"github.com/danielhkuo/smartgarden/db"
	"github.com/danielhkuo/smartgarden/models"
	"github.com/danielhkuo/smartgarden/testutil"
)

// testEnv wires handlers to a fresh database with a garden of users:
// owner and collaborator work on circuit, device controls it, and
// stranger owns a circuit of its own.
type testEnv struct {
	db    *gorm.DB
	clock *testclock.Clock

	circuitHandler    *CircuitHandler
	controllerHandler *ControllerHandler
	userHandler       *UserHandler

	owner, collaborator, stranger, device, admin models.User
	circuit, otherCircuit                        models.Circuit
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	repo := db.NewRepository(conn)

	policy, err := auth.NewPolicy(cfg.AuthPolicy, repo)
	if err != nil {
		t.Fatal(err)
	}
	clk := testutil.NewTestClock()
	svc := circuits.NewService(repo, policy, clk)

	env := &testEnv{
		db:                conn,
		clock:             clk,
		circuitHandler:    NewCircuitHandler(svc),
		controllerHandler: NewControllerHandler(svc),
		userHandler:       NewUserHandler(repo),
	}

	env.owner, _ = testutil.CreateTestUser(t, conn, cfg, "owner@test.com", models.UserTypeUser)
	env.collaborator, _ = testutil.CreateTestUser(t, conn, cfg, "collab@test.com", models.UserTypeUser)
	env.stranger, _ = testutil.CreateTestUser(t, conn, cfg, "stranger@test.com", models.UserTypeUser)
	env.device, _ = testutil.CreateTestUser(t, conn, cfg, "device@test.com", models.UserTypeDevice)
	env.admin, _ = testutil.CreateTestUser(t, conn, cfg, "admin@test.com", models.UserTypeAdmin)

	env.circuit = testutil.CreateTestCircuit(t, conn, "Front lawn", &env.owner)
	testutil.AddTestCollaborator(t, conn, env.circuit.ID, env.collaborator.ID)
	testutil.AssignTestController(t, conn, env.circuit.ID, env.device.ID)
	env.otherCircuit = testutil.CreateTestCircuit(t, conn, "Greenhouse", &env.stranger)

	return env
}

// as attaches user as the authenticated principal of req
func as(req *http.Request, user models.User) *http.Request {
	return req.WithContext(auth.WithPrincipal(req.Context(), &auth.Principal{User: user}))
}
