// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/smartgarden/models"
	"github.com/danielhkuo/smartgarden/testutil"
)

// TestFullIrrigationWorkflow tests the complete end-to-end workflow:
// 1. Owner sets a schedule
// 2. Collaborator adds a one-time activation
// 3. Controller reports a heartbeat
// 4. Controller polls its circuit
// 5. Controller logs a completed activation
// 6. Owner reads the log
// 7. Heartbeat goes stale
// 8. Owner clears the schedule
func TestFullIrrigationWorkflow(t *testing.T) {
	env := setupEnv(t)
	schedulePath, id := idPath("/circuits/%s/schedule", env.circuit.ID)
	activationsPath, _ := idPath("/circuits/%s/one-time-activations", env.circuit.ID)
	logPath, _ := idPath("/circuits/%s/activation-log", env.circuit.ID)

	do := func(handler http.HandlerFunc, user models.User, method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler(w, as(req, user))
		return w
	}

	// Step 1: Owner sets a schedule
	w := do(env.circuitHandler.ReplaceSchedule, env.owner, "PUT", schedulePath,
		`[{"active":true,"amount":100,"time":"06:30:00"},{"active":true,"amount":80,"time":"19:00:00"}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 1 - Replace schedule failed: %d - %s", w.Code, w.Body.String())
	}
	t.Log("Step 1 - Schedule set")

	// Step 2: Collaborator adds a one-time activation
	w = do(env.circuitHandler.CreateOneTimeActivation, env.collaborator, "POST", activationsPath,
		`{"amount":300,"timestamp":"2024-01-01T15:00:00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 2 - Create one-time activation failed: %d - %s", w.Code, w.Body.String())
	}
	t.Log("Step 2 - One-time activation created")

	// Step 3: Controller reports a heartbeat
	w = do(env.controllerHandler.HealthCheck, env.device, "PATCH", "/circuits/mine/health-check", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Step 3 - Health check failed: %d - %s", w.Code, w.Body.String())
	}
	t.Log("Step 3 - Heartbeat recorded")

	// Step 4: Controller polls its circuit
	w = do(env.controllerHandler.GetMine, env.device, "GET", "/circuits/mine", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Step 4 - Get mine failed: %d - %s", w.Code, w.Body.String())
	}
	var mine models.CircuitView
	testutil.AssertJSON(t, w, &mine)
	if !mine.Healthy {
		t.Error("Step 4 - Expected healthy circuit")
	}
	if len(mine.Schedule) != 2 || mine.Schedule[0].Time.String() != "19:00:00" {
		t.Errorf("Step 4 - Unexpected schedule: %+v", mine.Schedule)
	}
	if mine.OneTimeActivation == nil || mine.OneTimeActivation.Amount != 300 {
		t.Errorf("Step 4 - Expected one-time activation of 300, got %+v", mine.OneTimeActivation)
	}
	t.Log("Step 4 - Controller sees schedule and activation")

	// Step 5: Controller logs a completed activation
	w = do(env.controllerHandler.RecordActivation, env.device, "POST", "/circuits/mine/activation-log",
		`{"amount":300,"timestamp":"2024-01-01T15:00:00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Record activation failed: %d - %s", w.Code, w.Body.String())
	}
	t.Log("Step 5 - Activation logged")

	// Step 6: Owner reads the log
	w = do(env.circuitHandler.ListActivationLog, env.owner, "GET", logPath, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Activation log failed: %d - %s", w.Code, w.Body.String())
	}
	var log []models.ActivationEntry
	testutil.AssertJSON(t, w, &log)
	if len(log) != 1 || log[0].Amount != 300 {
		t.Errorf("Step 6 - Unexpected log: %+v", log)
	}
	t.Log("Step 6 - Log verified")

	// Step 7: Heartbeat goes stale
	env.clock.Advance(16 * time.Minute)
	w = do(env.circuitHandler.GetCircuit, env.owner, "GET", "/circuits/"+id, "")
	var detail models.CircuitView
	testutil.AssertJSON(t, w, &detail)
	if detail.Healthy {
		t.Error("Step 7 - Expected unhealthy circuit after 16 minutes")
	}
	t.Log("Step 7 - Stale heartbeat detected")

	// Step 8: Owner clears the schedule
	w = do(env.circuitHandler.ReplaceSchedule, env.owner, "PUT", schedulePath, `[]`)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 8 - Clear schedule failed: %d - %s", w.Code, w.Body.String())
	}
	w = do(env.circuitHandler.GetSchedule, env.device, "GET", schedulePath, "")
	var schedule []models.ScheduleEntry
	testutil.AssertJSON(t, w, &schedule)
	if len(schedule) != 0 {
		t.Errorf("Step 8 - Expected empty schedule, got %+v", schedule)
	}
	t.Log("Step 8 - Schedule cleared")
}
