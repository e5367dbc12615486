// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"gorm.io/gorm"

	"github.com/danielhkuo/smartgarden/auth"
	"github.com/danielhkuo/smartgarden/cliparse"
	"github.com/danielhkuo/smartgarden/db"
	"github.com/danielhkuo/smartgarden/models"
)

// TestNow is the instant every test clock starts at.
var TestNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewTestClock returns a clock frozen at TestNow
func NewTestClock() *testclock.Clock {
	return testclock.NewClock(TestNow)
}

// SetupTestDB creates a fresh SQLite database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "smartgarden_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := db.Migrate(context.Background(), conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "smartgarden_test.db",
		DatabaseType: db.TypeSQLite,
		TokenSalt:    "test-token-salt",
		AuthPolicy:   cliparse.AuthPolicyCollaborator,
	}
}

// TestPassword is the password of every user created by CreateTestUser
const TestPassword = "garden-password"

// CreateTestUser creates a user and returns it with a fresh bearer token
func CreateTestUser(t *testing.T, conn *gorm.DB, cfg cliparse.Config, email string, userType models.UserType) (models.User, string) {
	t.Helper()

	ctx := context.Background()
	repo := db.NewRepository(conn)

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{Email: email, UserType: userType, PasswordHash: hash}
	if err := repo.CreateUser(ctx, &user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, err := auth.IssueToken(ctx, repo, user.ID, "test", cfg.TokenSalt)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}

	return user, token
}

// AuthHeader returns the headers authenticating a request with token
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// CreateTestCircuit creates an active circuit. A non-nil owner becomes
// both owner and collaborator.
func CreateTestCircuit(t *testing.T, conn *gorm.DB, name string, owner *models.User) models.Circuit {
	t.Helper()

	ctx := context.Background()
	repo := db.NewRepository(conn)

	circuit := models.Circuit{Name: name, Active: true}
	if owner != nil {
		circuit.OwnerID = &owner.ID
	}
	if err := repo.CreateCircuit(ctx, &circuit); err != nil {
		t.Fatalf("Failed to create test circuit: %v", err)
	}
	if owner != nil {
		AddTestCollaborator(t, conn, circuit.ID, owner.ID)
	}

	return circuit
}

// AddTestCollaborator links a user to a circuit
func AddTestCollaborator(t *testing.T, conn *gorm.DB, circuitID, userID uint) {
	t.Helper()

	if err := db.NewRepository(conn).AddCollaborator(context.Background(), circuitID, userID); err != nil {
		t.Fatalf("Failed to add test collaborator: %v", err)
	}
}

// AssignTestController makes userID the controller of a circuit
func AssignTestController(t *testing.T, conn *gorm.DB, circuitID, userID uint) {
	t.Helper()

	if err := db.NewRepository(conn).AssignController(context.Background(), circuitID, &userID); err != nil {
		t.Fatalf("Failed to assign test controller: %v", err)
	}
}

// AddTestSchedule stores one scheduled activation; at is HH:MM:SS
func AddTestSchedule(t *testing.T, conn *gorm.DB, circuitID uint, active bool, amount int, at string) models.ScheduledActivation {
	t.Helper()

	tod, err := models.ParseTimeOfDay(at)
	if err != nil {
		t.Fatalf("Invalid test time %q: %v", at, err)
	}
	entry := models.ScheduledActivation{CircuitID: circuitID, Active: active, Amount: amount, Time: tod}
	if err := conn.Create(&entry).Error; err != nil {
		t.Fatalf("Failed to create test schedule entry: %v", err)
	}

	return entry
}

// AddTestOneTimeActivation stores a one-time activation at ts
func AddTestOneTimeActivation(t *testing.T, conn *gorm.DB, circuitID uint, amount int, ts time.Time) models.OneTimeActivation {
	t.Helper()

	activation := models.OneTimeActivation{CircuitID: circuitID, Amount: amount, Timestamp: ts}
	if err := db.NewRepository(conn).CreateOneTimeActivation(context.Background(), &activation); err != nil {
		t.Fatalf("Failed to create test one-time activation: %v", err)
	}

	return activation
}

// SetTestHealthCheck sets a circuit's last heartbeat
func SetTestHealthCheck(t *testing.T, conn *gorm.DB, circuitID uint, at time.Time) {
	t.Helper()

	if err := db.NewRepository(conn).SetHealthCheck(context.Background(), circuitID, at); err != nil {
		t.Fatalf("Failed to set test health check: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
