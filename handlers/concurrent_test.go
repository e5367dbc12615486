// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/smartgarden/models"
	"github.com/danielhkuo/smartgarden/testutil"
)

// TestConcurrentScheduleReplacements verifies that simultaneous full
// replacements of one circuit's schedule leave exactly one submitted set
// behind, never a mix of several.
func TestConcurrentScheduleReplacements(t *testing.T) {
	env := setupEnv(t)
	path, id := idPath("/circuits/%s/schedule", env.circuit.ID)

	numWriters := 8
	entriesPerWriter := 3

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(writer int) {
			defer wg.Done()

			// Every entry of a writer carries the writer's amount
			entries := make([]string, entriesPerWriter)
			for j := range entries {
				entries[j] = fmt.Sprintf(`{"active":true,"amount":%d,"time":"%02d:00:00"}`, writer+1, j+6)
			}
			body := "[" + strings.Join(entries, ",") + "]"

			user := env.owner
			if writer%2 == 1 {
				user = env.collaborator
			}
			req := as(httptest.NewRequest("PUT", path, strings.NewReader(body)), user)
			req.SetPathValue("id", id)
			w := httptest.NewRecorder()

			env.circuitHandler.ReplaceSchedule(w, req)

			if w.Code == http.StatusOK {
				successCount.Add(1)
			} else {
				t.Errorf("writer %d: status %d: %s", writer, w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numWriters {
		t.Errorf("Expected %d successful replacements, got %d", numWriters, successCount.Load())
	}

	req := as(httptest.NewRequest("GET", path, nil), env.owner)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	env.circuitHandler.GetSchedule(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var schedule []models.ScheduleEntry
	testutil.AssertJSON(t, w, &schedule)

	if len(schedule) != entriesPerWriter {
		t.Fatalf("Expected %d entries from a single writer, got %d: %+v", entriesPerWriter, len(schedule), schedule)
	}
	for _, e := range schedule[1:] {
		if e.Amount != schedule[0].Amount {
			t.Errorf("Schedule mixes writers: %+v", schedule)
			break
		}
	}
}

// TestConcurrentOneTimeActivations verifies that parallel appends are all
// stored.
func TestConcurrentOneTimeActivations(t *testing.T) {
	env := setupEnv(t)
	path, id := idPath("/circuits/%s/one-time-activations", env.circuit.ID)

	numRequests := 10
	var wg sync.WaitGroup
	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			body := fmt.Sprintf(`{"amount":%d,"timestamp":"2024-01-01T%02d:00:00"}`, n, n)
			req := as(httptest.NewRequest("POST", path, strings.NewReader(body)), env.collaborator)
			req.SetPathValue("id", id)
			w := httptest.NewRecorder()
			env.circuitHandler.CreateOneTimeActivation(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("request %d: status %d: %s", n, w.Code, w.Body.String())
			}
		}(i)
	}
	wg.Wait()

	req := as(httptest.NewRequest("GET", path, nil), env.owner)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	env.circuitHandler.ListOneTimeActivations(w, req)

	var list []models.ActivationEntry
	testutil.AssertJSON(t, w, &list)
	if len(list) != numRequests {
		t.Errorf("Expected %d activations, got %d", numRequests, len(list))
	}
	if len(list) > 0 && list[0].Amount != numRequests-1 {
		t.Errorf("Expected newest first, got %+v", list[0])
	}
}
