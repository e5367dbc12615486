// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package circuits

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/juju/schema"

	"github.com/danielhkuo/smartgarden/models"
)

// ValidationError lists every field that failed validation, formatted as
// "[index].field: reason" for batches and "field: reason" otherwise.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return errors.NotValid }

type field struct {
	name    string
	checker schema.Checker
}

// typed only lets values of one JSON type through to the wrapped checker.
// The schema checkers alone would turn "0x64" into 100 and 1 into true.
type typed struct {
	want    string
	accepts func(any) bool
	schema.Checker
}

func (t typed) Coerce(v any, path []string) (any, error) {
	if !t.accepts(v) {
		return nil, fmt.Errorf("expected %s, got %s", t.want, jsonKind(v))
	}
	return t.Checker.Coerce(v, path)
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// isInteger accepts JSON numbers written as base 10 integers.
func isInteger(v any) bool {
	switch x := v.(type) {
	case json.Number:
		_, err := strconv.ParseInt(string(x), 10, 64)
		return err == nil
	case int, int64:
		return true
	}
	return false
}

func jsonKind(v any) string {
	switch x := v.(type) {
	case bool:
		return "bool"
	case json.Number:
		return "number " + x.String()
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

var (
	boolField   = typed{"bool", isBool, schema.Bool()}
	intField    = typed{"int", isInteger, schema.Int()}
	stringField = typed{"string", isString, schema.String()}

	scheduleFields = []field{
		{"active", boolField},
		{"amount", intField},
		{"time", stringField},
	}
	activationFields = []field{
		{"amount", intField},
		{"timestamp", stringField},
	}
)

// coerce runs every checker against m and returns the coerced values and
// one problem per failing field.
func coerce(m map[string]any, fields []field, prefix string) (map[string]any, []string) {
	out := make(map[string]any, len(fields))
	var problems []string
	for _, f := range fields {
		v, ok := m[f.name]
		if !ok || v == nil {
			problems = append(problems, fmt.Sprintf("%s%s: this field is required", prefix, f.name))
			continue
		}
		c, err := f.checker.Coerce(v, nil)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s%s: %v", prefix, f.name, err))
			continue
		}
		out[f.name] = c
	}
	return out, problems
}

func amount(v any) (int, error) {
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int:
		n = int64(x)
	default:
		return 0, fmt.Errorf("expected int, got %T", v)
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("%d is out of range", n)
	}
	return int(n), nil
}

// ValidateSchedule checks a decoded schedule body. The whole batch is
// checked before anything is returned; raw must be a list of objects
// with active, amount and time.
func ValidateSchedule(raw any) ([]models.ScheduleEntry, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, &ValidationError{Problems: []string{"expected a list of schedule entries"}}
	}

	entries := make([]models.ScheduleEntry, 0, len(list))
	var problems []string
	for i, item := range list {
		prefix := fmt.Sprintf("[%d].", i)
		m, ok := item.(map[string]any)
		if !ok {
			problems = append(problems, fmt.Sprintf("[%d]: expected an object", i))
			continue
		}

		values, errs := coerce(m, scheduleFields, prefix)
		problems = append(problems, errs...)

		var entry models.ScheduleEntry
		if v, ok := values["active"]; ok {
			entry.Active = v.(bool)
		}
		if v, ok := values["amount"]; ok {
			n, err := amount(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%samount: %v", prefix, err))
			}
			entry.Amount = n
		}
		if v, ok := values["time"]; ok {
			t, err := models.ParseTimeOfDay(v.(string))
			if err != nil {
				problems = append(problems, fmt.Sprintf("%stime: %v", prefix, err))
			}
			entry.Time = t
		}
		entries = append(entries, entry)
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return entries, nil
}

// ValidateActivation checks a decoded {amount, timestamp} body.
func ValidateActivation(raw any) (int, time.Time, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return 0, time.Time{}, &ValidationError{Problems: []string{"expected an object"}}
	}

	values, problems := coerce(m, activationFields, "")
	var (
		n  int
		ts time.Time
	)
	if v, ok := values["amount"]; ok {
		var err error
		if n, err = amount(v); err != nil {
			problems = append(problems, fmt.Sprintf("amount: %v", err))
		}
	}
	if v, ok := values["timestamp"]; ok {
		var err error
		if ts, err = models.ParseTimestamp(v.(string)); err != nil {
			problems = append(problems, fmt.Sprintf("timestamp: %v", err))
		}
	}

	if len(problems) > 0 {
		return 0, time.Time{}, &ValidationError{Problems: problems}
	}
	return n, ts, nil
}
