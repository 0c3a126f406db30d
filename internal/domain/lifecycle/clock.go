// Package lifecycle holds the rules of a hackathon application: who may apply,
// how phase submissions move between states, what an organizer may do to them,
// and when a hackathon's results count as published. Everything here is pure;
// loading, locking and persisting happen in the service layer.
package lifecycle

import (
	"fmt"
	"strings"
	"time"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// DeadlinePassed reports whether now is strictly after deadline.
// A zero deadline never passes.
func DeadlinePassed(now, deadline time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	return now.After(deadline)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
