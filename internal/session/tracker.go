// Package session tracks request generations per client session so that a
// slow response never overwrites the answer to a newer request.
package session

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL bounds how long an idle session's generations are remembered.
const DefaultTTL = 30 * time.Minute

const maxIDLength = 128

// Tracker hands out increasing generations per (session, topic).
// A request is current while no newer generation has begun.
type Tracker interface {
	Begin(ctx context.Context, sessionID, topic string) (int64, error)
	IsCurrent(ctx context.Context, sessionID, topic string, gen int64) (bool, error)
}

// ValidID reports whether id is usable as a session identifier.
func ValidID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func key(sessionID, topic string) string {
	return "session:" + sessionID + ":" + strings.ToLower(topic)
}
