// Package session keeps one form State per page session.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pi-senac-4/studybuddy-web/internal/form"
	"github.com/pi-senac-4/studybuddy-web/internal/models"
)

const (
	DefaultTTL = 30 * time.Minute
	CookieName = "sb_page"

	// DefaultInFlightTTL bounds how long a crashed submit can hold the gate.
	DefaultInFlightTTL = 2 * time.Minute

	inFlightMargin = 30 * time.Second
)

// InFlightTTLFor returns a gate TTL that outlives an API call bounded by
// apiTimeout, never shorter than DefaultInFlightTTL.
func InFlightTTLFor(apiTimeout time.Duration) time.Duration {
	if d := apiTimeout + inFlightMargin; d > DefaultInFlightTTL {
		return d
	}
	return DefaultInFlightTTL
}

// Store persists redacted page state between form posts.
type Store interface {
	// Load returns the saved state, or a fresh one if id is unknown or expired.
	Load(ctx context.Context, id string) (models.State, error)
	Save(ctx context.Context, id string, st models.State) error
	Delete(ctx context.Context, id string) error
	// Gate returns the in-flight gate of page id.
	Gate(id string) form.Gate
	// InFlight reports whether page id's gate is currently held.
	InFlight(ctx context.Context, id string) (bool, error)
}

// NewID returns a fresh page session id.
func NewID() string {
	return uuid.New().String()
}

// ValidID reports whether id looks like one produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
