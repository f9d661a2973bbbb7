// Package domain contains core concepts of the support desk.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Connection is a live transport session. The ID is opaque and unique per
// session; Identity is the authenticated username behind it (several sessions
// may carry the same identity over the process lifetime, never at once).
type Connection struct {
	ID       string
	Identity string
	Name     string
	Operator bool
}

// EscalationState tracks automated-assistant turns for one identity.
// The counter never decreases within a session and saturates at the
// configured limit.
type EscalationState struct {
	Count           int
	LastInteraction time.Time
}
