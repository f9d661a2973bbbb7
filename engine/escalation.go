package engine

import (
	"time"

	"campus-desk/domain"
)

// TurnResult reports one assistant turn. JustReachedLimit is true exactly
// once per identity: on the turn that crosses the configured budget. Callers
// enqueue the identity for operator pickup only on that edge.
type TurnResult struct {
	Count            int
	JustReachedLimit bool
}

// EscalationTracker counts automated-assistant turns per identity and
// decides when a human operator must be pulled in. States are created
// lazily on first turn.
type EscalationTracker struct {
	limit  int
	states map[string]*domain.EscalationState
	now    func() time.Time
}

func NewEscalationTracker(limit int) *EscalationTracker {
	return &EscalationTracker{
		limit:  limit,
		states: make(map[string]*domain.EscalationState),
		now:    time.Now,
	}
}

// RecordTurn increments the counter unless it already sits at the limit, in
// which case the count is returned unchanged and the limit transition does
// not re-fire.
func (t *EscalationTracker) RecordTurn(identity string) TurnResult {
	if identity == "" {
		return TurnResult{}
	}
	s, ok := t.states[identity]
	if !ok {
		s = &domain.EscalationState{}
		t.states[identity] = s
	}
	s.LastInteraction = t.now().UTC()
	if s.Count >= t.limit {
		return TurnResult{Count: s.Count}
	}
	s.Count++
	return TurnResult{Count: s.Count, JustReachedLimit: s.Count == t.limit}
}

// Saturated reports whether the identity has exhausted its budget.
func (t *EscalationTracker) Saturated(identity string) bool {
	s, ok := t.states[identity]
	return ok && s.Count >= t.limit
}

func (t *EscalationTracker) Limit() int { return t.limit }
