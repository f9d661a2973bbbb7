// Package observability aggregates engine counters for the heartbeat worker.
package observability

import (
	"sync/atomic"
)

// Monitor is written by the engine (single goroutine) and read by the
// heartbeat worker, hence the atomics.
type Monitor struct {
	delivered   atomic.Uint64
	duplicates  atomic.Uint64
	escalations atomic.Uint64
	roomsOpen   atomic.Int64
	waiting     atomic.Int64
	seenIDs     atomic.Int64
	connections atomic.Int64
}

type Snapshot struct {
	Delivered   uint64
	Duplicates  uint64
	Escalations uint64
	RoomsOpen   int64
	Waiting     int64
	SeenIDs     int64
	Connections int64
}

func NewMonitor() *Monitor { return &Monitor{} }

func (m *Monitor) IncrDelivered() {
	if m != nil {
		m.delivered.Add(1)
	}
}

func (m *Monitor) IncrDuplicates() {
	if m != nil {
		m.duplicates.Add(1)
	}
}

func (m *Monitor) IncrEscalations() {
	if m != nil {
		m.escalations.Add(1)
	}
}

func (m *Monitor) AddRooms(delta int64) {
	if m != nil {
		m.roomsOpen.Add(delta)
	}
}

func (m *Monitor) SetWaiting(n int64) {
	if m != nil {
		m.waiting.Store(n)
	}
}

func (m *Monitor) SetSeenIDs(n int64) {
	if m != nil {
		m.seenIDs.Store(n)
	}
}

func (m *Monitor) AddConnections(delta int64) {
	if m != nil {
		m.connections.Add(delta)
	}
}

func (m *Monitor) GetLatest() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Delivered:   m.delivered.Load(),
		Duplicates:  m.duplicates.Load(),
		Escalations: m.escalations.Load(),
		RoomsOpen:   m.roomsOpen.Load(),
		Waiting:     m.waiting.Load(),
		SeenIDs:     m.seenIDs.Load(),
		Connections: m.connections.Load(),
	}
}
