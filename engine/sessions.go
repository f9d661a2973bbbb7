package engine

import (
	"sync"

	"campus-desk/contract"
)

// SessionRegistry maps live connection IDs to their delivery sinks. Unlike
// the engine state it is written from transport goroutines (attach on
// upgrade, detach on close) and read by the fanout worker, hence the mutex.
type SessionRegistry struct {
	mu         sync.RWMutex
	sinks      map[string]contract.EventSink
	byIdentity map[string]string
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sinks:      make(map[string]contract.EventSink),
		byIdentity: make(map[string]string),
	}
}

func (r *SessionRegistry) Attach(connID, identity string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[connID] = sink
	if identity != "" {
		r.byIdentity[identity] = connID
	}
}

// Detach removes the connection and any identity entry pointing at it, so no
// sink reference outlives its session.
func (r *SessionRegistry) Detach(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, connID)
	for identity, id := range r.byIdentity {
		if id == connID {
			delete(r.byIdentity, identity)
		}
	}
}

func (r *SessionRegistry) Sink(connID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[connID]
	return sink, ok
}

func (r *SessionRegistry) SinkByIdentity(identity string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.byIdentity[identity]
	if !ok {
		return nil, false
	}
	sink, ok := r.sinks[connID]
	return sink, ok
}
