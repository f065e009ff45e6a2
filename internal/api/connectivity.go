package api

import "sync/atomic"

// Connectivity is a process-wide online/offline signal. Connectivity watchers
// write it; the client only reads it before each attempt.
type Connectivity struct {
	offline atomic.Bool
}

// Network is the default signal shared by every Client that does not set its own.
var Network = &Connectivity{}

// SetOnline records the current connectivity state.
func (c *Connectivity) SetOnline(online bool) {
	c.offline.Store(!online)
}

// Online reports the last recorded state. A zero Connectivity is online.
func (c *Connectivity) Online() bool {
	if c == nil {
		return true
	}
	return !c.offline.Load()
}
