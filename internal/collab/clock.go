package collab

import "time"

// VirtualClock is the engine-scoped clock spec §9 calls for: not a process
// global, passed explicitly into whatever owns it (the engine holds one
// instance for its whole lifetime).
type VirtualClock struct {
	now time.Time
}

// NewVirtualClock returns a clock initialised to the zero time; the engine
// advances it from the first tick it processes.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

func (c *VirtualClock) SetTime(t time.Time) { c.now = t }
func (c *VirtualClock) Now() time.Time      { return c.now }
