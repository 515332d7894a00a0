package chronicle

// DefaultTension is the starting tension for a new thread when the caller
// has no stronger opinion.
const DefaultTension = 3

// Thread is a named storyline spanning multiple entries, with a 0-10
// tension score.
type Thread struct {
	ID      string   `json:"id"`
	Summary string   `json:"summary"`
	Active  bool     `json:"active"`
	Entries []string `json:"entries"`
	Tension int      `json:"tension"`
}

// Thread returns the thread with the given id, or nil.
func (c *Chronicle) Thread(id string) *Thread {
	for _, t := range c.threads {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Threads returns every thread, resolved and unresolved.
func (c *Chronicle) Threads() []*Thread {
	return c.threads
}

// ActiveThreads returns the threads that have not been resolved.
func (c *Chronicle) ActiveThreads() []*Thread {
	var active []*Thread
	for _, t := range c.threads {
		if t.Active {
			active = append(active, t)
		}
	}
	return active
}

// AddThread creates a thread, or returns the existing one unchanged when the
// id is already taken. Tension is clamped to [0,10].
func (c *Chronicle) AddThread(id, summary string, tension int) *Thread {
	if existing := c.Thread(id); existing != nil {
		return existing
	}

	t := &Thread{
		ID:      id,
		Summary: summary,
		Active:  true,
		Entries: []string{},
		Tension: clampTension(tension),
	}
	c.threads = append(c.threads, t)
	return t
}

// UpdateThreadTension adjusts a thread's tension by delta, clamped to
// [0,10]. Missing or resolved threads are left alone.
func (c *Chronicle) UpdateThreadTension(id string, delta int) {
	t := c.Thread(id)
	if t == nil || !t.Active {
		return
	}
	t.Tension = clampTension(t.Tension + delta)
}

// UpdateThreadSummary overwrites a thread's summary, active or not.
func (c *Chronicle) UpdateThreadSummary(id, summary string) {
	if t := c.Thread(id); t != nil {
		t.Summary = summary
	}
}

// ResolveThread marks a thread inactive and drops its tension to zero.
func (c *Chronicle) ResolveThread(id string) {
	if t := c.Thread(id); t != nil {
		t.Active = false
		t.Tension = 0
	}
}

// RestoreThread reinstates a previously saved thread verbatim. Used when
// loading a world; gameplay paths go through AddThread.
func (c *Chronicle) RestoreThread(t *Thread) {
	if c.Thread(t.ID) != nil {
		return
	}
	c.threads = append(c.threads, t)
}

func clampTension(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
