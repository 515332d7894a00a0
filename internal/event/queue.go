package event

// Queue holds events waiting to run: an ordered list of immediate events
// and an unordered bag of deferred ones. The queue does not run anything
// itself; the driver drains it and applies effects.
type Queue struct {
	immediate []GameEvent
	deferred  []DeferredEvent
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event to the immediate list.
func (q *Queue) Push(e GameEvent) {
	q.immediate = append(q.immediate, e)
}

// Drain removes and returns all immediate events in insertion order.
func (q *Queue) Drain() []GameEvent {
	out := q.immediate
	q.immediate = nil
	return out
}

// Defer shelves an event until its condition holds.
func (q *Queue) Defer(e DeferredEvent) {
	q.deferred = append(q.deferred, e)
}

// Deferred returns the shelved events without removing them.
func (q *Queue) Deferred() []DeferredEvent {
	return q.deferred
}

// TakeReady removes and returns every deferred event for which ready
// reports true. The rest stay shelved.
func (q *Queue) TakeReady(ready func(DeferredEvent) bool) []DeferredEvent {
	var taken []DeferredEvent
	var kept []DeferredEvent
	for _, e := range q.deferred {
		if ready(e) {
			taken = append(taken, e)
		} else {
			kept = append(kept, e)
		}
	}
	q.deferred = kept
	return taken
}

// Len reports how many immediate events are pending.
func (q *Queue) Len() int {
	return len(q.immediate)
}
