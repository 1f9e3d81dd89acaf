package readstate

import "time"

// FlushDelay is the quiet period after the last observation before pending
// marks are flushed.
const FlushDelay = 2 * time.Second

// Batcher accumulates viewed item ids and hands them out as one batch.
//
// It keeps a single flush-timer token: every Observe replaces it, so at most
// one timer is live and older deliveries are ignored by TimerFired. An id is
// never both pending and in flight.
type Batcher struct {
	pending  []int64
	queued   map[int64]struct{}
	inflight map[int64]int
	timer    uint64
	tokens   uint64
}

// Observe adds id to the pending set and restarts the flush timer. It
// returns the new timer token. ok is false, and the timer is left alone,
// when id is already part of a batch in flight.
func (b *Batcher) Observe(id int64) (token uint64, ok bool) {
	if _, busy := b.inflight[id]; busy {
		return 0, false
	}
	if b.queued == nil {
		b.queued = make(map[int64]struct{})
	}
	if _, dup := b.queued[id]; !dup {
		b.queued[id] = struct{}{}
		b.pending = append(b.pending, id)
	}
	b.tokens++
	b.timer = b.tokens
	return b.timer, true
}

// TimerFired reports whether token belongs to the live flush timer.
func (b *Batcher) TimerFired(token uint64) bool {
	return token != 0 && token == b.timer
}

// Flush snapshots and clears the pending set, cancels the flush timer and
// marks the snapshot in flight. It returns nil when nothing is pending.
func (b *Batcher) Flush() []int64 {
	b.timer = 0
	if len(b.pending) == 0 {
		return nil
	}
	ids := b.pending
	b.pending = nil
	b.queued = nil
	if b.inflight == nil {
		b.inflight = make(map[int64]int)
	}
	for _, id := range ids {
		b.inflight[id]++
	}
	return ids
}

// Settle releases a flushed batch once its call has completed, whatever the
// outcome.
func (b *Batcher) Settle(ids []int64) {
	for _, id := range ids {
		if n := b.inflight[id]; n > 1 {
			b.inflight[id] = n - 1
		} else {
			delete(b.inflight, id)
		}
	}
}

// Pending returns a copy of the ids waiting for the next flush.
func (b *Batcher) Pending() []int64 {
	out := make([]int64, len(b.pending))
	copy(out, b.pending)
	return out
}

// InFlight reports whether id is part of an unsettled batch.
func (b *Batcher) InFlight(id int64) bool {
	_, ok := b.inflight[id]
	return ok
}

// Armed reports whether a flush timer is live.
func (b *Batcher) Armed() bool {
	return b.timer != 0
}
