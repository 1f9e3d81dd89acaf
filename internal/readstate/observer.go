package readstate

import (
	"cmp"
	"slices"
	"time"
)

// Observation timing.
const (
	// WaterlineFraction places the waterline this far down the viewport.
	WaterlineFraction = 0.2
	// ScrollThrottle coalesces scroll ticks into one evaluation per window.
	ScrollThrottle = 200 * time.Millisecond
	// StartupGuard suppresses evaluation right after a session starts so a
	// page restored mid-scroll is not marked read wholesale on load.
	StartupGuard = 500 * time.Millisecond
	// CatchUpDelay schedules one evaluation after the guard lifts.
	CatchUpDelay = 600 * time.Millisecond
	// HoverDwell is how long the pointer must rest on a card.
	HoverDwell = 1500 * time.Millisecond
)

// Card is the geometry of one rendered item card in document rows.
type Card struct {
	ID     int64
	Top    int
	Bottom int
	Unread bool
}

// Observer turns scroll positions and pointer dwell into "item viewed"
// events. It owns no timers: methods that need a deferred callback report
// it, and the caller delivers the callback later with the returned token.
//
// Each card moves from unobserved to observed once per session; only Start
// moves it back.
type Observer struct {
	started  time.Time
	offset   int
	height   int
	cards    map[int64]Card
	observed map[int64]struct{}
	hovered  map[int64]struct{}
	dwell    map[int64]uint64
	tokens   uint64
	queued   bool
}

// NewObserver returns an observer with no session started.
func NewObserver() *Observer {
	o := &Observer{}
	o.reset()
	return o
}

func (o *Observer) reset() {
	o.cards = make(map[int64]Card)
	o.observed = make(map[int64]struct{})
	o.hovered = make(map[int64]struct{})
	o.dwell = make(map[int64]uint64)
	o.queued = false
}

// Start begins a new viewing session at now, forgetting every observation.
// The caller should call Evaluate once CatchUpDelay has passed.
func (o *Observer) Start(now time.Time) {
	o.reset()
	o.started = now
}

// SetCards replaces the set of mounted cards. Dwell timers for cards that
// are no longer mounted are cancelled.
func (o *Observer) SetCards(cards []Card) {
	next := make(map[int64]Card, len(cards))
	for _, c := range cards {
		next[c.ID] = c
	}
	for id := range o.dwell {
		if _, ok := next[id]; !ok {
			delete(o.dwell, id)
		}
	}
	o.cards = next
}

// Scroll records the latest scroll offset and viewport height. It returns
// true when the caller should schedule an Evaluate after ScrollThrottle;
// further ticks inside that window only update the position.
func (o *Observer) Scroll(offset, height int) bool {
	o.offset = offset
	o.height = height
	if o.queued {
		return false
	}
	o.queued = true
	return true
}

// Waterline returns the current waterline row.
func (o *Observer) Waterline() float64 {
	return float64(o.offset) + WaterlineFraction*float64(o.height)
}

// ThrottleElapsed delivers the evaluation scheduled by Scroll. It reopens the
// throttle window and evaluates.
func (o *Observer) ThrottleElapsed(now time.Time) []int64 {
	o.queued = false
	return o.Evaluate(now)
}

// Evaluate compares every mounted card against the waterline and returns the
// unread cards that were scrolled past for the first time. It returns nil
// while the startup guard is active. It does not touch the scroll throttle.
func (o *Observer) Evaluate(now time.Time) []int64 {
	if now.Sub(o.started) < StartupGuard {
		return nil
	}
	line := o.Waterline()
	var ids []int64
	for id, c := range o.cards {
		if !c.Unread || float64(c.Bottom) > line {
			continue
		}
		if _, seen := o.observed[id]; seen {
			continue
		}
		o.observed[id] = struct{}{}
		delete(o.dwell, id)
		ids = append(ids, id)
	}
	sortIDs(ids, o.cards)
	return ids
}

// Enter starts the dwell timer for a card the pointer moved onto. ok is false
// when no timer is needed: the card is read, unknown, already confirmed, or
// already timing.
func (o *Observer) Enter(id int64) (token uint64, ok bool) {
	c, mounted := o.cards[id]
	if !mounted || !c.Unread {
		return 0, false
	}
	if _, done := o.hovered[id]; done {
		return 0, false
	}
	if _, seen := o.observed[id]; seen {
		return 0, false
	}
	if _, timing := o.dwell[id]; timing {
		return 0, false
	}
	o.tokens++
	o.dwell[id] = o.tokens
	return o.tokens, true
}

// Leave cancels a pending dwell timer.
func (o *Observer) Leave(id int64) {
	delete(o.dwell, id)
}

// DwellElapsed delivers a dwell timer. It reports true when the card is now
// hover-confirmed and should be emitted.
func (o *Observer) DwellElapsed(id int64, token uint64) bool {
	current, ok := o.dwell[id]
	if !ok || current != token {
		return false
	}
	delete(o.dwell, id)
	o.hovered[id] = struct{}{}
	if _, seen := o.observed[id]; seen {
		return false
	}
	o.observed[id] = struct{}{}
	return true
}

// Observed reports whether id has been emitted this session.
func (o *Observer) Observed(id int64) bool {
	_, ok := o.observed[id]
	return ok
}

// sortIDs orders ids top to bottom so emissions follow reading order.
func sortIDs(ids []int64, cards map[int64]Card) {
	slices.SortFunc(ids, func(a, b int64) int {
		if c := cmp.Compare(cards[a].Top, cards[b].Top); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}
