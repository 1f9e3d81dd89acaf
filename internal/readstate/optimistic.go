package readstate

import "github.com/five82/inkwell/internal/api"

// Outcome describes how an optimistic change settled.
type Outcome int

const (
	// Confirmed means the store agreed with the optimistic value.
	Confirmed Outcome = iota
	// Corrected means the store reported a different value, which was applied.
	Corrected
	// RolledBack means the remote call failed and the previous values were restored.
	RolledBack
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Corrected:
		return "corrected"
	case RolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Optimistic is a local change applied ahead of its remote call.
type Optimistic struct {
	Patch  Patch
	IDs    []int64
	before map[int64]Patch
}

// Begin applies patch to every item match accepts and remembers the values
// it replaced.
func Begin(l *List, match func(api.Item) bool, patch Patch) Optimistic {
	op := Optimistic{Patch: patch, before: make(map[int64]Patch)}
	for _, item := range l.Items() {
		if !match(item) {
			continue
		}
		op.IDs = append(op.IDs, item.ID)
		op.before[item.ID] = patch.Capture(item)
	}
	l.PatchMatching(ByIDs(op.IDs), patch)
	return op
}

// Before returns the value id held before the change.
func (o Optimistic) Before(id int64) (Patch, bool) {
	p, ok := o.before[id]
	return p, ok
}

// Settle reconciles the change with the remote result. On err the previous
// values are restored. Otherwise a non-zero result that differs from the
// optimistic patch is treated as authoritative and applied; a zero result
// confirms the patch as sent.
//
// Items that no longer carry the optimistic value were changed again after
// Begin and are left alone.
func (o Optimistic) Settle(l *List, result Patch, err error) Outcome {
	if err != nil {
		for _, id := range o.IDs {
			if o.holds(l, id) {
				l.Patch(id, o.before[id])
			}
		}
		return RolledBack
	}
	if result.IsZero() || result.Equal(o.Patch) {
		return Confirmed
	}
	for _, id := range o.IDs {
		if o.holds(l, id) {
			l.Patch(id, result)
		}
	}
	return Corrected
}

func (o Optimistic) holds(l *List, id int64) bool {
	item, ok := l.Get(id)
	return ok && o.Patch.Satisfied(item)
}
