package readstate

// Guard hands out fetch generations. Every fetch that writes into the list
// takes a generation before it suspends and checks it when it resumes; a
// result whose generation is no longer current was superseded and is dropped.
//
// The zero value is ready to use. Guard is not safe for concurrent use; it
// belongs to the goroutine running the event loop.
type Guard struct {
	gen uint64
}

// Begin starts a new fetch intent and returns its generation.
func (g *Guard) Begin() uint64 {
	g.gen++
	return g.gen
}

// IsCurrent reports whether no other fetch has begun since gen was issued.
func (g *Guard) IsCurrent(gen uint64) bool {
	return gen != 0 && gen == g.gen
}

// Current returns the latest generation handed out, or zero.
func (g *Guard) Current() uint64 {
	return g.gen
}
