// Package readstate holds the pieces that decide and reconcile read state on
// the client, independent of any transport or event loop.
//
//   - Guard: fetch generations, so superseded responses are dropped.
//   - Observer: scroll waterline, scroll throttle, startup guard and hover
//     dwell, turning geometry into "viewed" events.
//   - Batcher: the pending set of viewed ids and its single flush timer.
//   - Begin / Optimistic: apply a change locally, then confirm, correct or
//     roll it back once the store answers.
//   - List: the authoritative item list. Every write goes through it and
//     builds a new backing slice, so earlier Items results never change.
//
// None of these types own timers or goroutines. Methods that need a deferred
// callback return a token; the caller delivers it later and stale tokens are
// ignored.
package readstate
