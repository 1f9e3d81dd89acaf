// Package state provides thread-safe state management for feeds and unread counts.
//
// # Overview
//
// This package implements a simple but thread-safe store for sharing the feed
// list and its aggregate unread counts between the background counts poller and
// the UI. It is the only structure in inkwell touched by more than one
// goroutine; the item list itself lives on the Bubble Tea event loop.
//
// # Architecture
//
// The package follows a producer-consumer pattern:
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌────────────────┐
//	│ ListFeeds()    │            │                │
//	│                │            │                │
//	│      ↓         │            │                │
//	│ store.Update() │───────────→│ store.Snapshot()│
//	│      ↓         │  (mutex)   │      ↓         │
//	│  repeat...     │            │  render UI     │
//	└────────────────┘            └────────────────┘
//
// The Store mediates between these two goroutines. Update and Snapshot copy
// the feed slice so neither side can observe a torn write.
//
// Feed edits made in the UI are applied locally first with PutFeed or
// RemoveFeed and undone with PutFeed or RestoreFeed when the remote call
// fails. The next poll overwrites both with the remote store's view.
//
// # Update Semantics
//
//	// Success case: replace the feed list
//	store.Update(list, nil)
//
//	// Error case: keep old data, record error
//	store.Update(nil, err)
//
// After two consecutive failures Snapshot.IsOffline reports true and the
// header shows an offline badge.
package state
