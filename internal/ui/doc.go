// Package ui provides the terminal interface for inkwell.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model owns layout, focus and overlays and
// delegates everything about the item list to an *engine.Model: fetching,
// read detection, optimistic mutations, notices and toasts. Messages the UI
// does not recognize are forwarded to the engine, and after every message
// the card column is re-rendered and its geometry reported back with
// engine.SetCards so read detection works on what is actually on screen.
//
// # Package Structure
//
//   - app.go: Model, Options, key dispatch and Run
//   - cards.go: card rendering, row geometry, scrolling and mouse hover
//   - sidebar.go: All items, Favorites and the subscribed feeds
//   - header.go: status bar and footer hints
//   - modal.go: notice, confirmation and integration picker dialogs
//   - feedform.go: add and edit feed form
//   - toasts.go: integration result toasts
//   - browser.go: opening and copying item links
//   - theme.go, style_helpers.go: colors and background-safe rendering
//
// # Read Detection Inputs
//
// The card column is a document of rows. Scrolling changes the row offset
// and calls engine.Scroll with the offset and the visible height. Mouse
// motion over a card calls engine.HoverEnter, and moving off it calls
// engine.HoverLeave. Run enables all-motion mouse reporting for this.
//
// # Preferences
//
// Theme, column widths, sort order, the per-view unread filter, sidebar
// visibility and auto-load are written back to the prefs file whenever they
// change.
package ui
