// Package engine keeps the item list in sync with the feed store while the
// user reads.
//
// # Overview
//
// Model is a Bubble Tea sub-model owned by the UI. It holds the loaded items,
// decides when items count as read, batches those marks, applies user
// mutations optimistically and discards responses that arrive out of order.
// Every method runs on the program loop; network calls happen inside the
// returned tea.Cmd functions and come back as messages through Update.
//
// # Sessions
//
// A session starts with SwitchView. It flushes marks pending for the old
// selection, clears the viewed set and observation state, and starts a fresh
// load, the startup catch-up evaluation and the silent refresh loop. Timer
// messages carry the session they were scheduled in and are ignored once it
// is over.
//
// # Read detection
//
// The UI reports card geometry (SetCards), scrolling (Scroll) and pointer
// hover (HoverEnter, HoverLeave). A card is seen when it scrolls above the
// waterline or is hovered for readstate.HoverDwell. Seen unread items are
// queued and sent in one MarkItemsRead call after readstate.FlushDelay of
// quiet.
//
// # Silent refresh
//
// While a session is open the first page is fetched again every
// RefreshEvery and only the unread flags of loaded items are updated from
// it. The interval restarts on SwitchView and SetQuery. Items whose unread
// flag changed locally after a refresh was issued keep their local value
// when that refresh lands.
//
// # Failures
//
//	stale response          dropped, debug log
//	batched mark            warn log, not retried
//	user mutation           rolled back, Notice until acknowledged
//	thumbnail refresh       per-card failure flag, MaxThumbnailAttempts tries
//	integration execution   history record and a Toast
package engine
