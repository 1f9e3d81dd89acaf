// Package app is the composition root for inkwell.
//
// Run loads the config and preferences, builds the reader API client, opens
// the integration history database and starts a background poller that keeps
// the feed list and unread counts in a shared state.Store. It then builds the
// read-state engine on top of those pieces and hands it to the UI, blocking
// until the user quits or the context is cancelled.
//
// # Polling
//
// The poller fetches /api/feeds every counts interval. Consecutive failures
// double the wait up to 30 seconds and mark the store offline; the UI shows
// that in its header. The engine calls Kick after read marks and feed edits
// so counts catch up without waiting for the next tick.
//
// # Logging
//
// The terminal belongs to the UI, so logs go to the configured log file as
// slog text records. A log file that cannot be opened disables logging.
package app
