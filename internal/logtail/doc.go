// Package logtail reads the tail of inkwell's log file.
//
// The UI owns the terminal while it runs, so its slog text records go to a
// file. Tail returns the most recent of those records, optionally filtered by
// level or substring, for the "inkwell logs" command. Lines that are not slog
// records are kept regardless of the level filter.
package logtail
