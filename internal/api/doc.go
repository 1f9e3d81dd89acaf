// Package api provides an HTTP client for the feed store API.
//
// # Overview
//
// The feed store owns feeds, items, favorites and integrations. inkwell never
// persists any of that locally; every read and every mutation goes through
// this client. The package is split into two files:
//
//   - client.go: request construction, JSON encoding, error mapping
//   - types.go: data structures mirroring the store's JSON schema
//
// # Endpoints
//
//   - GET  /api/items, /api/favorites      paged listings ({items, has_more})
//   - POST /api/items/{id}/read            mark one item read
//   - POST /api/items/read                 mark a set of items read ({ids})
//   - POST /api/feeds/{id}/read            mark a whole feed read
//   - POST /api/items/{id}/favorite        toggle, returns the resulting state
//   - POST /api/items/{id}/thumbnail       regenerate the item thumbnail
//   - GET/POST/PUT/DELETE /api/feeds       feeds with unread counts
//   - GET/POST/PUT/DELETE /api/integrations
//   - POST /api/integrations/{id}/execute  run an integration for {url, title}
//
// # Error Handling
//
// Responses with status >= 400 are returned as *StatusError carrying the
// status code and the detail text from the body, so callers can show the
// user something better than "request failed":
//
//	var statusErr *api.StatusError
//	if errors.As(err, &statusErr) {
//		fmt.Println(statusErr.Status, statusErr.Detail)
//	}
//
// Network failures and decode failures are wrapped with fmt.Errorf and %w.
//
// # Integration IDs
//
// A feed's integration_ids may arrive as null or []. Both mean "none
// enabled"; ListFeeds normalises them to nil and FeedInput always sends null
// for an empty list.
package api
