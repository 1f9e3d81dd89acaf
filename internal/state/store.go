package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/inkwell/internal/api"
)

// Snapshot represents the latest feed data available to the UI.
type Snapshot struct {
	Feeds               []api.Feed
	TotalUnread         int
	HasFeeds            bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Feed returns the feed with the given id.
func (s Snapshot) Feed(id int64) (api.Feed, bool) {
	for _, f := range s.Feeds {
		if f.ID == id {
			return f, true
		}
	}
	return api.Feed{}, false
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored feed list. When err is non-nil the previous data
// is kept but the error is recorded for visibility.
func (s *Store) Update(list *api.FeedList, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if list != nil {
		s.snapshot.Feeds = cloneFeeds(list.Feeds)
		s.snapshot.TotalUnread = list.TotalUnread
		s.snapshot.HasFeeds = true
	} else {
		s.snapshot.Feeds = nil
		s.snapshot.TotalUnread = 0
		s.snapshot.HasFeeds = false
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Feed returns the stored feed with the given id.
func (s *Store) Feed(id int64) (api.Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.snapshot.Feed(id)
	if ok && f.IntegrationIDs != nil {
		f.IntegrationIDs = append([]int64(nil), f.IntegrationIDs...)
	}
	return f, ok
}

// PutFeed replaces the feed with the same id, or appends it when absent. It
// returns the previous value.
func (s *Store) PutFeed(feed api.Feed) (prev api.Feed, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feeds := cloneFeeds(s.snapshot.Feeds)
	for i, f := range feeds {
		if f.ID == feed.ID {
			feeds[i] = feed
			s.snapshot.Feeds = feeds
			return f, true
		}
	}
	s.snapshot.Feeds = append(feeds, feed)
	return api.Feed{}, false
}

// RemoveFeed deletes the feed with the given id. It returns the removed feed
// and its position so the removal can be undone with RestoreFeed.
func (s *Store) RemoveFeed(id int64) (removed api.Feed, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.snapshot.Feeds {
		if f.ID != id {
			continue
		}
		feeds := make([]api.Feed, 0, len(s.snapshot.Feeds)-1)
		feeds = append(feeds, s.snapshot.Feeds[:i]...)
		feeds = append(feeds, s.snapshot.Feeds[i+1:]...)
		s.snapshot.Feeds = feeds
		s.snapshot.TotalUnread -= f.UnreadCount
		if s.snapshot.TotalUnread < 0 {
			s.snapshot.TotalUnread = 0
		}
		return f, i, true
	}
	return api.Feed{}, -1, false
}

// RestoreFeed puts a removed feed back at index. A feed with the same id that
// reappeared in the meantime is left as is.
func (s *Store) RestoreFeed(feed api.Feed, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.snapshot.Feeds {
		if f.ID == feed.ID {
			return
		}
	}
	if index < 0 || index > len(s.snapshot.Feeds) {
		index = len(s.snapshot.Feeds)
	}
	feeds := make([]api.Feed, 0, len(s.snapshot.Feeds)+1)
	feeds = append(feeds, s.snapshot.Feeds[:index]...)
	feeds = append(feeds, feed)
	feeds = append(feeds, s.snapshot.Feeds[index:]...)
	s.snapshot.Feeds = feeds
	s.snapshot.TotalUnread += feed.UnreadCount
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Feeds = cloneFeeds(s.snapshot.Feeds)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneFeeds(feeds []api.Feed) []api.Feed {
	if len(feeds) == 0 {
		return nil
	}
	dup := make([]api.Feed, len(feeds))
	for i, f := range feeds {
		dup[i] = f
		if f.IntegrationIDs != nil {
			dup[i].IntegrationIDs = append([]int64(nil), f.IntegrationIDs...)
		}
	}
	return dup
}
