package readstate

import (
	"github.com/five82/inkwell/internal/api"
)

// Patch is a partial update of an item's mutable fields. Nil fields are left
// alone.
type Patch struct {
	Unread    *bool
	Favorite  *bool
	Thumbnail *string
}

// SetUnread returns a patch that sets the unread flag.
func SetUnread(v bool) Patch { return Patch{Unread: &v} }

// SetFavorite returns a patch that sets the favorite flag.
func SetFavorite(v bool) Patch { return Patch{Favorite: &v} }

// SetThumbnail returns a patch that swaps the thumbnail reference.
func SetThumbnail(url string) Patch { return Patch{Thumbnail: &url} }

// IsZero reports whether the patch touches nothing.
func (p Patch) IsZero() bool {
	return p.Unread == nil && p.Favorite == nil && p.Thumbnail == nil
}

// Apply returns a copy of item with the patch applied.
func (p Patch) Apply(item api.Item) api.Item {
	if p.Unread != nil {
		item.IsUnread = *p.Unread
	}
	if p.Favorite != nil {
		item.IsFavorite = *p.Favorite
	}
	if p.Thumbnail != nil {
		item.ThumbnailURL = *p.Thumbnail
	}
	return item
}

// Satisfied reports whether item already carries every value in the patch.
func (p Patch) Satisfied(item api.Item) bool {
	return p.Apply(item) == item
}

// Capture returns a patch holding item's current values for the fields p
// touches. Applying it undoes p.
func (p Patch) Capture(item api.Item) Patch {
	var out Patch
	if p.Unread != nil {
		out.Unread = ptr(item.IsUnread)
	}
	if p.Favorite != nil {
		out.Favorite = ptr(item.IsFavorite)
	}
	if p.Thumbnail != nil {
		out.Thumbnail = ptr(item.ThumbnailURL)
	}
	return out
}

// Equal reports whether both patches touch the same fields with the same values.
func (p Patch) Equal(o Patch) bool {
	return eq(p.Unread, o.Unread) && eq(p.Favorite, o.Favorite) && eq(p.Thumbnail, o.Thumbnail)
}

func ptr[T any](v T) *T { return &v }

func eq[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Matchers for PatchMatching and Begin.

// ByID matches a single item.
func ByID(id int64) func(api.Item) bool {
	return func(item api.Item) bool { return item.ID == id }
}

// ByIDs matches any item in ids.
func ByIDs(ids []int64) func(api.Item) bool {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(item api.Item) bool {
		_, ok := set[item.ID]
		return ok
	}
}

// ByFeed matches every item of a feed.
func ByFeed(feedID int64) func(api.Item) bool {
	return func(item api.Item) bool { return item.FeedID == feedID }
}

// Unread matches unread items.
func Unread(item api.Item) bool { return item.IsUnread }

// List is the authoritative in-memory item list. It is the only writer of
// item state; everything else asks it for changes.
//
// Mutations are copy-on-write: a change builds a new backing slice and never
// writes into one previously returned by Items, so stale references held
// elsewhere stay observably old.
type List struct {
	items []api.Item
	index map[int64]int
}

// Items returns the current items in display order. The slice must not be
// modified.
func (l *List) Items() []api.Item {
	return l.items
}

// Len returns the number of loaded items.
func (l *List) Len() int {
	return len(l.items)
}

// Get returns the item with the given id.
func (l *List) Get(id int64) (api.Item, bool) {
	i, ok := l.index[id]
	if !ok {
		return api.Item{}, false
	}
	return l.items[i], true
}

// IDs returns the ids of items matching match, in display order.
func (l *List) IDs(match func(api.Item) bool) []int64 {
	var ids []int64
	for _, item := range l.items {
		if match(item) {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// Replace swaps in a freshly loaded list. Duplicate ids within items keep
// their first occurrence.
func (l *List) Replace(items []api.Item) {
	next := make([]api.Item, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if _, dup := index[item.ID]; dup {
			continue
		}
		index[item.ID] = len(next)
		next = append(next, item)
	}
	l.items = next
	l.index = index
}

// Append adds a subsequent page. Items already loaded keep their existing
// position and value. It returns the number of items added.
func (l *List) Append(items []api.Item) int {
	var fresh []api.Item
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := l.index[item.ID]; ok {
			continue
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		fresh = append(fresh, item)
	}
	if len(fresh) == 0 {
		return 0
	}

	next := make([]api.Item, len(l.items), len(l.items)+len(fresh))
	copy(next, l.items)
	index := make(map[int64]int, len(next)+len(fresh))
	for id, i := range l.index {
		index[id] = i
	}
	for _, item := range fresh {
		index[item.ID] = len(next)
		next = append(next, item)
	}
	l.items = next
	l.index = index
	return len(fresh)
}

// PatchMatching applies patch to every item match accepts and returns the
// ids whose value changed.
func (l *List) PatchMatching(match func(api.Item) bool, patch Patch) []int64 {
	if patch.IsZero() {
		return nil
	}
	var next []api.Item
	var changed []int64
	for i, item := range l.items {
		if !match(item) {
			continue
		}
		updated := patch.Apply(item)
		if updated == item {
			continue
		}
		if next == nil {
			next = make([]api.Item, len(l.items))
			copy(next, l.items)
		}
		next[i] = updated
		changed = append(changed, item.ID)
	}
	if next != nil {
		l.items = next
	}
	return changed
}

// Patch applies patch to a single item. It reports whether the item changed.
func (l *List) Patch(id int64, patch Patch) bool {
	return len(l.PatchMatching(ByID(id), patch)) > 0
}

// Refresh folds a silent background re-poll into the list. Only the unread
// flag of items present in both lists is updated; items missing from
// incoming are left alone and items new in incoming are ignored, so length
// and order never change. It returns the ids whose unread flag changed.
func (l *List) Refresh(incoming []api.Item) []int64 {
	var next []api.Item
	var changed []int64
	for _, fresh := range incoming {
		i, ok := l.index[fresh.ID]
		if !ok {
			continue
		}
		current := l.items[i]
		if next != nil {
			current = next[i]
		}
		if current.IsUnread == fresh.IsUnread {
			continue
		}
		if next == nil {
			next = make([]api.Item, len(l.items))
			copy(next, l.items)
		}
		current.IsUnread = fresh.IsUnread
		next[i] = current
		changed = append(changed, fresh.ID)
	}
	if next != nil {
		l.items = next
	}
	return changed
}
