package engine

import (
	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/readstate"
)

type fetchKind int

const (
	fetchFresh fetchKind = iota
	fetchMore
	fetchRefresh
)

func (k fetchKind) String() string {
	switch k {
	case fetchMore:
		return "more"
	case fetchRefresh:
		return "refresh"
	default:
		return "fresh"
	}
}

type itemsMsg struct {
	gen  uint64
	kind fetchKind
	page int
	res  api.ItemPage
	err  error
}

type refreshTickMsg struct{ loop uint64 }

type scrollEvalMsg struct{ session uint64 }

type catchUpMsg struct{ session uint64 }

type dwellMsg struct {
	session uint64
	id      int64
	token   uint64
}

type flushTimerMsg struct{ token uint64 }

type marksDoneMsg struct {
	ids []int64
	err error
}

type mutationKind int

const (
	mutFavorite mutationKind = iota
	mutMarkRead
	mutMarkAll
	mutThumbnail
)

func (k mutationKind) String() string {
	switch k {
	case mutFavorite:
		return "favorite"
	case mutMarkRead:
		return "mark read"
	case mutMarkAll:
		return "mark all read"
	case mutThumbnail:
		return "thumbnail"
	default:
		return "unknown"
	}
}

type mutationMsg struct {
	kind   mutationKind
	itemID int64
	op     readstate.Optimistic
	result readstate.Patch
	err    error
}

type feedAction int

const (
	feedCreate feedAction = iota
	feedUpdate
	feedDelete
)

type feedSavedMsg struct {
	action feedAction
	feed   api.Feed
	prev   api.Feed
	index  int
	err    error
}

type integrationsMsg struct {
	list []api.Integration
	err  error
}

type integrationSavedMsg struct {
	verb string
	err  error
}

type executedMsg struct {
	integration api.Integration
	item        api.Item
	result      api.ExecutionResult
	err         error
	recordErr   error
}

type toastExpireMsg struct{ id uint64 }
