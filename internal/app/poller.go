package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 30 * time.Second
)

// FeedLister fetches the feed list with unread counts.
type FeedLister interface {
	ListFeeds(ctx context.Context) (api.FeedList, error)
}

// Poller refreshes feed counts in the background.
type Poller struct {
	store    *state.Store
	client   FeedLister
	interval time.Duration
	logger   *slog.Logger
	kick     chan struct{}
}

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, backing off while the remote store is unreachable. It returns
// immediately.
func StartPoller(ctx context.Context, store *state.Store, client FeedLister, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		store:    store,
		client:   client,
		interval: interval,
		logger:   logger,
		kick:     make(chan struct{}, 1),
	}
	go p.loop(ctx)
	return p
}

// Kick requests an immediate refresh. Requests made while one is already
// queued are merged.
func (p *Poller) Kick() {
	if p == nil {
		return
	}
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *Poller) loop(ctx context.Context) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-p.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		refresh(ctx, p.store, p.client, p.logger)
		timer.Reset(calculateBackoff(p.store.Snapshot().ConsecutiveFailures, p.interval))
	}
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff. Intervals already longer than the cap are not shortened.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func refresh(ctx context.Context, store *state.Store, client FeedLister, logger *slog.Logger) error {
	list, err := client.ListFeeds(ctx)
	if err != nil {
		store.Update(nil, err)
		if ctx.Err() == nil {
			logger.Warn("feed poll failed", "error", err)
		}
		return err
	}
	store.Update(&list, nil)
	return nil
}
