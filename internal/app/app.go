package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/inkwell/internal/api"
	"github.com/five82/inkwell/internal/config"
	"github.com/five82/inkwell/internal/engine"
	"github.com/five82/inkwell/internal/feedprobe"
	"github.com/five82/inkwell/internal/history"
	"github.com/five82/inkwell/internal/prefs"
	"github.com/five82/inkwell/internal/state"
	"github.com/five82/inkwell/internal/ui"
)

// historyRetention bounds how long integration executions are kept.
const historyRetention = 90 * 24 * time.Hour

// Options configure the inkwell application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/inkwell/prefs.toml
	APIURL     string // overrides api_url from the config file
	PollEvery  int    // seconds; zero uses the configured counts interval
}

// Run boots the inkwell TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog := openLogger(cfg.LogFile)
	defer closeLog()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs failed, using defaults", "error", err)
		userPrefs = prefs.Default()
	}

	client, err := api.NewClient(cfg.APIURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	hist, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = hist.Close() }()

	if n, err := hist.Prune(ctx, time.Now().Add(-historyRetention)); err != nil {
		logger.Warn("prune history failed", "error", err)
	} else if n > 0 {
		logger.Info("pruned history", "entries", n)
	}

	store := &state.Store{}

	// Populate feed counts before the first frame; failures leave the store
	// offline and the poller keeps trying.
	_ = refresh(ctx, store, client, logger)
	poller := StartPoller(ctx, store, client, cfg.CountsInterval, logger)

	eng := engine.New(engine.Options{
		Context:      ctx,
		API:          client,
		Feeds:        store,
		Counts:       poller,
		History:      hist,
		Prober:       feedprobe.New(cfg.RequestTimeout),
		Logger:       logger,
		RefreshEvery: cfg.RefreshInterval,
		AutoLoadMore: userPrefs.AutoLoadMore,
		View:         engine.AllItems(),
		Query: engine.Query{
			Sort:       userPrefs.SortOrder,
			UnreadOnly: userPrefs.UnreadOnlyFor(prefs.ViewAll),
			PerPage:    userPrefs.ItemsPerPage,
		},
	})

	logger.Info("inkwell starting", "api", cfg.APIURL)
	return ui.Run(ui.Options{
		Context:   ctx,
		Engine:    eng,
		Store:     store,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
	})
}

// LoadConfig reads the config file and applies command-line overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.PollEvery > 0 {
		cfg.CountsInterval = time.Duration(opts.PollEvery) * time.Second
	}
	return cfg, nil
}

// openLogger writes structured logs to path. The terminal belongs to the
// UI, so a log file that cannot be opened silences logging instead.
func openLogger(path string) (*slog.Logger, func()) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if path == "" {
		return discard, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return discard, func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return discard, func() {}
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return logger, func() { _ = file.Close() }
}
