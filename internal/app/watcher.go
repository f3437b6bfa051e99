package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/handle-probe/internal/config"
	"github.com/Adda-Baaj/handle-probe/internal/logger"
	"github.com/Adda-Baaj/handle-probe/internal/probe"
	"github.com/Adda-Baaj/handle-probe/internal/storage"
	"github.com/Adda-Baaj/handle-probe/pkg/publishers"
	"github.com/Adda-Baaj/handle-probe/pkg/twitter"
	"github.com/Adda-Baaj/handle-probe/pkg/watchlists"
)

// Watcher is the account watch runtime. It periodically checks every
// watchlist, publishes status changes and keeps the status store current.
type Watcher struct {
	watchlistReg  *watchlists.Registry
	fanout        *publishers.Fanout
	probe         *probe.Service
	checkInterval time.Duration
	log           logger.Logger
	store         storage.Store
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	watchlistReg, err := watchlists.LoadRegistry(cfg.WatchlistsFile)
	if err != nil {
		return nil, fmt.Errorf("load watchlists registry: %w", err)
	}
	lists := watchlistReg.All()
	ids := make([]string, 0, len(lists))
	names := 0
	for _, w := range lists {
		ids = append(ids, w.ID)
		names += len(w.ScreenNames)
	}
	log.InfoObj("watchlists registry loaded", "watchlists_meta", map[string]any{
		"count":        len(ids),
		"ids":          ids,
		"screen_names": names,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	if len(publisherSummaries) == 0 {
		log.WarnObj("no publishers enabled; status changes will only be logged", "publishers_file", cfg.PublishersFile)
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		StatusTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"status_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client, err := twitter.New(cfg.Credentials(), twitter.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
	}, log)
	if err != nil {
		_ = fanout.Close()
		_ = store.Close()
		return nil, fmt.Errorf("init twitter client: %w", err)
	}

	return &Watcher{
		watchlistReg:  watchlistReg,
		fanout:        fanout,
		probe:         probe.NewService(client, store, fanout, log),
		checkInterval: cfg.CheckInterval,
		log:           log,
		store:         store,
	}, nil
}

// Run checks all watchlists immediately and then once per interval until
// the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.probe == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.shutdown()

	lists := w.watchlistReg.All()
	if len(lists) == 0 {
		w.log.WarnObj("no watchlists configured; watcher idle", "watchlists", 0)
		<-ctx.Done()
		return nil
	}
	if w.checkInterval <= 0 {
		return fmt.Errorf("check interval must be positive")
	}

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"watchlists_count": len(lists),
		"publishers_count": w.fanout.Size(),
		"check_interval":   w.checkInterval.String(),
	})

	if err := w.runOnce(ctx, lists); err != nil {
		w.log.ErrorObj("initial check failed", "error", err.Error())
	}

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx, lists); err != nil {
				w.log.ErrorObj("scheduled check failed", "error", err.Error())
			}
		}
	}
}

// runOnce performs a single check across all watchlists.
func (w *Watcher) runOnce(ctx context.Context, lists []watchlists.Watchlist) error {
	start := time.Now()
	w.log.InfoObj("check started", "check_meta", map[string]any{
		"watchlists_count": len(lists),
		"started_at":       start.UTC(),
	})
	if err := w.probe.Run(ctx, lists); err != nil {
		return err
	}
	w.log.InfoObj("check completed", "check_meta", map[string]any{
		"watchlists_count": len(lists),
		"elapsed_ms":       time.Since(start).Milliseconds(),
	})
	return nil
}

// shutdown releases the store and publisher clients, logging failures.
func (w *Watcher) shutdown() {
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err.Error())
		}
	}
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publishers close failed", "error", err.Error())
	}
}
