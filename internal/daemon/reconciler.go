package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/tabwm/internal/wm"
)

// WindowLister is a function that returns the ids of the windows that
// currently exist on the display.
type WindowLister func() ([]uint32, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for clients whose windows disappeared
// without a destroy notification and removes them.
type Reconciler struct {
	interval    time.Duration
	queue       *Queue
	sync        *StateSynchronizer
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
// The listWindows function should return every live window id.
func NewReconciler(cfg ReconcilerConfig, queue *Queue, sync *StateSynchronizer, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &Reconciler{
		interval:    interval,
		queue:       queue,
		sync:        sync,
		listWindows: listWindows,
		logger:      cfg.Logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) int {
	// Only windows managed before the listing are candidates, so a window
	// adopted while the listing runs is never mistaken for an orphan.
	var managed []wm.Window
	if err := r.queue.Do(ctx, func() error {
		managed = r.sync.wm.Windows()
		return nil
	}); err != nil {
		r.logger.Warn("reconciler: pass aborted", "error", err)
		return 0
	}
	if len(managed) == 0 {
		return 0
	}

	// Listing is a round trip to the display; do it off the queue.
	actualWindowIDs, err := r.listWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return 0
	}

	actualIDs := make(map[uint32]bool, len(actualWindowIDs))
	for _, wid := range actualWindowIDs {
		actualIDs[wid] = true
	}

	var orphaned []wm.Window
	for _, w := range managed {
		if !actualIDs[uint32(w)] {
			orphaned = append(orphaned, w)
		}
	}
	if len(orphaned) == 0 {
		return 0
	}

	removed := 0
	err = r.queue.Do(ctx, func() error {
		for _, w := range orphaned {
			if _, ok := r.sync.wm.ClientByWindow(w); !ok {
				continue
			}
			r.logger.Info("reconciler: orphaned client detected", "window_id", uint32(w))
			r.sync.HandleWindowClosed(w)
			removed++
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("reconciler: pass aborted", "error", err)
	}
	return removed
}

// ReconcileNow triggers an immediate reconciliation pass and returns the
// number of clients removed.
func (r *Reconciler) ReconcileNow(ctx context.Context) int {
	return r.reconcile(ctx)
}

// WindowListerFrom adapts a typed lister.
func WindowListerFrom(list func() ([]wm.Window, error)) WindowLister {
	return func() ([]uint32, error) {
		windows, err := list()
		if err != nil {
			return nil, err
		}
		ids := make([]uint32, len(windows))
		for i, w := range windows {
			ids[i] = uint32(w)
		}
		return ids, nil
	}
}
