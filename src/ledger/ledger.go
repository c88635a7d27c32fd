// Package ledger tracks per-model daily usage counts with a rolling 24h
// reset. Counters are persisted as a single JSON blob in the secure
// key-value store, matching the installed data format.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
	"github.com/kaiwa-ai/kaiwa/src/keyval"
)

// ResetWindow is how long a counter lives before the next call lazily
// resets it.
const ResetWindow = 24 * time.Hour

// Record is the usage counter for a single model.
type Record struct {
	Count     int       `json:"count"`
	LastReset time.Time `json:"lastReset"`
}

// Stats maps model id to its usage record.
type Stats map[string]Record

// Ledger reads and writes usage counters. The check-then-increment
// critical section is serialized per model id so the count never exceeds
// the limit by more than one even with concurrent callers.
type Ledger struct {
	kv      keyval.Store
	catalog *catalog.Catalog
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a ledger over the given store and catalog.
func New(kv keyval.Store, cat *catalog.Catalog, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		kv:      kv,
		catalog: cat,
		logger:  logger.With("component", "ledger"),
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the time source. Tests use it to move across reset
// windows.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// lockFor returns the mutex serializing operations on one model id.
func (l *Ledger) lockFor(modelID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk, ok := l.locks[modelID]
	if !ok {
		lk = &sync.Mutex{}
		l.locks[modelID] = lk
	}
	return lk
}

func (l *Ledger) load(ctx context.Context) (Stats, error) {
	raw, ok, err := l.kv.Get(ctx, keyval.KeyUsageStats)
	if err != nil {
		return nil, &keyval.StorageError{Operation: "load usage stats", Key: keyval.KeyUsageStats, Err: err}
	}
	if !ok {
		return Stats{}, nil
	}
	var stats Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, fmt.Errorf("failed to decode usage stats: %w", err)
	}
	return stats, nil
}

func (l *Ledger) save(ctx context.Context, stats Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode usage stats: %w", err)
	}
	if err := l.kv.Set(ctx, keyval.KeyUsageStats, string(data)); err != nil {
		return &keyval.StorageError{Operation: "save usage stats", Key: keyval.KeyUsageStats, Err: err}
	}
	return nil
}

// RecordUsage increments the counter for modelID, resetting it first when
// the 24h window has elapsed. Local models are never recorded.
func (l *Ledger) RecordUsage(ctx context.Context, modelID string) error {
	if m, err := l.catalog.Describe(modelID); err == nil && m.Local {
		return nil
	}

	lk := l.lockFor(modelID)
	lk.Lock()
	defer lk.Unlock()

	stats, err := l.load(ctx)
	if err != nil {
		return err
	}

	now := l.now()
	rec, ok := stats[modelID]
	switch {
	case !ok:
		rec = Record{Count: 1, LastReset: now}
	case now.Sub(rec.LastReset) > ResetWindow:
		// Lazy rolling reset; this call is the first of the new window.
		rec = Record{Count: 1, LastReset: now}
	default:
		rec.Count++
	}
	stats[modelID] = rec

	if err := l.save(ctx, stats); err != nil {
		return err
	}
	l.logger.Debug("recorded usage", "model", modelID, "count", rec.Count)
	return nil
}

// RemainingAllowed reports whether another call to modelID is within the
// plan's daily limit. It is true when no record exists yet, when the limit
// is the unlimited sentinel, or when the count is under the limit; false
// when the plan has no limit configured for the model at all. Local models
// are exempt from quota checks.
func (l *Ledger) RemainingAllowed(ctx context.Context, modelID string, plan catalog.Plan) (bool, error) {
	if m, err := l.catalog.Describe(modelID); err == nil && m.Local {
		return true, nil
	}

	lk := l.lockFor(modelID)
	lk.Lock()
	defer lk.Unlock()

	stats, err := l.load(ctx)
	if err != nil {
		return false, err
	}

	rec, ok := stats[modelID]
	if !ok {
		return true, nil
	}

	limit, configured := l.catalog.Limit(plan, modelID)
	if !configured {
		// Model not available on this plan.
		return false, nil
	}
	if limit == catalog.Unlimited {
		return true, nil
	}

	// A stale record counts as reset-pending; the next RecordUsage will
	// start a fresh window.
	if l.now().Sub(rec.LastReset) > ResetWindow {
		return true, nil
	}

	return rec.Count < limit, nil
}

// Remaining returns how many calls are left today for modelID on plan.
// catalog.Unlimited means no cap; 0 with ok=false means the model is not
// available on the plan.
func (l *Ledger) Remaining(ctx context.Context, modelID string, plan catalog.Plan) (int, bool, error) {
	limit, configured := l.catalog.Limit(plan, modelID)
	if !configured {
		return 0, false, nil
	}
	if limit == catalog.Unlimited {
		return catalog.Unlimited, true, nil
	}

	stats, err := l.load(ctx)
	if err != nil {
		return 0, false, err
	}

	rec, ok := stats[modelID]
	if !ok || l.now().Sub(rec.LastReset) > ResetWindow {
		return limit, true, nil
	}
	left := limit - rec.Count
	if left < 0 {
		left = 0
	}
	return left, true, nil
}

// Snapshot returns a copy of the current usage stats.
func (l *Ledger) Snapshot(ctx context.Context) (Stats, error) {
	stats, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(Stats, len(stats))
	for k, v := range stats {
		out[k] = v
	}
	return out, nil
}
