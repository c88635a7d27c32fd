package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
	"github.com/kaiwa-ai/kaiwa/src/keyval"
)

func newTestLedger(t *testing.T) (*Ledger, *keyval.MemStore) {
	t.Helper()
	kv := keyval.NewMemStore()
	return New(kv, catalog.Default(), nil), kv
}

func TestRecordUsageCounts(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()

	const k = 5
	for i := 0; i < k; i++ {
		require.NoError(t, led.RecordUsage(ctx, catalog.ModelGPT4oMini))
	}

	stats, err := led.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, k, stats[catalog.ModelGPT4oMini].Count)
}

func TestRecordUsageRollingReset(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()

	base := time.Now()
	led.SetClock(func() time.Time { return base })

	for i := 0; i < 3; i++ {
		require.NoError(t, led.RecordUsage(ctx, catalog.ModelGPT4oMini))
	}

	// A call just past the window resets to 1, counting itself.
	led.SetClock(func() time.Time { return base.Add(ResetWindow + time.Minute) })
	require.NoError(t, led.RecordUsage(ctx, catalog.ModelGPT4oMini))

	stats, err := led.Snapshot(ctx)
	require.NoError(t, err)
	rec := stats[catalog.ModelGPT4oMini]
	assert.Equal(t, 1, rec.Count)
	assert.True(t, rec.LastReset.Equal(base.Add(ResetWindow+time.Minute)))
}

func TestRecordUsageLocalModelExempt(t *testing.T) {
	led, kv := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, led.RecordUsage(ctx, catalog.ModelQwenLocal))
	assert.Equal(t, 0, kv.Len(), "local model usage must not be persisted")
}

func TestRemainingAllowed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		model   string
		plan    catalog.Plan
		uses    int
		allowed bool
	}{
		{name: "no record yet", model: catalog.ModelGPT4oMini, plan: catalog.PlanFree, uses: 0, allowed: true},
		{name: "under limit", model: catalog.ModelGPT4oMini, plan: catalog.PlanFree, uses: 19, allowed: true},
		{name: "at limit", model: catalog.ModelGPT4oMini, plan: catalog.PlanFree, uses: 20, allowed: false},
		{name: "over limit", model: catalog.ModelGPT4oMini, plan: catalog.PlanFree, uses: 25, allowed: false},
		{name: "local model exempt", model: catalog.ModelQwenLocal, plan: catalog.PlanFree, uses: 500, allowed: true},
		{name: "not configured for plan", model: catalog.ModelGPT4o, plan: catalog.PlanFree, uses: 1, allowed: false},
		{name: "higher plan higher limit", model: catalog.ModelGPT4oMini, plan: catalog.PlanHeavy, uses: 150, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			led, _ := newTestLedger(t)
			for i := 0; i < tt.uses; i++ {
				require.NoError(t, led.RecordUsage(ctx, tt.model))
			}
			allowed, err := led.RemainingAllowed(ctx, tt.model, tt.plan)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestRemainingAllowedUnlimitedSentinel(t *testing.T) {
	// A cloud model with the unlimited sentinel never runs out.
	cat, err := catalog.New(
		[]catalog.Model{{ID: "test/open", Tier: catalog.TierFree}},
		catalog.Limits{catalog.PlanFree: {"test/open": catalog.Unlimited}},
	)
	require.NoError(t, err)

	led := New(keyval.NewMemStore(), cat, nil)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, led.RecordUsage(ctx, "test/open"))
	}
	allowed, err := led.RemainingAllowed(ctx, "test/open", catalog.PlanFree)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRemainingAllowedUnconfiguredWithoutRecord(t *testing.T) {
	// Fail-open: with no record at all, the check passes even for models
	// the plan has no limit for. The entitlement evaluator catches plan
	// exclusion before the ledger is ever consulted.
	led, _ := newTestLedger(t)
	allowed, err := led.RemainingAllowed(context.Background(), catalog.ModelGPT4o, catalog.PlanFree)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRemainingAllowedAfterWindow(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()

	base := time.Now()
	led.SetClock(func() time.Time { return base })

	for i := 0; i < 20; i++ {
		require.NoError(t, led.RecordUsage(ctx, catalog.ModelGPT4oMini))
	}
	allowed, err := led.RemainingAllowed(ctx, catalog.ModelGPT4oMini, catalog.PlanFree)
	require.NoError(t, err)
	require.False(t, allowed)

	// The stale record is reset-pending, so the next call is allowed.
	led.SetClock(func() time.Time { return base.Add(ResetWindow + time.Minute) })
	allowed, err = led.RemainingAllowed(ctx, catalog.ModelGPT4oMini, catalog.PlanFree)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRemaining(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()

	left, ok, err := led.Remaining(ctx, catalog.ModelGPT4oMini, catalog.PlanFree)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20, left)

	for i := 0; i < 3; i++ {
		require.NoError(t, led.RecordUsage(ctx, catalog.ModelGPT4oMini))
	}
	left, ok, err = led.Remaining(ctx, catalog.ModelGPT4oMini, catalog.PlanFree)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 17, left)

	left, ok, err = led.Remaining(ctx, catalog.ModelQwenLocal, catalog.PlanFree)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, catalog.Unlimited, left)

	_, ok, err = led.Remaining(ctx, catalog.ModelGPT4o, catalog.PlanFree)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConcurrentRecordUsageSerializes(t *testing.T) {
	led, _ := newTestLedger(t)
	ctx := context.Background()

	const goroutines = 16
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = led.RecordUsage(ctx, catalog.ModelGPT4oMini)
		}()
	}
	wg.Wait()

	stats, err := led.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, goroutines, stats[catalog.ModelGPT4oMini].Count)
}

func TestStatsPersistedAsJSON(t *testing.T) {
	led, kv := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, led.RecordUsage(ctx, catalog.ModelGPT4oMini))

	raw, ok, err := kv.Get(ctx, keyval.KeyUsageStats)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, catalog.ModelGPT4oMini)
	assert.Contains(t, raw, `"count":1`)
}
