package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
	"github.com/kaiwa-ai/kaiwa/src/convstore"
	"github.com/kaiwa-ai/kaiwa/src/entitlement"
	"github.com/kaiwa-ai/kaiwa/src/keyval"
	"github.com/kaiwa-ai/kaiwa/src/ledger"
	"github.com/kaiwa-ai/kaiwa/src/profile"
)

// fakeCompleter records requests and replies with canned content.
type fakeCompleter struct {
	requests []*ChatRequest
	reply    string
	err      error
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &ChatResponse{
		Choices: []ChatChoice{
			{Message: WireMessage{Role: convstore.RoleAssistant, Content: f.reply}},
		},
	}, nil
}

type testRig struct {
	gateway   *Gateway
	completer *fakeCompleter
	ledger    *ledger.Ledger
	catalog   *catalog.Catalog
}

func newTestRig(t *testing.T, cat *catalog.Catalog) *testRig {
	t.Helper()
	if cat == nil {
		cat = catalog.Default()
	}
	kv := keyval.NewMemStore()
	led := ledger.New(kv, cat, nil)
	eval := entitlement.New(cat, led, nil)
	completer := &fakeCompleter{reply: "了解しました。"}

	gw := New(Config{
		Catalog:   cat,
		Evaluator: eval,
		Ledger:    led,
		Client:    completer,
	})
	return &testRig{gateway: gw, completer: completer, ledger: led, catalog: cat}
}

func freeProfile() *profile.Profile {
	return &profile.Profile{ID: "u1", Name: "test", Plan: catalog.PlanFree}
}

func heavyProfile() *profile.Profile {
	return &profile.Profile{ID: "u1", Name: "test", Plan: catalog.PlanHeavy}
}

func conversationWith(messages ...convstore.Message) *convstore.Conversation {
	conv := convstore.New(catalog.ModelGPT4oMini)
	for _, m := range messages {
		conv.Append(m)
	}
	return conv
}

func count(t *testing.T, led *ledger.Ledger, model string) int {
	t.Helper()
	stats, err := led.Snapshot(context.Background())
	require.NoError(t, err)
	return stats[model].Count
}

func TestSendAllowedModel(t *testing.T) {
	rig := newTestRig(t, nil)
	conv := conversationWith(convstore.NewMessage(convstore.RoleUser, "こんにちは"))

	msg, err := rig.gateway.Send(context.Background(), conv, catalog.ModelGPT4oMini, freeProfile())
	require.NoError(t, err)
	assert.Equal(t, convstore.RoleAssistant, msg.Role)
	assert.Equal(t, "了解しました。", msg.Content)
	assert.Equal(t, catalog.ModelGPT4oMini, msg.Model)

	require.Len(t, rig.completer.requests, 1)
	assert.Equal(t, catalog.ModelGPT4oMini, rig.completer.requests[0].Model)
	assert.Equal(t, 1, count(t, rig.ledger, catalog.ModelGPT4oMini))
}

// The chat-send path silently substitutes the catalog fallback when the
// requested model is denied by plan; exactly one increment lands on the
// fallback, zero on the original.
func TestSendSilentFallback(t *testing.T) {
	rig := newTestRig(t, nil)
	conv := conversationWith(convstore.NewMessage(convstore.RoleUser, "hi"))

	msg, err := rig.gateway.Send(context.Background(), conv, catalog.ModelGPT4o, freeProfile())
	require.NoError(t, err)
	assert.Equal(t, catalog.ModelGPT4oMini, msg.Model)

	require.Len(t, rig.completer.requests, 1)
	assert.Equal(t, catalog.ModelGPT4oMini, rig.completer.requests[0].Model)
	assert.Equal(t, 1, count(t, rig.ledger, catalog.ModelGPT4oMini))
	assert.Equal(t, 0, count(t, rig.ledger, catalog.ModelGPT4o))
}

// With every cloud model in the free chain exhausted, the walk lands on
// the local model at the end of the chain.
func TestSendFallbackChainToLocal(t *testing.T) {
	rig := newTestRig(t, nil)
	ctx := context.Background()

	exhaust := map[string]int{
		catalog.ModelGPT4oMini:  20,
		catalog.ModelGPT41Mini:  20,
		catalog.ModelGPT41Nano:  30,
		catalog.ModelDeepSeekR1: 30,
	}
	for model, limit := range exhaust {
		for i := 0; i < limit; i++ {
			require.NoError(t, rig.ledger.RecordUsage(ctx, model))
		}
	}

	conv := conversationWith(convstore.NewMessage(convstore.RoleUser, "hi"))
	msg, err := rig.gateway.Send(ctx, conv, catalog.ModelGPT4oMini, freeProfile())
	require.NoError(t, err)
	assert.Equal(t, catalog.ModelQwenLocal, msg.Model)
	assert.Empty(t, rig.completer.requests, "local dispatch must not hit the network")
}

func TestSendUnknownModelDenied(t *testing.T) {
	rig := newTestRig(t, nil)
	conv := conversationWith(convstore.NewMessage(convstore.RoleUser, "hi"))

	_, err := rig.gateway.Send(context.Background(), conv, "nonexistent/model", freeProfile())
	denial, ok := IsDenial(err)
	require.True(t, ok)
	assert.Equal(t, entitlement.ReasonUnsupportedModel, denial.Reason)
	assert.Empty(t, rig.completer.requests)
}

func TestSendLocalModelSkipsLedger(t *testing.T) {
	rig := newTestRig(t, nil)
	conv := conversationWith(convstore.NewMessage(convstore.RoleUser, "ローカルでお願い"))

	msg, err := rig.gateway.Send(context.Background(), conv, catalog.ModelQwenLocal, freeProfile())
	require.NoError(t, err)
	assert.Equal(t, catalog.ModelQwenLocal, msg.Model)
	assert.Contains(t, msg.Content, "ローカルでお願い")
	assert.Equal(t, 0, count(t, rig.ledger, catalog.ModelQwenLocal))
	assert.Empty(t, rig.completer.requests)
}

func TestSendFallbackCycleDetected(t *testing.T) {
	// Two heavy-tier models pointing at each other; a free plan denies
	// both, so the walk revisits the first id.
	models := []catalog.Model{
		{ID: "loop/a", Tier: catalog.TierHeavy, FallbackID: "loop/b"},
		{ID: "loop/b", Tier: catalog.TierHeavy, FallbackID: "loop/a"},
	}
	cat, err := catalog.New(models, catalog.Limits{})
	require.NoError(t, err)

	rig := newTestRig(t, cat)
	conv := conversationWith(convstore.NewMessage(convstore.RoleUser, "hi"))

	_, err = rig.gateway.Send(context.Background(), conv, "loop/a", freeProfile())
	assert.ErrorIs(t, err, ErrFallbackCycle)
}

func TestSendUpstreamErrorNotRecorded(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.completer.err = &APIError{StatusCode: 502, Message: "bad gateway"}
	conv := conversationWith(convstore.NewMessage(convstore.RoleUser, "hi"))

	_, err := rig.gateway.Send(context.Background(), conv, catalog.ModelGPT4oMini, freeProfile())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 502, apiErr.StatusCode)
	assert.Equal(t, 0, count(t, rig.ledger, catalog.ModelGPT4oMini), "failed calls must not count")
}

func TestSendTrimsContext(t *testing.T) {
	rig := newTestRig(t, nil)

	conv := convstore.New(catalog.ModelClaudeSonnet)
	conv.Append(convstore.NewMessage(convstore.RoleSystem, "あなたは親切なアシスタントです"))
	for i := 0; i < 14; i++ {
		role := convstore.RoleUser
		if i%2 == 1 {
			role = convstore.RoleAssistant
		}
		conv.Append(convstore.NewMessage(role, "message"))
	}

	_, err := rig.gateway.Send(context.Background(), conv, catalog.ModelClaudeSonnet, heavyProfile())
	require.NoError(t, err)

	require.Len(t, rig.completer.requests, 1)
	sent := rig.completer.requests[0].Messages
	assert.Len(t, sent, DefaultContextMessages)
	for _, m := range sent {
		assert.NotEqual(t, convstore.RoleSystem, m.Role, "system messages are excluded upstream")
	}
}

func TestCheckModelSurfacesDenial(t *testing.T) {
	rig := newTestRig(t, nil)

	// The explicit-switch path returns the denial for confirmation; it
	// never silently substitutes.
	d, err := rig.gateway.CheckModel(context.Background(), catalog.ModelGPT4o, freeProfile())
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, entitlement.ReasonPlanExcluded, d.Reason)
	assert.Equal(t, catalog.ModelGPT4oMini, d.FallbackID)
	assert.Empty(t, rig.completer.requests)

	d, err = rig.gateway.CheckModel(context.Background(), catalog.ModelGPT4oMini, freeProfile())
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
