// Package gateway routes chat messages to model providers. It enforces
// entitlement and quota before any network call, degrades to the catalog
// fallback chain on the silent-fallback path, dispatches to the upstream
// HTTP API or the local stub, and records usage on success. The gateway
// never persists messages; the caller appends the returned message to the
// conversation and saves it.
package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
	"github.com/kaiwa-ai/kaiwa/src/convstore"
	"github.com/kaiwa-ai/kaiwa/src/entitlement"
	"github.com/kaiwa-ai/kaiwa/src/ledger"
	"github.com/kaiwa-ai/kaiwa/src/profile"
)

// DefaultContextMessages is how many recent messages are sent upstream.
const DefaultContextMessages = 10

// ChatCompleter abstracts the upstream chat-completions call.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Config holds the gateway's collaborators and knobs.
type Config struct {
	Catalog         *catalog.Catalog
	Evaluator       *entitlement.Evaluator
	Ledger          *ledger.Ledger
	Client          ChatCompleter
	Local           LocalResponder
	Logger          *slog.Logger
	ContextMessages int
	MaxTokens       int
}

// Gateway orchestrates entitlement, quota, dispatch, and usage recording.
type Gateway struct {
	catalog         *catalog.Catalog
	evaluator       *entitlement.Evaluator
	ledger          *ledger.Ledger
	client          ChatCompleter
	local           LocalResponder
	logger          *slog.Logger
	contextMessages int
	maxTokens       int
}

// New creates a gateway.
func New(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ContextMessages <= 0 {
		cfg.ContextMessages = DefaultContextMessages
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Local == nil {
		cfg.Local = StubResponder{}
	}
	return &Gateway{
		catalog:         cfg.Catalog,
		evaluator:       cfg.Evaluator,
		ledger:          cfg.Ledger,
		client:          cfg.Client,
		local:           cfg.Local,
		logger:          logger.With("component", "gateway"),
		contextMessages: cfg.ContextMessages,
		maxTokens:       cfg.MaxTokens,
	}
}

// CheckModel is the explicit model-switch path: it returns the denial
// (with its fallback suggestion) to the caller for confirmation instead
// of silently substituting.
func (g *Gateway) CheckModel(ctx context.Context, modelID string, p *profile.Profile) (entitlement.Decision, error) {
	return g.evaluator.Evaluate(ctx, modelID, p)
}

// Send routes the conversation's trimmed context to modelID, silently
// walking the fallback chain when the requested model is denied. On
// success it records usage against the model that actually served the
// request and returns the assistant message, attributed to that model.
// The conversation is not modified.
func (g *Gateway) Send(ctx context.Context, conv *convstore.Conversation, modelID string, p *profile.Profile) (convstore.Message, error) {
	visited := make(map[string]bool, g.catalog.Len())
	requested := modelID

	// The walk is bounded by the catalog size; a repeated model id in one
	// logical request is a fatal routing error.
	for depth := 0; depth <= g.catalog.Len(); depth++ {
		if visited[modelID] {
			return convstore.Message{}, fmt.Errorf("%w: %s", ErrFallbackCycle, modelID)
		}
		visited[modelID] = true

		decision, err := g.evaluator.Evaluate(ctx, modelID, p)
		if err != nil {
			return convstore.Message{}, err
		}
		if !decision.Allowed {
			if decision.FallbackID != "" {
				g.logger.Info("falling back",
					"requested", requested, "denied", modelID,
					"reason", decision.Reason, "fallback", decision.FallbackID)
				modelID = decision.FallbackID
				continue
			}
			return convstore.Message{}, &DenialError{
				ModelID: modelID,
				Reason:  decision.Reason,
			}
		}

		return g.dispatch(ctx, conv, modelID)
	}

	return convstore.Message{}, fmt.Errorf("%w: exhausted fallback chain from %s", ErrFallbackCycle, requested)
}

// dispatch sends to an already-authorized model.
func (g *Gateway) dispatch(ctx context.Context, conv *convstore.Conversation, modelID string) (convstore.Message, error) {
	model, err := g.catalog.Describe(modelID)
	if err != nil {
		return convstore.Message{}, err
	}

	if model.Local {
		return g.dispatchLocal(ctx, conv, modelID)
	}

	req := &ChatRequest{
		Model:     modelID,
		Messages:  g.trimContext(conv.Messages),
		MaxTokens: g.maxTokens,
	}
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return convstore.Message{}, err
	}

	if err := g.ledger.RecordUsage(ctx, modelID); err != nil {
		// The upstream call already succeeded; surface the accounting
		// failure rather than dropping the response silently.
		return convstore.Message{}, err
	}

	msg := convstore.NewMessage(convstore.RoleAssistant, resp.Choices[0].Message.Content)
	msg.Model = modelID
	return msg, nil
}

// dispatchLocal synthesizes a response for on-device models. No network
// I/O, no quota accounting.
func (g *Gateway) dispatchLocal(ctx context.Context, conv *convstore.Conversation, modelID string) (convstore.Message, error) {
	prompt := ""
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == convstore.RoleUser {
			prompt = conv.Messages[i].Content
			break
		}
	}

	content, err := g.local.Respond(ctx, modelID, prompt)
	if err != nil {
		return convstore.Message{}, err
	}

	msg := convstore.NewMessage(convstore.RoleAssistant, content)
	msg.Model = modelID
	return msg, nil
}

// trimContext keeps only the most recent messages, excluding system-role
// messages from what goes upstream.
func (g *Gateway) trimContext(messages []convstore.Message) []WireMessage {
	var out []WireMessage
	for _, m := range messages {
		if m.Role == convstore.RoleSystem {
			continue
		}
		out = append(out, WireMessage{Role: m.Role, Content: m.Content})
	}
	if len(out) > g.contextMessages {
		out = out[len(out)-g.contextMessages:]
	}
	return out
}
