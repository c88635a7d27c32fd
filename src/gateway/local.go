package gateway

import (
	"context"
	"fmt"
)

// LocalResponder produces a response for on-device models. The real
// inference runtime is not wired up yet; this stand-in keeps the local
// path exercisable without network I/O or quota accounting.
type LocalResponder interface {
	Respond(ctx context.Context, modelID, prompt string) (string, error)
}

// StubResponder is the default LocalResponder.
type StubResponder struct{}

func (StubResponder) Respond(ctx context.Context, modelID, prompt string) (string, error) {
	return fmt.Sprintf("[%s] ローカルモデルの応答です: %s", modelID, prompt), nil
}
