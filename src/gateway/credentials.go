package gateway

import (
	"context"
	"os"

	"github.com/kaiwa-ai/kaiwa/src/keyval"
)

// EnvAPIKey is the environment variable consulted when no key is stored.
const EnvAPIKey = "OPENROUTER_API_KEY"

// Credentials sources the upstream API key from secure storage with an
// environment-level fallback.
type Credentials struct {
	kv keyval.Store
}

// NewCredentials creates a credential provider over the given store.
func NewCredentials(kv keyval.Store) *Credentials {
	return &Credentials{kv: kv}
}

// APIKey returns the stored API key, falling back to the environment.
// An empty string means no credential is configured.
func (c *Credentials) APIKey(ctx context.Context) (string, error) {
	key, ok, err := c.kv.Get(ctx, keyval.KeyOpenRouterAPIKey)
	if err != nil {
		return "", &keyval.StorageError{Operation: "load api key", Key: keyval.KeyOpenRouterAPIKey, Err: err}
	}
	if ok && key != "" {
		return key, nil
	}
	return os.Getenv(EnvAPIKey), nil
}

// SetAPIKey stores the API key in secure storage.
func (c *Credentials) SetAPIKey(ctx context.Context, key string) error {
	if err := c.kv.Set(ctx, keyval.KeyOpenRouterAPIKey, key); err != nil {
		return &keyval.StorageError{Operation: "store api key", Key: keyval.KeyOpenRouterAPIKey, Err: err}
	}
	return nil
}
