// Package keyval provides the secure key-value persistence layer backing
// the usage ledger, conversation store, and profile storage. Backends must
// tolerate absent keys (first run) by reporting ok=false rather than an
// error.
package keyval

import "context"

// Store is a flat key-value store. Get returns ok=false for a missing key
// with a nil error; errors are reserved for actual storage failures.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Well-known keys shared across components. The values predate this
// implementation and must stay stable for installed data to survive
// upgrades.
const (
	KeyAPIKeys             = "api_keys"
	KeyOpenRouterAPIKey    = "openrouter_api_key"
	KeyUserProfile         = "user_profile"
	KeyConversationIndex   = "conversations"
	KeyConversationPrefix  = "conversation_"
	KeyConversationHistory = "conversation_history"
	KeyUsageStats          = "usage_stats"
)
