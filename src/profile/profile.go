// Package profile manages the local user profile: a single record created
// on first launch and mutated only by plan changes.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
	"github.com/kaiwa-ai/kaiwa/src/keyval"
)

// DefaultName is the display name given to a freshly created profile.
const DefaultName = "ユーザー"

// Profile is the local user profile. There is exactly one per
// installation.
type Profile struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Avatar    string       `json:"avatar,omitempty"`
	Plan      catalog.Plan `json:"plan"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Manager loads and saves the profile through the secure key-value store.
type Manager struct {
	kv     keyval.Store
	logger *slog.Logger
}

// NewManager creates a profile manager.
func NewManager(kv keyval.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{kv: kv, logger: logger.With("component", "profile")}
}

// Load returns the stored profile, or nil if none exists. Read failures
// degrade to absent data rather than propagating.
func (m *Manager) Load(ctx context.Context) *Profile {
	raw, ok, err := m.kv.Get(ctx, keyval.KeyUserProfile)
	if err != nil {
		m.logger.Error("failed to read profile, treating as absent", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		m.logger.Error("failed to decode profile, treating as absent", "error", err)
		return nil
	}
	return &p
}

// Save persists the profile.
func (m *Manager) Save(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := m.kv.Set(ctx, keyval.KeyUserProfile, string(data)); err != nil {
		return &keyval.StorageError{Operation: "save profile", Key: keyval.KeyUserProfile, Err: err}
	}
	return nil
}

// Ensure returns the stored profile, creating and persisting a default
// free-plan profile on first run.
func (m *Manager) Ensure(ctx context.Context) (*Profile, error) {
	if p := m.Load(ctx); p != nil {
		return p, nil
	}

	p := &Profile{
		ID:        uuid.New().String(),
		Name:      DefaultName,
		Plan:      catalog.PlanFree,
		CreatedAt: time.Now(),
	}
	if err := m.Save(ctx, p); err != nil {
		return nil, err
	}
	m.logger.Info("created default profile", "id", p.ID)
	return p, nil
}

// SetPlan changes the subscription plan and persists the profile.
func (m *Manager) SetPlan(ctx context.Context, p *Profile, plan catalog.Plan) error {
	if !catalog.ValidPlan(string(plan)) {
		return fmt.Errorf("unknown plan %q", plan)
	}
	p.Plan = plan
	return m.Save(ctx, p)
}
