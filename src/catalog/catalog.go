// Package catalog holds the static model registry: which models exist,
// which subscription plans can see them, their daily usage limits, and the
// degradation chain used when a model is denied.
package catalog

import (
	"errors"
	"fmt"
)

// Tier is the entitlement level of a model.
type Tier string

const (
	TierFree  Tier = "free"
	TierLite  Tier = "lite"
	TierHeavy Tier = "heavy"
)

// Plan is a user's subscription level. Plans share values with tiers and
// are totally ordered: heavy ⊇ lite ⊇ free.
type Plan string

const (
	PlanFree  Plan = "free"
	PlanLite  Plan = "lite"
	PlanHeavy Plan = "heavy"
)

// Kind distinguishes chat models from image generation models.
type Kind string

const (
	KindChat  Kind = "chat"
	KindImage Kind = "image"
)

// Unlimited is the sentinel limit value meaning no daily cap.
const Unlimited = -1

// ErrModelNotFound indicates the requested model id is not in the catalog.
var ErrModelNotFound = errors.New("model not found in catalog")

// Model describes a single model entry. Entries are immutable once the
// catalog is built.
type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Provider      string `json:"provider"`
	Tier          Tier   `json:"tier"`
	Kind          Kind   `json:"kind"`
	ContextWindow int    `json:"context_window,omitempty"`
	Local         bool   `json:"local,omitempty"`
	FallbackID    string `json:"fallback_id,omitempty"`
}

// Limits maps plan -> model id -> daily call limit. A missing entry means
// the model is not available on that plan; Unlimited (-1) means no cap.
type Limits map[Plan]map[string]int

// Catalog is an immutable registry of models, built once at startup and
// passed to the components that need it.
type Catalog struct {
	models []Model
	byID   map[string]int
	limits Limits
}

// New builds a catalog from a model list and per-plan limits. The order of
// models is preserved and used by ListByPlan. Fallback ids must refer to
// models present in the list.
func New(models []Model, limits Limits) (*Catalog, error) {
	byID := make(map[string]int, len(models))
	for i, m := range models {
		if m.ID == "" {
			return nil, fmt.Errorf("model at index %d has empty id", i)
		}
		if _, dup := byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate model id %q", m.ID)
		}
		byID[m.ID] = i
	}
	for _, m := range models {
		if m.FallbackID != "" {
			if _, ok := byID[m.FallbackID]; !ok {
				return nil, fmt.Errorf("model %q falls back to unknown model %q", m.ID, m.FallbackID)
			}
		}
	}
	cloned := make([]Model, len(models))
	copy(cloned, models)
	return &Catalog{models: cloned, byID: byID, limits: limits}, nil
}

// Describe returns the descriptor for the given model id.
func (c *Catalog) Describe(id string) (Model, error) {
	i, ok := c.byID[id]
	if !ok {
		return Model{}, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	return c.models[i], nil
}

// Has reports whether the model id exists in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of models in the catalog. It bounds fallback
// traversal depth in the routing gateway.
func (c *Catalog) Len() int {
	return len(c.models)
}

// FallbackOf returns the fallback model for id, or ok=false if the model
// has no fallback or is unknown.
func (c *Catalog) FallbackOf(id string) (Model, bool) {
	i, ok := c.byID[id]
	if !ok || c.models[i].FallbackID == "" {
		return Model{}, false
	}
	j, ok := c.byID[c.models[i].FallbackID]
	if !ok {
		return Model{}, false
	}
	return c.models[j], true
}

// VisibleTo reports whether a model tier is visible to a plan. Free plans
// see free-tier models, lite sees free and lite, heavy sees everything.
func VisibleTo(plan Plan, tier Tier) bool {
	switch plan {
	case PlanFree:
		return tier == TierFree
	case PlanLite:
		return tier == TierFree || tier == TierLite
	case PlanHeavy:
		return true
	default:
		return false
	}
}

// ListByPlan returns the models visible to a plan, in catalog order.
func (c *Catalog) ListByPlan(plan Plan) []Model {
	var out []Model
	for _, m := range c.models {
		if VisibleTo(plan, m.Tier) {
			out = append(out, m)
		}
	}
	return out
}

// Limit returns the configured daily limit for a model on a plan. ok is
// false when the plan has no entry for the model, which callers treat as
// "not available on this plan".
func (c *Catalog) Limit(plan Plan, id string) (int, bool) {
	planLimits, ok := c.limits[plan]
	if !ok {
		return 0, false
	}
	limit, ok := planLimits[id]
	return limit, ok
}

// ValidPlan reports whether s names a known subscription plan.
func ValidPlan(s string) bool {
	switch Plan(s) {
	case PlanFree, PlanLite, PlanHeavy:
		return true
	}
	return false
}
