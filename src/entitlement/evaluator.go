// Package entitlement decides whether a user's plan permits a requested
// model, and proposes a fallback when it does not.
package entitlement

import (
	"context"
	"log/slog"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
	"github.com/kaiwa-ai/kaiwa/src/ledger"
	"github.com/kaiwa-ai/kaiwa/src/profile"
)

// Reason identifies why a model was denied.
type Reason string

const (
	ReasonUnsupportedModel Reason = "unsupported_model"
	ReasonPlanExcluded     Reason = "plan_excluded"
	ReasonQuotaExceeded    Reason = "quota_exceeded"
)

// Message returns the user-facing denial message.
func (r Reason) Message() string {
	switch r {
	case ReasonUnsupportedModel:
		return "unsupported model"
	case ReasonPlanExcluded:
		return "plan does not include this model"
	case ReasonQuotaExceeded:
		return "daily quota exceeded for this model"
	default:
		return string(r)
	}
}

// Decision is the outcome of an entitlement check. When Allowed is false,
// Reason is set and FallbackID names a substitute model if the catalog has
// one.
type Decision struct {
	Allowed    bool
	Reason     Reason
	FallbackID string
}

// Evaluator applies the tier-visibility and quota rules.
type Evaluator struct {
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	logger  *slog.Logger
}

// New creates an evaluator over the given catalog and ledger.
func New(cat *catalog.Catalog, led *ledger.Ledger, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		catalog: cat,
		ledger:  led,
		logger:  logger.With("component", "entitlement"),
	}
}

// Evaluate decides whether the profile may use modelID. Tier eligibility
// is checked before quota: an ineligible model's quota is meaningless.
// Quota failures return the catalog fallback when one exists. Errors are
// storage failures only, never denials.
func (e *Evaluator) Evaluate(ctx context.Context, modelID string, p *profile.Profile) (Decision, error) {
	model, err := e.catalog.Describe(modelID)
	if err != nil {
		e.logger.Debug("denied unknown model", "model", modelID)
		return Decision{Allowed: false, Reason: ReasonUnsupportedModel}, nil
	}

	if !catalog.VisibleTo(p.Plan, model.Tier) {
		d := Decision{Allowed: false, Reason: ReasonPlanExcluded}
		if fb, ok := e.catalog.FallbackOf(modelID); ok {
			d.FallbackID = fb.ID
		}
		e.logger.Debug("denied by plan", "model", modelID, "plan", p.Plan, "fallback", d.FallbackID)
		return d, nil
	}

	allowed, err := e.ledger.RemainingAllowed(ctx, modelID, p.Plan)
	if err != nil {
		return Decision{}, err
	}
	if !allowed {
		d := Decision{Allowed: false, Reason: ReasonQuotaExceeded}
		if fb, ok := e.catalog.FallbackOf(modelID); ok {
			d.FallbackID = fb.ID
		}
		e.logger.Debug("denied by quota", "model", modelID, "plan", p.Plan, "fallback", d.FallbackID)
		return d, nil
	}

	return Decision{Allowed: true}, nil
}
