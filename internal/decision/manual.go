package decision

import (
	"context"

	"github.com/barakabank/bank-service/internal/models"
)

// ManualReview is the default source: it always defers to a human agent.
type ManualReview struct{}

// NewManualReview returns a source that always requests human review.
func NewManualReview() *ManualReview {
	return &ManualReview{}
}

// Name implements Source.
func (m *ManualReview) Name() string { return "manual-review" }

// Evaluate implements Source.
func (m *ManualReview) Evaluate(ctx context.Context, op *models.Operation, docs []models.Document) (*Advice, error) {
	return &Advice{
		Decision:    models.DecisionNeedHumanReview,
		Confidence:  0,
		Summary:     "Automated validation unavailable, manual review required",
		RiskFactors: "None",
	}, nil
}

var _ Source = (*ManualReview)(nil)
