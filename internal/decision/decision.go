// Package decision provides advisory review of pending operations. A Source
// only recommends an outcome; the operation lifecycle engine remains the sole
// path that moves money.
package decision

import (
	"context"

	"github.com/barakabank/bank-service/internal/models"
	"github.com/shopspring/decimal"
)

// Advice is the recommendation a source produces for one operation.
type Advice struct {
	Decision        models.Decision
	Confidence      float64
	Summary         string
	RiskFactors     string
	ExtractedAmount *decimal.Decimal
}

// Source evaluates a pending operation and its attached evidence. A failing
// or unavailable source must be treated by callers as NEED_HUMAN_REVIEW,
// never as approval.
type Source interface {
	Name() string
	Evaluate(ctx context.Context, op *models.Operation, docs []models.Document) (*Advice, error)
}
