package decision

import (
	"context"
	"fmt"
	"strings"

	"github.com/barakabank/bank-service/internal/models"
	"github.com/shopspring/decimal"
)

// acceptedFileTypes are the content types considered valid evidence.
var acceptedFileTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// RuleBased recommends an outcome from document metadata alone: presence,
// count and content type. It never reads file bytes.
type RuleBased struct {
	threshold decimal.Decimal
}

// NewRuleBased returns a metadata-driven source. Operations above ten times
// the threshold are always referred to a human.
func NewRuleBased(threshold decimal.Decimal) *RuleBased {
	return &RuleBased{threshold: threshold}
}

// Name implements Source.
func (r *RuleBased) Name() string { return "rule-based" }

// Evaluate implements Source.
func (r *RuleBased) Evaluate(ctx context.Context, op *models.Operation, docs []models.Document) (*Advice, error) {
	if len(docs) == 0 {
		return &Advice{
			Decision:    models.DecisionNeedHumanReview,
			Confidence:  0.9,
			Summary:     "No supporting document provided",
			RiskFactors: "Missing evidence",
		}, nil
	}

	var unsupported []string
	for _, doc := range docs {
		if !acceptedFileTypes[strings.ToLower(doc.FileType)] {
			unsupported = append(unsupported, doc.FileName)
		}
	}
	if len(unsupported) > 0 {
		return &Advice{
			Decision:    models.DecisionReject,
			Confidence:  0.7,
			Summary:     fmt.Sprintf("Unsupported document type for: %s", strings.Join(unsupported, ", ")),
			RiskFactors: "Unverifiable evidence format",
		}, nil
	}

	if op.Amount.GreaterThan(r.threshold.Mul(decimal.NewFromInt(10))) {
		return &Advice{
			Decision:    models.DecisionNeedHumanReview,
			Confidence:  0.8,
			Summary:     fmt.Sprintf("Amount %s far exceeds the review threshold, human judgement required", op.Amount),
			RiskFactors: "Very large amount",
		}, nil
	}

	return &Advice{
		Decision:    models.DecisionApprove,
		Confidence:  0.55,
		Summary:     fmt.Sprintf("%d supporting document(s) of accepted type attached", len(docs)),
		RiskFactors: "None",
	}, nil
}

var _ Source = (*RuleBased)(nil)
