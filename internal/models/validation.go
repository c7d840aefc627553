package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decision is the advisory outcome of a decision source for a pending operation.
type Decision string

const (
	DecisionApprove         Decision = "APPROVE"
	DecisionReject          Decision = "REJECT"
	DecisionNeedHumanReview Decision = "NEED_HUMAN_REVIEW"
)

// ValidationResult records the advisory analysis of one operation.
// At most one result is kept per operation; re-analysis overwrites it.
type ValidationResult struct {
	ID              int64            `json:"id"`
	OperationID     int64            `json:"operation_id"`
	Decision        Decision         `json:"decision"`
	Confidence      float64          `json:"confidence"`
	Summary         string           `json:"summary"`
	RiskFactors     string           `json:"risk_factors"`
	ExtractedAmount *decimal.Decimal `json:"extracted_amount,omitempty"`
	Source          string           `json:"source"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
	ProcessingMs    int64            `json:"processing_ms"`
}

// ValidationStats counts persisted validation results per decision.
type ValidationStats struct {
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	HumanReview int64 `json:"human_review"`
}
