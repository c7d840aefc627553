package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/barakabank/bank-service/internal/models"
	"github.com/shopspring/decimal"
)

// SaveValidationResult upserts the advisory result for an operation.
// Re-analysis replaces the previous result.
func (r *Repository) SaveValidationResult(ctx context.Context, result *models.ValidationResult) error {
	query := `
		INSERT INTO bank.validation_results
			(operation_id, decision, confidence, summary, risk_factors, extracted_amount, source, analyzed_at, processing_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (operation_id) DO UPDATE SET
			decision = EXCLUDED.decision,
			confidence = EXCLUDED.confidence,
			summary = EXCLUDED.summary,
			risk_factors = EXCLUDED.risk_factors,
			extracted_amount = EXCLUDED.extracted_amount,
			source = EXCLUDED.source,
			analyzed_at = EXCLUDED.analyzed_at,
			processing_ms = EXCLUDED.processing_ms
		RETURNING id`
	extracted := decimal.NullDecimal{}
	if result.ExtractedAmount != nil {
		extracted = decimal.NullDecimal{Decimal: *result.ExtractedAmount, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query, result.OperationID, result.Decision, result.Confidence,
		result.Summary, result.RiskFactors, extracted, result.Source,
		result.AnalyzedAt, result.ProcessingMs).
		Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("failed to save validation result: %w", err)
	}
	return nil
}

// ValidationResultByOperation retrieves the advisory result for an operation
func (r *Repository) ValidationResultByOperation(ctx context.Context, operationID int64) (*models.ValidationResult, error) {
	result := &models.ValidationResult{}
	query := `
		SELECT id, operation_id, decision, confidence, summary, risk_factors, extracted_amount, source, analyzed_at, processing_ms
		FROM bank.validation_results
		WHERE operation_id = $1`
	var extracted decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, query, operationID).
		Scan(&result.ID, &result.OperationID, &result.Decision, &result.Confidence,
			&result.Summary, &result.RiskFactors, &extracted,
			&result.Source, &result.AnalyzedAt, &result.ProcessingMs)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find validation result: %w", err)
	}
	if extracted.Valid {
		result.ExtractedAmount = &extracted.Decimal
	}
	return result, nil
}

// ValidationStats counts validation results per decision
func (r *Repository) ValidationStats(ctx context.Context) (*models.ValidationStats, error) {
	stats := &models.ValidationStats{}
	query := `
		SELECT
			COUNT(*) FILTER (WHERE decision = $1),
			COUNT(*) FILTER (WHERE decision = $2),
			COUNT(*) FILTER (WHERE decision = $3)
		FROM bank.validation_results`
	err := r.db.QueryRowContext(ctx, query,
		models.DecisionApprove, models.DecisionReject, models.DecisionNeedHumanReview).
		Scan(&stats.Approved, &stats.Rejected, &stats.HumanReview)
	if err != nil {
		return nil, fmt.Errorf("failed to count validation results: %w", err)
	}
	return stats, nil
}
