package service

import (
	"context"
	"time"

	"github.com/barakabank/bank-service/internal/decision"
	"github.com/barakabank/bank-service/internal/models"
)

// AnalyzeOperation runs the configured decision source over an operation and
// persists the advisory result. A failing source degrades to
// NEED_HUMAN_REVIEW; it can never approve by accident, and it never moves
// money.
func (s *Service) AnalyzeOperation(ctx context.Context, operationID int64) (*models.ValidationResult, error) {
	op, err := s.store.OperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.DocumentsByOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	advice, err := s.source.Evaluate(ctx, op, docs)
	if err != nil {
		s.log.Warnf("Decision source %q failed for operation %d: %v", s.source.Name(), op.ID, err)
		advice = &decision.Advice{
			Decision:    models.DecisionNeedHumanReview,
			Confidence:  0,
			Summary:     "Automated validation failed, manual review required",
			RiskFactors: "Validation error",
		}
	}

	result := &models.ValidationResult{
		OperationID:     op.ID,
		Decision:        advice.Decision,
		Confidence:      advice.Confidence,
		Summary:         advice.Summary,
		RiskFactors:     advice.RiskFactors,
		ExtractedAmount: advice.ExtractedAmount,
		Source:          s.source.Name(),
		AnalyzedAt:      time.Now(),
		ProcessingMs:    time.Since(started).Milliseconds(),
	}
	if err := s.store.SaveValidationResult(ctx, result); err != nil {
		return nil, err
	}

	s.log.Infof("Operation %d analyzed by %s: %s", op.ID, result.Source, result.Decision)
	return result, nil
}

// ValidationResult returns the persisted advisory result for an operation.
func (s *Service) ValidationResult(ctx context.Context, operationID int64) (*models.ValidationResult, error) {
	return s.store.ValidationResultByOperation(ctx, operationID)
}

// ValidationStats counts advisory results per decision.
func (s *Service) ValidationStats(ctx context.Context) (*models.ValidationStats, error) {
	return s.store.ValidationStats(ctx)
}
