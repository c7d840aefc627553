package decision_test

import (
	"context"
	"testing"

	"github.com/barakabank/bank-service/internal/decision"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func operation(amount string) *models.Operation {
	return &models.Operation{
		ID:     1,
		Type:   models.OperationWithdrawal,
		Amount: decimal.RequireFromString(amount),
		Status: models.StatusPending,
	}
}

func TestManualReviewAlwaysRefersToHuman(t *testing.T) {
	source := decision.NewManualReview()
	assert.Equal(t, "manual-review", source.Name())

	cases := [][]models.Document{
		nil,
		{{FileName: "a.pdf", FileType: "application/pdf"}},
		{{FileName: "a.pdf", FileType: "application/pdf"}, {FileName: "b.png", FileType: "image/png"}},
	}
	for _, docs := range cases {
		advice, err := source.Evaluate(context.Background(), operation("15000"), docs)
		require.NoError(t, err)
		assert.Equal(t, models.DecisionNeedHumanReview, advice.Decision)
	}
}

func TestRuleBasedWithoutDocuments(t *testing.T) {
	source := decision.NewRuleBased(decimal.NewFromInt(10000))

	advice, err := source.Evaluate(context.Background(), operation("15000"), nil)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNeedHumanReview, advice.Decision)
	assert.InDelta(t, 0.9, advice.Confidence, 0.001)
}

func TestRuleBasedRejectsUnsupportedFileType(t *testing.T) {
	source := decision.NewRuleBased(decimal.NewFromInt(10000))

	docs := []models.Document{
		{FileName: "invoice.pdf", FileType: "application/pdf"},
		{FileName: "notes.docx", FileType: "application/msword"},
	}
	advice, err := source.Evaluate(context.Background(), operation("15000"), docs)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionReject, advice.Decision)
	assert.Contains(t, advice.Summary, "notes.docx")
}

func TestRuleBasedRefersVeryLargeAmounts(t *testing.T) {
	source := decision.NewRuleBased(decimal.NewFromInt(10000))
	docs := []models.Document{{FileName: "invoice.pdf", FileType: "application/pdf"}}

	advice, err := source.Evaluate(context.Background(), operation("100000.01"), docs)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNeedHumanReview, advice.Decision)
}

func TestRuleBasedApprovesDocumentedOperations(t *testing.T) {
	source := decision.NewRuleBased(decimal.NewFromInt(10000))
	docs := []models.Document{
		{FileName: "invoice.pdf", FileType: "application/pdf"},
		{FileName: "photo.jpg", FileType: "image/jpeg"},
	}

	advice, err := source.Evaluate(context.Background(), operation("15000"), docs)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprove, advice.Decision)
}
