package service

import (
	"context"
	"testing"

	"money-mate/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type fakeLLM struct {
	answer string
	err    error
	calls  int
}

func (f *fakeLLM) CategorizeTransaction(context.Context, string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func TestCategorizeKeywords(t *testing.T) {
	svc := NewCategoryService(nil, zaptest.NewLogger(t))

	tests := []struct {
		text string
		want string
	}{
		{"INR 250 paid via UPI to Swiggy", models.SpendingFoodDining},
		{"Rs.2000 spent at HP petrol pump", models.SpendingFuel},
		{"Rs.899 debited for Amazon order", models.SpendingShopping},
		{"Rs.199 paid for Netflix", models.SpendingEntertainment},
		{"ATM withdrawal of Rs.5000", models.SpendingBanking},
		{"Rs.1500 debited from a/c XX123 on UPI, ref 9988", models.SpendingOthers},
		{"Rs.500 credited via IMPS", models.SpendingBanking},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.Categorize(context.Background(), tt.text), tt.text)
	}
}

func TestCategorizeFallsBackToLLM(t *testing.T) {
	llm := &fakeLLM{answer: " \"Healthcare\". "}
	svc := NewCategoryService(llm, zaptest.NewLogger(t))

	assert.Equal(t, models.SpendingHealthcare, svc.Categorize(context.Background(), "Rs.700 paid to XYZ"))
	assert.Equal(t, 1, llm.calls)

	assert.Equal(t, models.SpendingFoodDining, svc.Categorize(context.Background(), "Zomato order"))
	assert.Equal(t, 1, llm.calls, "keywords win before the model is asked")
}

func TestCategorizeLLMFailure(t *testing.T) {
	svc := NewCategoryService(&fakeLLM{err: errBoom}, zaptest.NewLogger(t))
	assert.Equal(t, models.SpendingOthers, svc.Categorize(context.Background(), "Rs.700 paid to XYZ"))
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, models.SpendingBanking, normalizeCategory("banking"))
	assert.Equal(t, models.SpendingEducation, normalizeCategory("Category: Education"))
	assert.Equal(t, models.SpendingOthers, normalizeCategory("groceries"))
}
