package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fincoach/internal/models"
)

const budgetSystemPrompt = `You are a budget optimization expert who helps people spend wisely and save more.

Your expertise includes:
- Analyzing spending patterns across categories
- Identifying overspending and forgotten subscriptions
- Applying budgeting frameworks (50/30/20 rule)

Key principles:
- 50/30/20 rule: 50% needs, 30% wants, 20% savings/debt
- Look for easy wins first
- Balance optimization with quality of life
- Be specific about what to cut and by how much

Respond with a single JSON object with exactly these fields:
{"budget_allocations": {category: number}, "cut_recommendations": [strings], "projected_savings": number, "reasoning": string}`

// BudgetOptimizer proposes per-category allocations and cuts
type BudgetOptimizer struct {
	client LLMClient
	logger *slog.Logger
	retry  RetryConfig
}

// NewBudgetOptimizer creates a budget optimization agent
func NewBudgetOptimizer(client LLMClient, logger *slog.Logger) *BudgetOptimizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &BudgetOptimizer{client: client, logger: logger, retry: DefaultRetryConfig}
}

// Analyze runs one completion over the spending snapshot
func (a *BudgetOptimizer) Analyze(ctx context.Context, in Input) (*models.BudgetPlan, error) {
	if a.client == nil {
		return nil, ErrNoClient
	}
	raw, err := WithRetry(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.client.Complete(ctx, budgetSystemPrompt, a.buildPrompt(in))
	})
	if err != nil {
		return nil, fmt.Errorf("budget optimization completion: %w", err)
	}

	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("budget optimization response: %w", err)
	}

	var out models.BudgetPlan
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("decoding budget plan: %w", err)
	}
	return &out, nil
}

func (a *BudgetOptimizer) buildPrompt(in Input) string {
	m := in.metricsOrZero()

	subscriptions := "- None detected"
	if len(m.RecurringSubscriptions) > 0 {
		subscriptions = ""
		for i, sub := range m.RecurringSubscriptions {
			if i > 0 {
				subscriptions += "\n"
			}
			subscriptions += fmt.Sprintf("- %s: %s x%d", sub.Description, formatMoney(sub.Amount), sub.Frequency)
		}
	}

	return fmt.Sprintf(`Optimize this user's monthly budget:

FINANCIAL OVERVIEW:
- Monthly Income: %s
- Monthly Expenses: %s
- Fixed Expenses: %s
- Variable Expenses: %s
- Discretionary Expenses: %s (%.1f%% of spending)

SPENDING BY CATEGORY:
%s

RECURRING SUBSCRIPTIONS:
%s

REQUIRED ANALYSIS:
1. Propose a per-category budget allocation that fits within income
2. List specific cuts with dollar amounts, largest impact first
3. Project the monthly savings those cuts produce`,
		formatMoney(m.TotalIncome),
		formatMoney(m.TotalExpenses),
		formatMoney(m.FixedExpenses),
		formatMoney(m.VariableExpenses),
		formatMoney(m.DiscretionaryExpenses),
		m.DiscretionaryRatio,
		formatExpenseBreakdown(m.ExpensesByCategory),
		subscriptions)
}

// Fallback keeps current spending as the allocation when the model call
// fails, with no proposed cuts
func (a *BudgetOptimizer) Fallback(in Input) *models.BudgetPlan {
	m := in.metricsOrZero()

	allocations := make(map[string]float64, len(m.ExpensesByCategory))
	for _, ct := range m.ExpensesByCategory {
		amount, _ := ct.Amount.Float64()
		allocations[ct.Category] = amount
	}

	return &models.BudgetPlan{
		BudgetAllocations:  allocations,
		CutRecommendations: []string{},
		ProjectedSavings:   0,
		Reasoning:          "Current spending kept as the baseline allocation; model assistance was unavailable.",
	}
}
