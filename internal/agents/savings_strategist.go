package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fincoach/internal/models"

	"github.com/shopspring/decimal"
)

const savingsSystemPrompt = `You are a savings strategy expert who helps people build emergency funds and achieve financial security.

Your expertise includes:
- Emergency fund planning (3-6 months of expenses)
- Calculating realistic savings capacity
- Creating achievable savings goals

Key principles:
- Emergency fund is top priority (3-6 months of expenses)
- Automate savings for consistency
- If the user has high-interest debt, balance debt payoff with the emergency fund
- Minimum $1,000 emergency fund even while paying debt
- Be realistic about savings capacity

Respond with a single JSON object with exactly these fields:
{"monthly_savings_target": number, "savings_rate_target": number, "emergency_fund_target": number, "emergency_fund_months": integer, "recommendations": [strings], "reasoning": string}`

// SavingsStrategist plans emergency-fund and savings targets
type SavingsStrategist struct {
	client LLMClient
	logger *slog.Logger
	retry  RetryConfig
}

// NewSavingsStrategist creates a savings strategy agent
func NewSavingsStrategist(client LLMClient, logger *slog.Logger) *SavingsStrategist {
	if logger == nil {
		logger = slog.Default()
	}
	return &SavingsStrategist{client: client, logger: logger, retry: DefaultRetryConfig}
}

// Analyze runs one completion over the savings snapshot
func (a *SavingsStrategist) Analyze(ctx context.Context, in Input) (*models.SavingsStrategy, error) {
	if a.client == nil {
		return nil, ErrNoClient
	}
	raw, err := WithRetry(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.client.Complete(ctx, savingsSystemPrompt, a.buildPrompt(in))
	})
	if err != nil {
		return nil, fmt.Errorf("savings strategy completion: %w", err)
	}

	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("savings strategy response: %w", err)
	}

	var out models.SavingsStrategy
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("decoding savings strategy: %w", err)
	}
	return &out, nil
}

func (a *SavingsStrategist) buildPrompt(in Input) string {
	m := in.metricsOrZero()
	emergencyTarget := m.TotalExpenses.Mul(decimal.NewFromInt(6))

	hasHighInterestDebt := "No"
	for _, debt := range in.DebtAccounts {
		if debt.APR > 15 {
			hasHighInterestDebt = "Yes"
			break
		}
	}

	return fmt.Sprintf(`Create a comprehensive savings strategy for this user:

FINANCIAL OVERVIEW:
- Monthly Income: %s
- Monthly Expenses: %s
- Net Cash Flow: %s
- Current Savings Rate: %.1f%%

EMERGENCY FUND TARGET:
- Recommended: %s (6 months of expenses)

EXPENSE BREAKDOWN:
%s

DEBT SITUATION:
- High-interest debt present: %s

REQUIRED ANALYSIS:
1. Calculate a realistic monthly savings target
2. Set a savings rate target as a percentage of income
3. Set the emergency fund target and the months it covers
4. Provide 3-5 specific recommendations including automation strategies`,
		formatMoney(m.TotalIncome),
		formatMoney(m.TotalExpenses),
		formatMoney(m.NetCashFlow),
		m.SavingsRate,
		formatMoney(emergencyTarget),
		formatExpenseBreakdown(m.ExpensesByCategory),
		hasHighInterestDebt)
}

// Fallback derives a conservative plan from the cash flow when the model
// call fails
func (a *SavingsStrategist) Fallback(in Input) *models.SavingsStrategy {
	m := in.metricsOrZero()

	// Half of the positive cash flow, never negative
	target := m.NetCashFlow.Div(decimal.NewFromInt(2))
	if target.IsNegative() {
		target = decimal.Zero
	}
	monthlyTarget, _ := target.Round(2).Float64()

	emergencyTarget, _ := m.TotalExpenses.Mul(decimal.NewFromInt(6)).Round(2).Float64()

	return &models.SavingsStrategy{
		MonthlySavingsTarget: monthlyTarget,
		SavingsRateTarget:    20,
		EmergencyFundTarget:  emergencyTarget,
		EmergencyFundMonths:  6,
		Recommendations: []string{
			"Build an emergency fund covering six months of expenses",
			"Automate a fixed transfer to savings on payday",
			"Review recurring subscriptions for easy cuts",
		},
		Reasoning: "Derived from net cash flow; model assistance was unavailable.",
	}
}
