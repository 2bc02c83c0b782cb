package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"fincoach/internal/models"

	"github.com/shopspring/decimal"
)

const debtSystemPrompt = `You are a debt analysis expert who helps people understand and pay off their debts efficiently.

Your expertise includes:
- Analyzing credit cards, loans, and other debt accounts
- Recommending optimal payoff strategies (Avalanche vs Snowball method)
- Calculating payoff timelines and total interest costs

Key principles:
- Avalanche method: pay highest APR first (saves most money)
- Snowball method: pay smallest balance first (psychological wins)
- High-interest debt (APR > 15%) is priority
- Always provide realistic timelines based on income and expenses

Respond with a single JSON object with exactly these fields:
{"total_debt": number, "average_interest_rate": number, "payoff_strategy": "avalanche"|"snowball", "payoff_order": [account ids], "monthly_payment_recommendation": number, "debt_free_date_estimate": string, "reasoning": string}`

// DebtAnalyzer recommends a payoff strategy over the debt accounts
type DebtAnalyzer struct {
	client LLMClient
	logger *slog.Logger
	retry  RetryConfig
}

// NewDebtAnalyzer creates a debt analysis agent
func NewDebtAnalyzer(client LLMClient, logger *slog.Logger) *DebtAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebtAnalyzer{client: client, logger: logger, retry: DefaultRetryConfig}
}

// Analyze runs one completion over the debt snapshot
func (a *DebtAnalyzer) Analyze(ctx context.Context, in Input) (*models.DebtAnalysis, error) {
	if a.client == nil {
		return nil, ErrNoClient
	}
	raw, err := WithRetry(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.client.Complete(ctx, debtSystemPrompt, a.buildPrompt(in))
	})
	if err != nil {
		return nil, fmt.Errorf("debt analysis completion: %w", err)
	}

	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("debt analysis response: %w", err)
	}

	var out models.DebtAnalysis
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("decoding debt analysis: %w", err)
	}
	return &out, nil
}

func (a *DebtAnalyzer) buildPrompt(in Input) string {
	m := in.metricsOrZero()
	if len(in.DebtAccounts) == 0 {
		return "User has no debt accounts.\n\nProvide a brief positive message and recommend building an emergency fund."
	}
	return fmt.Sprintf(`Analyze the following debt situation and create a payoff strategy:

DEBT ACCOUNTS:
%s

FINANCIAL OVERVIEW:
- Monthly Income: %s
- Monthly Expenses: %s
- Net Income (available for debt): %s
- Debt-to-Income Ratio: %.1f%%

REQUIRED ANALYSIS:
1. Calculate total debt and identify high-interest debt (APR > 15%%)
2. Determine the optimal payoff strategy (avalanche or snowball)
3. List account ids in priority order
4. Recommend a monthly payment amount the net income supports
5. Estimate a debt-free date assuming consistent payments`,
		formatDebtAccounts(in.DebtAccounts),
		formatMoney(m.TotalIncome),
		formatMoney(m.TotalExpenses),
		formatMoney(m.NetCashFlow),
		in.DebtToIncomeRatio)
}

// Fallback derives a deterministic avalanche plan when the model call
// fails, so the pipeline still returns a complete assessment
func (a *DebtAnalyzer) Fallback(in Input) *models.DebtAnalysis {
	totalDebt := decimal.Zero
	totalPayments := decimal.Zero
	aprSum := 0.0
	order := make([]string, 0, len(in.DebtAccounts))

	accounts := append([]models.DebtAccount{}, in.DebtAccounts...)
	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].APR > accounts[j].APR })

	for _, debt := range accounts {
		totalDebt = totalDebt.Add(debt.Balance)
		totalPayments = totalPayments.Add(debt.MonthlyPayment)
		aprSum += debt.APR
		order = append(order, debt.AccountID)
	}

	avgAPR := 0.0
	if len(accounts) > 0 {
		avgAPR = aprSum / float64(len(accounts))
	}

	total, _ := totalDebt.Round(2).Float64()
	payment, _ := totalPayments.Round(2).Float64()

	return &models.DebtAnalysis{
		TotalDebt:                    total,
		AverageInterestRate:          avgAPR,
		PayoffStrategy:               models.PayoffStrategyAvalanche,
		PayoffOrder:                  order,
		MonthlyPaymentRecommendation: payment,
		DebtFreeDateEstimate:         "unknown",
		Reasoning:                    "Computed from account balances ordered by APR; model assistance was unavailable.",
	}
}
