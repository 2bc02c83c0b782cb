package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fincoach/internal/models"
)

const riskSystemPrompt = `You are a financial risk assessment expert who evaluates overall financial health.

Your expertise includes:
- Debt-to-income ratio analysis
- Emergency fund adequacy
- Cash flow stability and spending volatility
- Credit utilization risks

Scoring framework (0-100, higher is riskier):
- 0-39: low risk, strong financial position
- 40-59: moderate risk, generally healthy with areas to improve
- 60-79: high risk, significant vulnerabilities present
- 80-100: critical risk, immediate action required

Key risk factors:
- DTI above 40% (critical above 50%)
- Negative cash flow
- High credit utilization (above 30%)
- High spending volatility
- High-interest debt (APR above 15%)

Respond with a single JSON object with exactly these fields:
{"risk_score": number 0-100, "risk_level": "low"|"moderate"|"high"|"critical", "risk_factors": [strings], "protective_factors": [strings], "reasoning": string}`

// RiskScorer produces the overall financial-health risk assessment
type RiskScorer struct {
	client LLMClient
	logger *slog.Logger
	retry  RetryConfig
}

// NewRiskScorer creates a risk scoring agent
func NewRiskScorer(client LLMClient, logger *slog.Logger) *RiskScorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RiskScorer{client: client, logger: logger, retry: DefaultRetryConfig}
}

// Analyze runs one completion over the full snapshot
func (a *RiskScorer) Analyze(ctx context.Context, in Input) (*models.RiskAssessment, error) {
	if a.client == nil {
		return nil, ErrNoClient
	}
	raw, err := WithRetry(ctx, a.retry, func(ctx context.Context) (string, error) {
		return a.client.Complete(ctx, riskSystemPrompt, a.buildPrompt(in))
	})
	if err != nil {
		return nil, fmt.Errorf("risk scoring completion: %w", err)
	}

	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("risk scoring response: %w", err)
	}

	var out models.RiskAssessment
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("decoding risk assessment: %w", err)
	}
	if out.RiskScore < 0 {
		out.RiskScore = 0
	}
	if out.RiskScore > 100 {
		out.RiskScore = 100
	}
	return &out, nil
}

func (a *RiskScorer) buildPrompt(in Input) string {
	m := in.metricsOrZero()
	return fmt.Sprintf(`Assess the overall financial risk for this user:

CORE METRICS:
- Monthly Income: %s
- Monthly Expenses: %s
- Net Cash Flow: %s
- Savings Rate: %.1f%%
- Debt-to-Income Ratio: %.1f%%
- Spending Volatility: %.2f
- Monthly Debt Payments: %s

DEBT ACCOUNTS:
%s

REQUIRED ANALYSIS:
1. Score each dimension: debt load, savings adequacy, cash flow stability, liquidity
2. Produce a weighted overall risk score on the 0-100 scale (higher is riskier)
3. Name the risk level: low, moderate, high or critical
4. List specific risk factors and protective factors`,
		formatMoney(m.TotalIncome),
		formatMoney(m.TotalExpenses),
		formatMoney(m.NetCashFlow),
		m.SavingsRate,
		in.DebtToIncomeRatio,
		m.SpendingVolatility,
		formatMoney(m.TotalDebtPayments),
		formatDebtAccounts(in.DebtAccounts))
}

// Fallback scores from the two strongest deterministic signals, cash flow
// and DTI, when the model call fails
func (a *RiskScorer) Fallback(in Input) *models.RiskAssessment {
	m := in.metricsOrZero()

	score := 30.0
	var factors []string
	var protective []string

	if m.NetCashFlow.IsNegative() {
		score += 30
		factors = append(factors, "Negative monthly cash flow")
	} else {
		protective = append(protective, "Positive monthly cash flow")
	}

	switch {
	case in.DebtToIncomeRatio > 50:
		score += 30
		factors = append(factors, fmt.Sprintf("Debt-to-income ratio %.1f%% is critical", in.DebtToIncomeRatio))
	case in.DebtToIncomeRatio > 40:
		score += 15
		factors = append(factors, fmt.Sprintf("Debt-to-income ratio %.1f%% is elevated", in.DebtToIncomeRatio))
	default:
		protective = append(protective, "Debt-to-income ratio within a manageable range")
	}

	if score > 100 {
		score = 100
	}

	level := models.RiskLevelLow
	switch {
	case score >= 80:
		level = models.RiskLevelCritical
	case score >= 60:
		level = models.RiskLevelHigh
	case score >= 40:
		level = models.RiskLevelModerate
	}

	return &models.RiskAssessment{
		RiskScore:         score,
		RiskLevel:         level,
		RiskFactors:       factors,
		ProtectiveFactors: protective,
		Reasoning:         "Scored from cash flow and debt-to-income ratio; model assistance was unavailable.",
	}
}
