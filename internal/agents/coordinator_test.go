package agents

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"fincoach/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// stubClient answers each agent with a canned response keyed off its
// system prompt
type stubClient struct {
	calls     atomic.Int32
	err       error
	responses map[string]string
}

func (c *stubClient) Complete(_ context.Context, systemPrompt, _ string) (string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return "", c.err
	}
	for key, response := range c.responses {
		if strings.Contains(systemPrompt, key) {
			return response, nil
		}
	}
	return "", errors.New("no canned response for prompt")
}

func healthyResponses() map[string]string {
	return map[string]string{
		"debt analysis":       `{"total_debt": 650.00, "average_interest_rate": 18.0, "payoff_strategy": "avalanche", "payoff_order": ["cc_estimated"], "monthly_payment_recommendation": 130.00, "debt_free_date_estimate": "2024-12", "reasoning": "pay highest APR first"}`,
		"savings strategy":    `{"monthly_savings_target": 400.00, "savings_rate_target": 20.0, "emergency_fund_target": 12000.00, "emergency_fund_months": 6, "recommendations": ["automate transfers"], "reasoning": "steady surplus"}`,
		"budget optimization": `{"budget_allocations": {"Housing": 1800.00, "Food & Dining": 350.00}, "cut_recommendations": ["trim dining out by $50"], "projected_savings": 50.00, "reasoning": "small easy wins"}`,
		"risk assessment":     `{"risk_score": 35.0, "risk_level": "low", "risk_factors": [], "protective_factors": ["positive cash flow"], "reasoning": "healthy position"}`,
	}
}

type CoordinatorTestSuite struct {
	suite.Suite
	input Input
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

func (s *CoordinatorTestSuite) SetupTest() {
	s.input = Input{
		AnalysisID: "test-analysis",
		DebtAccounts: []models.DebtAccount{{
			AccountID:      models.DebtAccountEstimatedID,
			AccountType:    models.DebtAccountTypeCreditCard,
			Balance:        decimal.NewFromFloat(650.00),
			CreditLimit:    decimal.NewFromFloat(1950.00),
			APR:            18.0,
			MinimumPayment: decimal.NewFromFloat(19.50),
			MonthlyPayment: decimal.NewFromFloat(39.00),
		}},
		Metrics: &models.FinancialMetrics{
			TotalIncome:   decimal.NewFromFloat(6200.00),
			TotalExpenses: decimal.NewFromFloat(2150.00),
			NetCashFlow:   decimal.NewFromFloat(4050.00),
			SavingsRate:   65.32,
			ExpensesByCategory: []models.CategoryTotal{
				{Category: "Housing", Amount: decimal.NewFromFloat(1800.00)},
				{Category: "Food & Dining", Amount: decimal.NewFromFloat(350.00)},
			},
		},
		DebtToIncomeRatio: 0.63,
	}
}

func (s *CoordinatorTestSuite) TestRunAll_AllAgentsSucceed() {
	client := &stubClient{responses: healthyResponses()}
	coordinator := NewCoordinator(client, nil)

	outputs := coordinator.RunAll(context.Background(), s.input)

	s.Require().NotNil(outputs.Debt)
	s.Require().NotNil(outputs.Savings)
	s.Require().NotNil(outputs.Budget)
	s.Require().NotNil(outputs.Risk)

	s.Equal(models.PayoffStrategyAvalanche, outputs.Debt.PayoffStrategy)
	s.Equal([]string{"cc_estimated"}, outputs.Debt.PayoffOrder)
	s.InDelta(400.00, outputs.Savings.MonthlySavingsTarget, 0.001)
	s.InDelta(1800.00, outputs.Budget.BudgetAllocations["Housing"], 0.001)
	s.Equal(models.RiskLevelLow, outputs.Risk.RiskLevel)
	s.Equal(int32(4), client.calls.Load())
}

func (s *CoordinatorTestSuite) TestRunAll_NoClientUsesFallbacks() {
	coordinator := NewCoordinator(nil, nil)

	outputs := coordinator.RunAll(context.Background(), s.input)

	s.Require().NotNil(outputs.Debt)
	s.Require().NotNil(outputs.Savings)
	s.Require().NotNil(outputs.Budget)
	s.Require().NotNil(outputs.Risk)

	s.Contains(outputs.Debt.Reasoning, "model assistance was unavailable")
	s.Contains(outputs.Savings.Reasoning, "model assistance was unavailable")
	s.Contains(outputs.Budget.Reasoning, "model assistance was unavailable")
	s.Contains(outputs.Risk.Reasoning, "model assistance was unavailable")
}

func (s *CoordinatorTestSuite) TestRunAll_FailingClientUsesFallbacks() {
	client := &stubClient{err: &CompletionError{StatusCode: 401}}
	coordinator := NewCoordinator(client, nil)

	outputs := coordinator.RunAll(context.Background(), s.input)

	// Deterministic fallbacks derived from the snapshot
	s.Require().NotNil(outputs.Debt)
	s.InDelta(650.00, outputs.Debt.TotalDebt, 0.001)
	s.Equal(models.PayoffStrategyAvalanche, outputs.Debt.PayoffStrategy)
	s.Equal([]string{models.DebtAccountEstimatedID}, outputs.Debt.PayoffOrder)

	s.Require().NotNil(outputs.Savings)
	s.InDelta(2025.00, outputs.Savings.MonthlySavingsTarget, 0.001, "half the positive cash flow")
	s.Equal(6, outputs.Savings.EmergencyFundMonths)

	s.Require().NotNil(outputs.Budget)
	s.InDelta(1800.00, outputs.Budget.BudgetAllocations["Housing"], 0.001)
	s.Zero(outputs.Budget.ProjectedSavings)

	s.Require().NotNil(outputs.Risk)
	s.Equal(models.RiskLevelLow, outputs.Risk.RiskLevel)
	s.Contains(outputs.Risk.ProtectiveFactors, "Positive monthly cash flow")
}

func (s *CoordinatorTestSuite) TestRunAll_RiskFallbackEscalates() {
	s.input.Metrics.NetCashFlow = decimal.NewFromFloat(-500.00)
	s.input.DebtToIncomeRatio = 62.0

	coordinator := NewCoordinator(nil, nil)
	outputs := coordinator.RunAll(context.Background(), s.input)

	s.Require().NotNil(outputs.Risk)
	s.InDelta(90.0, outputs.Risk.RiskScore, 0.001)
	s.Equal(models.RiskLevelCritical, outputs.Risk.RiskLevel)
	s.Len(outputs.Risk.RiskFactors, 2)
}

func (s *CoordinatorTestSuite) TestDebtAnalyzer_ParsesWrappedResponse() {
	client := &stubClient{responses: map[string]string{
		"debt analysis": "Here you go:\n```json\n{\"total_debt\": 100, \"payoff_strategy\": \"snowball\", \"reasoning\": \"small wins\"}\n```",
	}}
	agent := NewDebtAnalyzer(client, nil)

	out, err := agent.Analyze(context.Background(), s.input)

	s.Require().NoError(err)
	s.Equal(models.PayoffStrategySnowball, out.PayoffStrategy)
	s.InDelta(100.0, out.TotalDebt, 0.001)
}

func (s *CoordinatorTestSuite) TestDebtAnalyzer_NilClient() {
	agent := NewDebtAnalyzer(nil, nil)

	_, err := agent.Analyze(context.Background(), s.input)
	s.ErrorIs(err, ErrNoClient)
}

func (s *CoordinatorTestSuite) TestRiskScorer_ClampsScore() {
	client := &stubClient{responses: map[string]string{
		"risk assessment": `{"risk_score": 240, "risk_level": "critical", "reasoning": "overflow"}`,
	}}
	agent := NewRiskScorer(client, nil)

	out, err := agent.Analyze(context.Background(), s.input)

	s.Require().NoError(err)
	s.Equal(100.0, out.RiskScore)
}

func (s *CoordinatorTestSuite) TestSavingsFallback_NegativeCashFlow() {
	s.input.Metrics.NetCashFlow = decimal.NewFromFloat(-200.00)

	agent := NewSavingsStrategist(nil, nil)
	out := agent.Fallback(s.input)

	s.Zero(out.MonthlySavingsTarget, "no savings target when overspending")
	s.NotEmpty(out.Recommendations)
}
