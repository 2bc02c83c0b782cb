package models

const (
	PayoffStrategyAvalanche = "avalanche"
	PayoffStrategySnowball  = "snowball"

	RiskLevelLow      = "low"
	RiskLevelModerate = "moderate"
	RiskLevelHigh     = "high"
	RiskLevelCritical = "critical"
)

// DebtAnalysis is the structured output of the debt reasoning agent
type DebtAnalysis struct {
	TotalDebt                    float64  `json:"total_debt"`
	AverageInterestRate          float64  `json:"average_interest_rate"`
	PayoffStrategy               string   `json:"payoff_strategy"`
	PayoffOrder                  []string `json:"payoff_order"`
	MonthlyPaymentRecommendation float64  `json:"monthly_payment_recommendation"`
	DebtFreeDateEstimate         string   `json:"debt_free_date_estimate"`
	Reasoning                    string   `json:"reasoning"`
}

// SavingsStrategy is the structured output of the savings reasoning agent
type SavingsStrategy struct {
	MonthlySavingsTarget float64  `json:"monthly_savings_target"`
	SavingsRateTarget    float64  `json:"savings_rate_target"`
	EmergencyFundTarget  float64  `json:"emergency_fund_target"`
	EmergencyFundMonths  int      `json:"emergency_fund_months"`
	Recommendations      []string `json:"recommendations"`
	Reasoning            string   `json:"reasoning"`
}

// BudgetPlan is the structured output of the budget reasoning agent
type BudgetPlan struct {
	BudgetAllocations  map[string]float64 `json:"budget_allocations"`
	CutRecommendations []string           `json:"cut_recommendations"`
	ProjectedSavings   float64            `json:"projected_savings"`
	Reasoning          string             `json:"reasoning"`
}

// RiskAssessment is the structured output of the risk reasoning agent.
// RiskScore is on a 0-100 scale, higher meaning more fragile.
type RiskAssessment struct {
	RiskScore         float64  `json:"risk_score"`
	RiskLevel         string   `json:"risk_level"`
	RiskFactors       []string `json:"risk_factors"`
	ProtectiveFactors []string `json:"protective_factors"`
	Reasoning         string   `json:"reasoning"`
}

// TotalBudgetAllocation sums the per-category allocations
func (b *BudgetPlan) TotalBudgetAllocation() float64 {
	total := 0.0
	for _, amount := range b.BudgetAllocations {
		total += amount
	}
	return total
}

// AgentOutputs bundles the four perspectives of one assessment run.
// A nil member means that agent failed and its fallback was not recorded.
type AgentOutputs struct {
	Debt    *DebtAnalysis    `json:"debt_analysis,omitempty"`
	Savings *SavingsStrategy `json:"savings_strategy,omitempty"`
	Budget  *BudgetPlan      `json:"budget_plan,omitempty"`
	Risk    *RiskAssessment  `json:"risk_assessment,omitempty"`
}
