package services

import (
	"fmt"
	"log/slog"
	"math"

	"fincoach/internal/models"

	"github.com/shopspring/decimal"
)

const (
	// Minimum transactions for a meaningful analysis
	minTransactions = 5
	// Debt-to-income ratio above this is flagged, never rejected
	maxDTIRatio = 200.0
	// Smallest income considered present
	minIncome = 0.01

	currencyEpsilon    = 0.01
	savingsRateEpsilon = 0.1
)

// Unusually large single transactions are logged, not flagged
var largeTransactionThreshold = decimal.NewFromInt(100000)

type validationEngine struct {
	logger *slog.Logger
}

// NewValidationEngine creates a new ValidationEngineInterface instance.
// Every check is advisory: findings are collected and logged but the
// pipeline never aborts on them.
func NewValidationEngine(logger *slog.Logger) ValidationEngineInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &validationEngine{logger: logger}
}

// ValidateTransactions checks structural completeness of the ledger and
// runs a heuristic duplicate detector
func (v *validationEngine) ValidateTransactions(txns []models.CategorizedTransaction) models.ValidationResult {
	var errs []string

	if len(txns) == 0 {
		return v.finish("transactions", []string{"No transactions found"})
	}
	if len(txns) < minTransactions {
		errs = append(errs, fmt.Sprintf("Insufficient transactions: %d (minimum: %d)", len(txns), minTransactions))
	}

	for i, txn := range txns {
		if txn.Date.IsZero() {
			errs = append(errs, fmt.Sprintf("Transaction %d: Missing date", i))
		}
		if txn.Description == "" {
			errs = append(errs, fmt.Sprintf("Transaction %d: Missing description", i))
		}
		if txn.Amount.IsZero() {
			errs = append(errs, fmt.Sprintf("Transaction %d: Missing amount", i))
		}
		if txn.Category == "" {
			errs = append(errs, fmt.Sprintf("Transaction %d: Missing category", i))
		}
	}

	errs = append(errs, v.checkDuplicates(txns)...)

	return v.finish("transactions", errs)
}

// checkDuplicates hashes (date, amount, description prefix) and flags when
// more than 10% of the ledger collides. Heuristic, not exact dedup.
func (v *validationEngine) checkDuplicates(txns []models.CategorizedTransaction) []string {
	seen := make(map[string]bool)
	duplicates := 0

	for _, txn := range txns {
		desc := txn.Description
		if len(desc) > 20 {
			desc = desc[:20]
		}
		hash := fmt.Sprintf("%s_%s_%s", txn.Date.Format("2006-01-02"), txn.Amount.String(), desc)
		if seen[hash] {
			duplicates++
		}
		seen[hash] = true

		if txn.AbsAmount().GreaterThan(largeTransactionThreshold) {
			v.logger.Warn("unusually large transaction",
				"amount", txn.AbsAmount(),
				"description", txn.Description)
		}
	}

	if float64(duplicates) > float64(len(txns))*0.1 {
		return []string{fmt.Sprintf("High number of potential duplicate transactions: %d", duplicates)}
	}
	return nil
}

// ValidateFinancialState checks the aggregate record for presence and
// plausibility of its key fields
func (v *validationEngine) ValidateFinancialState(metrics *models.FinancialMetrics, dtiRatio float64) models.ValidationResult {
	if metrics == nil {
		return v.finish("financial state", []string{"Missing financial metrics"})
	}

	var errs []string

	income, _ := metrics.TotalIncome.Float64()
	if income < minIncome {
		errs = append(errs, fmt.Sprintf("Income too low or missing: $%.2f", income))
	}

	expenses, _ := metrics.TotalExpenses.Float64()
	if expenses < 0 {
		errs = append(errs, fmt.Sprintf("Expenses cannot be negative: $%.2f", expenses))
	}

	if income > 0 && expenses > 0 {
		cashFlow, _ := metrics.NetCashFlow.Float64()
		calculated := income - expenses
		if math.Abs(cashFlow-calculated) > currencyEpsilon {
			errs = append(errs, fmt.Sprintf("Cash flow mismatch: stated=%.2f, calculated=%.2f", cashFlow, calculated))
		}
	}

	if metrics.SavingsRate < -100 || metrics.SavingsRate > 100 {
		errs = append(errs, fmt.Sprintf("Savings rate out of range: %.1f%%", metrics.SavingsRate))
	}

	if dtiRatio > maxDTIRatio {
		errs = append(errs, fmt.Sprintf("Debt-to-income ratio extremely high: %.1f%%", dtiRatio))
	}

	return v.finish("financial state", errs)
}

// ValidateMathematicalConsistency re-derives cash flow, the expense-type
// breakdown and the savings rate from the stated aggregates
func (v *validationEngine) ValidateMathematicalConsistency(metrics *models.FinancialMetrics) models.ValidationResult {
	if metrics == nil {
		return v.finish("mathematical consistency", []string{"Missing financial metrics"})
	}

	var errs []string

	income, _ := metrics.TotalIncome.Float64()
	expenses, _ := metrics.TotalExpenses.Float64()
	cashFlow, _ := metrics.NetCashFlow.Float64()

	if math.Abs(cashFlow-(income-expenses)) > currencyEpsilon {
		errs = append(errs, fmt.Sprintf("Cash flow mismatch: %.2f != %.2f - %.2f", cashFlow, income, expenses))
	}

	breakdown, _ := metrics.FixedExpenses.
		Add(metrics.VariableExpenses).
		Add(metrics.DiscretionaryExpenses).
		Float64()
	if math.Abs(breakdown-expenses) > currencyEpsilon {
		errs = append(errs, fmt.Sprintf("Expense breakdown mismatch: %.2f != %.2f", breakdown, expenses))
	}

	if income > 0 {
		calculatedRate := (income - expenses) / income * 100
		if math.Abs(calculatedRate-metrics.SavingsRate) > savingsRateEpsilon {
			errs = append(errs, fmt.Sprintf("Savings rate mismatch: %.1f%% != %.1f%%", metrics.SavingsRate, calculatedRate))
		}
	}

	return v.finish("mathematical consistency", errs)
}

// ValidateAgentOutputs checks each reasoning output for required content
// and range sanity
func (v *validationEngine) ValidateAgentOutputs(outputs models.AgentOutputs) models.ValidationResult {
	var errs []string

	if outputs.Debt == nil {
		errs = append(errs, "debt_analyzer: Missing output")
	} else {
		if outputs.Debt.PayoffStrategy == "" {
			errs = append(errs, "debt_analyzer: Field 'payoff_strategy' is empty")
		}
		if outputs.Debt.Reasoning == "" {
			errs = append(errs, "debt_analyzer: Field 'reasoning' is empty")
		}
	}

	if outputs.Savings == nil {
		errs = append(errs, "savings_strategist: Missing output")
	} else if len(outputs.Savings.Recommendations) == 0 {
		errs = append(errs, "savings_strategist: Field 'recommendations' is empty")
	}

	if outputs.Budget == nil {
		errs = append(errs, "budget_optimizer: Missing output")
	} else if len(outputs.Budget.BudgetAllocations) == 0 {
		errs = append(errs, "budget_optimizer: Field 'budget_allocations' is empty")
	}

	if outputs.Risk == nil {
		errs = append(errs, "risk_scorer: Missing output")
	} else {
		if outputs.Risk.RiskScore < 0 || outputs.Risk.RiskScore > 100 {
			errs = append(errs, fmt.Sprintf("risk_scorer: Risk score out of range: %.1f", outputs.Risk.RiskScore))
		}
		if outputs.Risk.RiskLevel == "" {
			errs = append(errs, "risk_scorer: Field 'risk_level' is empty")
		}
	}

	return v.finish("agent outputs", errs)
}

// DetectConflicts cross-checks the reasoning outputs against each other
// and against the metrics they were derived from
func (v *validationEngine) DetectConflicts(metrics *models.FinancialMetrics, outputs models.AgentOutputs) []string {
	var conflicts []string
	if metrics == nil {
		return conflicts
	}

	cashFlow, _ := metrics.NetCashFlow.Float64()
	income, _ := metrics.TotalIncome.Float64()

	savingsTarget := 0.0
	if outputs.Savings != nil {
		savingsTarget = outputs.Savings.MonthlySavingsTarget
	}
	debtPayment := 0.0
	if outputs.Debt != nil {
		debtPayment = outputs.Debt.MonthlyPaymentRecommendation
	}

	if savingsTarget > 0 && cashFlow > 0 && savingsTarget > cashFlow {
		conflicts = append(conflicts, fmt.Sprintf(
			"Conflict: savings target $%.2f/month exceeds net cash flow $%.2f", savingsTarget, cashFlow))
	}

	if savingsTarget > 0 && debtPayment > 0 && cashFlow > 0 {
		combined := savingsTarget + debtPayment
		if combined > cashFlow {
			conflicts = append(conflicts, fmt.Sprintf(
				"Conflict: combined debt + savings ($%.2f) exceeds net cash flow ($%.2f)", combined, cashFlow))
		}
	}

	if outputs.Budget != nil && income > 0 {
		if total := outputs.Budget.TotalBudgetAllocation(); total > income {
			conflicts = append(conflicts, fmt.Sprintf(
				"Conflict: budget allocations ($%.2f) exceed income ($%.2f)", total, income))
		}
	}

	if len(conflicts) > 0 {
		v.logger.Warn("detected conflicts between agent outputs", "count", len(conflicts))
	}
	return conflicts
}

func (v *validationEngine) finish(check string, errs []string) models.ValidationResult {
	if len(errs) == 0 {
		v.logger.Info("validation passed", "check", check)
		return models.ValidationResult{IsValid: true, Errors: []string{}}
	}
	v.logger.Warn("validation failed", "check", check, "errors", len(errs))
	return models.ValidationResult{IsValid: false, Errors: errs}
}
