package models

import "github.com/shopspring/decimal"

// CategoryTotal is one entry of the per-category expense breakdown,
// ordered largest first.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Subscription is a recurring charge detected from repeated near-constant
// amounts under the same description.
type Subscription struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Frequency   int             `json:"frequency"`
}

// FinancialMetrics is the flat aggregate record the reasoning layer consumes.
// All currency fields are positive magnitudes rounded to 2 decimal places;
// ratios are percentages unless named _ratio.
type FinancialMetrics struct {
	TotalIncome            decimal.Decimal `json:"total_income"`
	TotalExpenses          decimal.Decimal `json:"total_expenses"`
	NetCashFlow            decimal.Decimal `json:"net_cash_flow"`
	SavingsRate            float64         `json:"savings_rate"`
	ExpenseToIncomeRatio   float64         `json:"expense_to_income_ratio"`
	DiscretionaryRatio     float64         `json:"discretionary_ratio"`
	SpendingVolatility     float64         `json:"spending_volatility"`
	ExpensesByCategory     []CategoryTotal `json:"expenses_by_category"`
	FixedExpenses          decimal.Decimal `json:"fixed_expenses"`
	VariableExpenses       decimal.Decimal `json:"variable_expenses"`
	DiscretionaryExpenses  decimal.Decimal `json:"discretionary_expenses"`
	RecurringSubscriptions []Subscription  `json:"recurring_subscriptions"`
	TotalDebtPayments      decimal.Decimal `json:"total_debt_payments"`
	AverageDebtPayment     decimal.Decimal `json:"average_debt_payment"`
	AverageTransaction     decimal.Decimal `json:"average_transaction"`
	TransactionCount       int             `json:"transaction_count"`
}

// CategoryAmount looks up the aggregated expense for one category
func (m *FinancialMetrics) CategoryAmount(category string) decimal.Decimal {
	for _, ct := range m.ExpensesByCategory {
		if ct.Category == category {
			return ct.Amount
		}
	}
	return decimal.Zero
}

// ValidationResult collects the advisory findings of a validation pass.
// It is computed once per pipeline run and never mutated afterwards.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Merge combines two results, preserving error order
func (r ValidationResult) Merge(other ValidationResult) ValidationResult {
	return ValidationResult{
		IsValid: r.IsValid && other.IsValid,
		Errors:  append(append([]string{}, r.Errors...), other.Errors...),
	}
}
