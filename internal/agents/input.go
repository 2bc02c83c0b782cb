package agents

import (
	"fmt"
	"strings"

	"fincoach/internal/models"

	"github.com/shopspring/decimal"
)

// Input is the validated snapshot the reasoning agents consume. Amounts in
// the metrics record are positive magnitudes; per-transaction amounts keep
// their sign.
type Input struct {
	AnalysisID        string
	Transactions      []models.CategorizedTransaction
	DebtAccounts      []models.DebtAccount
	Metrics           *models.FinancialMetrics
	DebtToIncomeRatio float64
}

func (in Input) metricsOrZero() models.FinancialMetrics {
	if in.Metrics == nil {
		return models.FinancialMetrics{}
	}
	return *in.Metrics
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.Round(2).StringFixed(2)
}

func formatDebtAccounts(debts []models.DebtAccount) string {
	if len(debts) == 0 {
		return "No debt accounts on record."
	}
	var b strings.Builder
	for i, debt := range debts {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, debt.AccountType, debt.AccountID)
		fmt.Fprintf(&b, "   Balance: %s\n", formatMoney(debt.Balance))
		fmt.Fprintf(&b, "   Credit Limit: %s (utilization %.1f%%)\n", formatMoney(debt.CreditLimit), debt.UtilizationRate())
		fmt.Fprintf(&b, "   APR: %.1f%%\n", debt.APR)
		fmt.Fprintf(&b, "   Minimum Payment: %s\n", formatMoney(debt.MinimumPayment))
		fmt.Fprintf(&b, "   Monthly Payment: %s\n", formatMoney(debt.MonthlyPayment))
		if i < len(debts)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatExpenseBreakdown lists the largest categories, at most eight
func formatExpenseBreakdown(breakdown []models.CategoryTotal) string {
	if len(breakdown) == 0 {
		return "- No expense breakdown available"
	}
	var lines []string
	for i, ct := range breakdown {
		if i == 8 {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", ct.Category, formatMoney(ct.Amount)))
	}
	return strings.Join(lines, "\n")
}
