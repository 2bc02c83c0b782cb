package services

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"fincoach/internal/models"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

type metricsEngine struct {
	logger      *slog.Logger
	categorizer CategorizerServiceInterface
}

// NewMetricsEngine creates a new MetricsEngineInterface instance. The
// categorizer supplies the expense-type lookup for the breakdown sums.
func NewMetricsEngine(logger *slog.Logger, categorizer CategorizerServiceInterface) MetricsEngineInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &metricsEngine{logger: logger, categorizer: categorizer}
}

// CalculateAll aggregates categorized transactions into the metrics record.
// All currency fields are positive magnitudes rounded to 2 decimal places.
func (e *metricsEngine) CalculateAll(txns []models.CategorizedTransaction, monthlyIncome decimal.Decimal) *models.FinancialMetrics {
	e.logger.Info("calculating financial metrics", "transactions", len(txns))

	income := e.totalIncome(txns)
	if monthlyIncome.IsPositive() {
		income = monthlyIncome
	}
	expenses := e.totalExpenses(txns)
	netCashFlow := income.Sub(expenses)

	fixed, variable, discretionary := e.expenseTypeBreakdown(txns)
	debtPayments, avgDebtPayment := e.debtPaymentTotals(txns)

	metrics := &models.FinancialMetrics{
		TotalIncome:            income.Round(2),
		TotalExpenses:          expenses.Round(2),
		NetCashFlow:            netCashFlow.Round(2),
		SavingsRate:            round2(savingsRate(income, expenses)),
		ExpenseToIncomeRatio:   round2(percentageOf(expenses, income)),
		DiscretionaryRatio:     round2(percentageOf(discretionary, fixed.Add(variable).Add(discretionary))),
		SpendingVolatility:     round2(e.spendingVolatility(txns)),
		ExpensesByCategory:     e.categoryBreakdown(txns),
		FixedExpenses:          fixed.Round(2),
		VariableExpenses:       variable.Round(2),
		DiscretionaryExpenses:  discretionary.Round(2),
		RecurringSubscriptions: e.identifyRecurringSubscriptions(txns),
		TotalDebtPayments:      debtPayments.Round(2),
		AverageDebtPayment:     avgDebtPayment.Round(2),
		AverageTransaction:     e.averageTransaction(txns).Round(2),
		TransactionCount:       len(txns),
	}

	e.logger.Info("calculated metrics",
		"income", metrics.TotalIncome,
		"expenses", metrics.TotalExpenses,
		"savings_rate", metrics.SavingsRate)

	return metrics
}

// DebtToIncomeRatio returns monthly debt payments over income as a
// percentage, 0 when income is not positive
func (e *metricsEngine) DebtToIncomeRatio(monthlyDebtPayments, monthlyIncome decimal.Decimal) float64 {
	return percentageOf(monthlyDebtPayments, monthlyIncome)
}

// LiquidityRatio returns months of expenses covered by the current balance,
// 0 when expenses are not positive
func (e *metricsEngine) LiquidityRatio(currentBalance, monthlyExpenses decimal.Decimal) float64 {
	if !monthlyExpenses.IsPositive() {
		return 0
	}
	ratio, _ := currentBalance.Div(monthlyExpenses).Float64()
	return ratio
}

func (e *metricsEngine) totalIncome(txns []models.CategorizedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		if txn.IsIncome() {
			total = total.Add(txn.AbsAmount())
		}
	}
	return total
}

func (e *metricsEngine) totalExpenses(txns []models.CategorizedTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		if txn.IsExpense() {
			total = total.Add(txn.AbsAmount())
		}
	}
	return total
}

// categoryBreakdown sums every non-income debit per category, including
// debt payments and savings transfers, sorted largest first. The sort is
// stable so ties keep first-encounter order.
func (e *metricsEngine) categoryBreakdown(txns []models.CategorizedTransaction) []models.CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	var order []string

	for _, txn := range txns {
		if txn.Category == models.CategoryIncome {
			continue
		}
		if txn.TransactionType != models.TransactionTypeDebit && !txn.Amount.IsNegative() {
			continue
		}
		if _, seen := totals[txn.Category]; !seen {
			order = append(order, txn.Category)
		}
		totals[txn.Category] = totals[txn.Category].Add(txn.AbsAmount())
	}

	breakdown := make([]models.CategoryTotal, 0, len(order))
	for _, category := range order {
		breakdown = append(breakdown, models.CategoryTotal{
			Category: category,
			Amount:   totals[category].Round(2),
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Amount.GreaterThan(breakdown[j].Amount)
	})
	return breakdown
}

// expenseTypeBreakdown re-derives the expense type per transaction over the
// same expense set as totalExpenses, so the three sums always reconcile
// with the total
func (e *metricsEngine) expenseTypeBreakdown(txns []models.CategorizedTransaction) (fixed, variable, discretionary decimal.Decimal) {
	fixed, variable, discretionary = decimal.Zero, decimal.Zero, decimal.Zero
	for _, txn := range txns {
		if !txn.IsExpense() {
			continue
		}
		amount := txn.AbsAmount()
		switch e.categorizer.ClassifyExpenseType(txn.Category) {
		case models.ExpenseTypeFixed:
			fixed = fixed.Add(amount)
		case models.ExpenseTypeDiscretionary:
			discretionary = discretionary.Add(amount)
		default:
			variable = variable.Add(amount)
		}
	}
	return fixed, variable, discretionary
}

// spendingVolatility is the population standard deviation of daily debit
// totals. Fewer than two distinct spending days means no spread to measure.
func (e *metricsEngine) spendingVolatility(txns []models.CategorizedTransaction) float64 {
	daily := make(map[string]decimal.Decimal)
	for _, txn := range txns {
		if txn.TransactionType != models.TransactionTypeDebit && !txn.Amount.IsNegative() {
			continue
		}
		key := txn.Date.Format("2006-01-02")
		daily[key] = daily[key].Add(txn.AbsAmount())
	}

	if len(daily) < 2 {
		return 0
	}

	values := make([]float64, 0, len(daily))
	sum := 0.0
	for _, total := range daily {
		v, _ := total.Float64()
		values = append(values, v)
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

func (e *metricsEngine) averageTransaction(txns []models.CategorizedTransaction) decimal.Decimal {
	total := decimal.Zero
	count := 0
	for _, txn := range txns {
		if txn.TransactionType == models.TransactionTypeDebit || txn.Amount.IsNegative() {
			total = total.Add(txn.AbsAmount())
			count++
		}
	}
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}

func (e *metricsEngine) debtPaymentTotals(txns []models.CategorizedTransaction) (total, average decimal.Decimal) {
	total = decimal.Zero
	count := 0
	for _, txn := range txns {
		if txn.Category == models.CategoryDebtPayments {
			total = total.Add(txn.AbsAmount())
			count++
		}
	}
	if count == 0 {
		return total, decimal.Zero
	}
	return total, total.Div(decimal.NewFromInt(int64(count)))
}

// identifyRecurringSubscriptions groups subscription charges by lower-cased
// description. A group is recurring when it occurs at least twice and every
// amount is within $1.00 of the group mean.
func (e *metricsEngine) identifyRecurringSubscriptions(txns []models.CategorizedTransaction) []models.Subscription {
	amounts := make(map[string][]decimal.Decimal)
	var order []string

	for _, txn := range txns {
		desc := strings.ToLower(strings.TrimSpace(txn.Description))
		if txn.Category != models.CategorySubscriptions || len(desc) < 3 {
			continue
		}
		if _, seen := amounts[desc]; !seen {
			order = append(order, desc)
		}
		amounts[desc] = append(amounts[desc], txn.AbsAmount())
	}

	tolerance := decimal.NewFromInt(1)
	var subscriptions []models.Subscription
	for _, desc := range order {
		group := amounts[desc]
		if len(group) < 2 {
			continue
		}

		sum := decimal.Zero
		for _, amt := range group {
			sum = sum.Add(amt)
		}
		mean := sum.Div(decimal.NewFromInt(int64(len(group))))

		recurring := true
		for _, amt := range group {
			if amt.Sub(mean).Abs().GreaterThanOrEqual(tolerance) {
				recurring = false
				break
			}
		}
		if !recurring {
			continue
		}

		subscriptions = append(subscriptions, models.Subscription{
			Description: desc,
			Amount:      mean.Round(2),
			Frequency:   len(group),
		})
	}

	sort.SliceStable(subscriptions, func(i, j int) bool {
		return subscriptions[i].Amount.GreaterThan(subscriptions[j].Amount)
	})
	return subscriptions
}

// savingsRate is (income - expenses) / income as a percentage. Not clamped:
// a negative rate signals overspending.
func savingsRate(income, expenses decimal.Decimal) float64 {
	if !income.IsPositive() {
		return 0
	}
	rate, _ := income.Sub(expenses).Div(income).Mul(oneHundred).Float64()
	return rate
}

func percentageOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	pct, _ := part.Div(whole).Mul(oneHundred).Float64()
	return pct
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
