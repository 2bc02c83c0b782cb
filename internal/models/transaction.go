package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"

	ExpenseTypeFixed         = "Fixed"
	ExpenseTypeVariable      = "Variable"
	ExpenseTypeDiscretionary = "Discretionary"
)

// Category names referenced outside the categorizer's keyword table.
const (
	CategoryIncome        = "Income"
	CategoryOther         = "Other"
	CategorySavings       = "Savings & Investments"
	CategoryDebtPayments  = "Debt Payments"
	CategorySubscriptions = "Subscriptions"
)

// FallbackDescription marks the synthetic transaction emitted when nothing
// could be parsed from a statement. Downstream consumers treat its presence
// as a degraded-confidence signal.
const FallbackDescription = "Monthly Expenses (from statement)"

// FallbackAmount is the amount carried by the synthetic fallback transaction.
var FallbackAmount = decimal.NewFromInt(-1000)

var (
	ErrEmptyDescription = errors.New("transaction description is required")
	ErrZeroAmount       = errors.New("transaction amount must be non-zero")
)

// RawTransaction is a single ledger entry recovered from a statement.
// Expenses carry negative amounts, income positive. The date is best-effort
// and defaults to extraction time when the source carries no usable date.
type RawTransaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Validate checks the structural requirements of a raw transaction
func (t *RawTransaction) Validate() error {
	if t.Description == "" {
		return ErrEmptyDescription
	}
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

// Type infers the transaction type from the sign of the amount
func (t *RawTransaction) Type() string {
	if t.Amount.IsPositive() {
		return TransactionTypeCredit
	}
	return TransactionTypeDebit
}

// IsFallback reports whether this is the synthetic could-not-parse entry
func (t *RawTransaction) IsFallback() bool {
	return t.Description == FallbackDescription && t.Amount.Equal(FallbackAmount)
}

// CategorizedTransaction is a raw transaction with its assigned taxonomy
// labels. The category is added exactly once; nothing mutates it afterwards.
type CategorizedTransaction struct {
	RawTransaction
	Category        string `json:"category"`
	TransactionType string `json:"type"`
	ExpenseType     string `json:"expense_type"`
}

// AbsAmount returns the positive magnitude of the amount
func (t *CategorizedTransaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// IsExpense reports whether this transaction counts toward consumption.
// Debt payments and savings transfers are allocations of income, not
// consumption, and are excluded.
func (t *CategorizedTransaction) IsExpense() bool {
	if t.Category == CategoryIncome || t.Category == CategorySavings || t.Category == CategoryDebtPayments {
		return false
	}
	return t.TransactionType == TransactionTypeDebit || t.Amount.IsNegative()
}

// IsIncome reports whether this transaction counts toward income
func (t *CategorizedTransaction) IsIncome() bool {
	return t.Category == CategoryIncome || (t.TransactionType == TransactionTypeCredit && t.Amount.IsPositive())
}
