package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	DebtAccountTypeCreditCard = "credit_card"
	DebtAccountTypeLoan       = "loan"

	DebtAccountEstimatedID = "cc_estimated"
	DebtAccountDefaultID   = "cc_default"
)

var (
	ErrNegativeBalance    = errors.New("debt balance must be non-negative")
	ErrLimitBelowBalance  = errors.New("credit limit must be at least the balance")
	ErrAPROutOfRange      = errors.New("apr must be between 0 and 100")
	ErrInvalidAccountType = errors.New("invalid debt account type")
)

// DebtAccount describes one revolving or installment debt. When a statement
// carries no explicit debt data the pipeline derives a single estimated
// credit card from aggregate expenses; the AccountID records which path
// produced it.
type DebtAccount struct {
	AccountID      string          `json:"account_id"`
	AccountType    string          `json:"account_type"`
	Balance        decimal.Decimal `json:"balance"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	APR            float64         `json:"apr"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

// Validate checks the invariants on a debt account
func (d *DebtAccount) Validate() error {
	if d.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	if d.CreditLimit.LessThan(d.Balance) {
		return ErrLimitBelowBalance
	}
	if d.APR < 0 || d.APR > 100 {
		return ErrAPROutOfRange
	}
	switch d.AccountType {
	case DebtAccountTypeCreditCard, DebtAccountTypeLoan:
		return nil
	default:
		return ErrInvalidAccountType
	}
}

// UtilizationRate returns balance/limit as a percentage, 0 when no limit
func (d *DebtAccount) UtilizationRate() float64 {
	if !d.CreditLimit.IsPositive() {
		return 0
	}
	rate, _ := d.Balance.Div(d.CreditLimit).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return rate
}

// AvailableCredit returns the unused portion of the credit limit
func (d *DebtAccount) AvailableCredit() decimal.Decimal {
	available := d.CreditLimit.Sub(d.Balance)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// IsEstimated reports whether this account was derived heuristically
// rather than parsed from the statement
func (d *DebtAccount) IsEstimated() bool {
	return d.AccountID == DebtAccountEstimatedID || d.AccountID == DebtAccountDefaultID
}
