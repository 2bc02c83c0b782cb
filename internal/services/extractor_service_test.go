package services

import (
	"testing"
	"time"

	"fincoach/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const simpleStatementText = `BANK STATEMENT
Account: ****1234
Period: 03/01/2024 - 03/31/2024

03/01/2024  ACME CORP PAYROLL           +3,100.00
03/05/2024  Rent Payment                -1,800.00
03/07/2024  Whole Foods Market          -212.40
03/10/2024  Shell Gas Station           -48.25
03/12/2024  Netflix.com                 -15.99
03/15/2024  ACME CORP PAYROLL           +3,100.00
03/18/2024  Chase Payment               -350.00
03/20/2024  Comcast Xfinity             -79.99
03/25/2024  Starbucks                   -6.75
03/28/2024  CVS Pharmacy                -35.27
`

// A full month of activity with section headers and a summary block. The
// printed withdrawal total is $100 off from its own line items, which the
// pipeline must ignore in favor of the lines themselves.
const fullMonthStatementText = `PERSONAL BANK STATEMENT
Account: **** 1234
Period: January 1-31, 2024

DEPOSITS AND CREDITS
Date        Description                     Amount
01/05/24    Employer Direct Deposit        +4,500.00
01/15/24    Freelance Payment              +1,200.00
01/20/24    Tax Refund                       +500.00

WITHDRAWALS AND DEBITS
Date        Description                     Amount
01/02/24    Rent - Landlord Payment        -1,800.00
01/03/24    Whole Foods Market               -156.78
01/05/24    Shell Gas Station                 -52.00
01/06/24    Amazon.com                       -89.99
01/07/24    Starbucks                         -12.50
01/08/24    Target                          -145.32
01/10/24    Electric Company                 -98.50
01/10/24    Water Utility                    -45.00
01/12/24    Chase Credit Card Payment       -500.00
01/14/24    Kroger Grocery                  -123.45
01/16/24    Chevron Gas                      -55.00
01/18/24    Netflix Subscription             -15.99
01/18/24    Spotify Premium                  -10.99
01/20/24    Restaurant - Italian Bistro     -87.50
01/22/24    Planet Fitness Membership        -29.99
01/24/24    CVS Pharmacy                     -34.56
01/26/24    Uber Ride                        -18.75
01/28/24    Trader Joe's                     -92.34
01/30/24    Internet Service Provider        -79.99

SUMMARY
Total Deposits:    $6,200.00
Total Withdrawals: $3,548.65
Net Change:        +2,651.35
`

type ExtractorServiceTestSuite struct {
	suite.Suite
	service ExtractorServiceInterface
}

func TestExtractorServiceSuite(t *testing.T) {
	suite.Run(t, new(ExtractorServiceTestSuite))
}

func (s *ExtractorServiceTestSuite) SetupTest() {
	s.service = NewExtractorService(nil, nil)
}

func (s *ExtractorServiceTestSuite) amountOf(txns []models.RawTransaction, description string) decimal.Decimal {
	for _, txn := range txns {
		if txn.Description == description {
			return txn.Amount
		}
	}
	s.Failf("transaction not found", "no transaction with description %q", description)
	return decimal.Zero
}

// Statement Line Tests

func (s *ExtractorServiceTestSuite) TestExtract_StatementLines() {
	txns := s.service.Extract(simpleStatementText, nil)

	s.Require().Len(txns, 10)

	s.True(s.amountOf(txns, "ACME CORP PAYROLL").Equal(decimal.NewFromFloat(3100.00)))
	s.True(s.amountOf(txns, "Rent Payment").Equal(decimal.NewFromFloat(-1800.00)))
	s.True(s.amountOf(txns, "Netflix.com").Equal(decimal.NewFromFloat(-15.99)))

	for _, txn := range txns {
		s.False(txn.Date.IsZero(), "every ledger line carries a parsed date")
		s.NotEmpty(txn.Description)
		s.False(txn.Amount.IsZero())
	}
}

func (s *ExtractorServiceTestSuite) TestExtract_FullMonthStatement() {
	txns := s.service.Extract(fullMonthStatementText, nil)

	s.Require().Len(txns, 22, "3 deposits + 19 withdrawals; headers and summary lines skipped")

	deposits := decimal.Zero
	withdrawals := decimal.Zero
	for _, txn := range txns {
		if txn.Amount.IsPositive() {
			deposits = deposits.Add(txn.Amount)
		} else {
			withdrawals = withdrawals.Add(txn.Amount.Abs())
		}
	}

	s.True(deposits.Equal(decimal.NewFromFloat(6200.00)), "deposits: got %s", deposits)
	s.True(withdrawals.Equal(decimal.NewFromFloat(3448.65)), "withdrawals: got %s", withdrawals)

	s.True(s.amountOf(txns, "Employer Direct Deposit").Equal(decimal.NewFromFloat(4500.00)))
	s.True(s.amountOf(txns, "Rent - Landlord Payment").Equal(decimal.NewFromFloat(-1800.00)))
	s.True(s.amountOf(txns, "Chase Credit Card Payment").Equal(decimal.NewFromFloat(-500.00)))
}

func (s *ExtractorServiceTestSuite) TestExtract_StatementLineDates() {
	txns := s.service.Extract("03/05/2024  Rent Payment  -1,800.00", nil)

	s.Require().Len(txns, 1)
	s.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), txns[0].Date)
}

// Structured Table Tests

func (s *ExtractorServiceTestSuite) TestExtractFromStructuredTable_SplitDebitCredit() {
	table := [][]string{
		{"Date", "Description", "Debit", "Credit", "Balance"},
		{"2024-03-01", "ACME CORP PAYROLL", "", "3100.00", "4250.00"},
		{"2024-03-05", "Rent Payment", "1800.00", "", "2450.00"},
		{"2024-03-07", "Whole Foods", "212.40", "", "2237.60"},
	}

	txns := s.service.ExtractFromStructuredTable(table)

	s.Require().Len(txns, 3)
	s.True(txns[0].Amount.Equal(decimal.NewFromFloat(3100.00)), "credit column yields positive amount")
	s.True(txns[1].Amount.Equal(decimal.NewFromFloat(-1800.00)), "debit column yields negative amount")
	s.Equal("Whole Foods", txns[2].Description)
}

func (s *ExtractorServiceTestSuite) TestExtractFromStructuredTable_SingleAmountColumn() {
	table := [][]string{
		{"Date", "Description", "Amount"},
		{"2024-03-01", "Salary", "2500.00"},
		{"2024-03-02", "Groceries", "-84.10"},
		{"2024-03-03", "Parking", "(12.00)"},
	}

	txns := s.service.ExtractFromStructuredTable(table)

	s.Require().Len(txns, 3)
	s.True(txns[0].Amount.IsPositive())
	s.True(txns[1].Amount.IsNegative())
	s.True(txns[2].Amount.Equal(decimal.NewFromFloat(-12.00)), "accounting parentheses mean negative")
}

func (s *ExtractorServiceTestSuite) TestExtractFromStructuredTable_SkipsBadRows() {
	table := [][]string{
		{"Date", "Description", "Amount"},
		{"not-a-date", "Mystery", "50.00"},
		{"2024-03-02", "Groceries", "-84.10"},
		{"2024-03-03", "Zero row", "0.00"},
	}

	txns := s.service.ExtractFromStructuredTable(table)

	s.Require().Len(txns, 1)
	s.Equal("Groceries", txns[0].Description)
}

func (s *ExtractorServiceTestSuite) TestExtractFromStructuredTable_NoDateColumn() {
	table := [][]string{
		{"Category", "Amount"},
		{"Housing", "1800.00"},
	}
	s.Empty(s.service.ExtractFromStructuredTable(table))
}

// Budget Grid Tests

func (s *ExtractorServiceTestSuite) TestExtract_BudgetGridTable() {
	tables := [][][]string{{
		{"Month", "Housing", "Food", "Transport"},
		{"Jan", "$1,800.00", "$420.50", "$160.00"},
		{"Total", "$1,800.00", "$420.50", "$160.00"},
	}}

	txns := s.service.Extract("", tables)

	// The Total row is skipped; each cell becomes one expense
	s.Require().Len(txns, 3)
	for _, txn := range txns {
		s.True(txn.Amount.IsNegative(), "grid cells are expenses")
	}
	s.True(s.amountOf(txns, "Jan - housing").Equal(decimal.NewFromFloat(-1800.00)))
}

// Cascade Tests

func (s *ExtractorServiceTestSuite) TestExtract_TablesWinOverText() {
	tables := [][][]string{{
		{"Date", "Description", "Amount"},
		{"2024-03-02", "Groceries", "-84.10"},
	}}

	txns := s.service.Extract(simpleStatementText, tables)

	s.Require().Len(txns, 1, "first non-empty strategy wins, results are never merged")
	s.Equal("Groceries", txns[0].Description)
}

func (s *ExtractorServiceTestSuite) TestExtract_DollarFallback() {
	text := "Dinner at Luigi's $62.50\nNew headphones $199.99\n"

	txns := s.service.Extract(text, nil)

	s.Require().Len(txns, 2)
	s.True(txns[0].Amount.Equal(decimal.NewFromFloat(-62.50)))
	s.True(txns[1].Amount.Equal(decimal.NewFromFloat(-199.99)))
}

func (s *ExtractorServiceTestSuite) TestExtract_NothingParsableYieldsFallback() {
	txns := s.service.Extract("completely unstructured prose with no numbers", nil)

	s.Require().Len(txns, 1)
	s.Equal(models.FallbackDescription, txns[0].Description)
	s.True(txns[0].Amount.Equal(models.FallbackAmount))
	s.True(txns[0].IsFallback())
}

func (s *ExtractorServiceTestSuite) TestExtract_EmptyInputYieldsFallback() {
	txns := s.service.Extract("", nil)

	s.Require().Len(txns, 1)
	s.True(txns[0].IsFallback())
}
