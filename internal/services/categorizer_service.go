package services

import (
	"log/slog"
	"strings"

	"fincoach/internal/models"
)

// categoryRule pairs a category with its keyword list. Rules are evaluated
// in declaration order and the first substring match wins, so overlapping
// keywords (gas, payment, insurance) resolve by position, not score.
type categoryRule struct {
	category string
	keywords []string
}

var incomeKeywords = []string{
	"salary", "payroll", "wage", "income", "payment received",
	"direct deposit", "transfer from", "deposit", "refund",
	"bonus", "commission", "reimbursement", "dividend", "interest earned",
}

var expenseRules = []categoryRule{
	{"Housing", []string{
		"rent", "mortgage", "property tax", "hoa", "homeowners association",
		"property management", "lease", "apartment", "condo fee",
	}},
	{"Food & Dining", []string{
		"restaurant", "cafe", "coffee", "starbucks", "dunkin",
		"mcdonald", "burger", "pizza", "chipotle", "subway",
		"food", "grocery", "supermarket", "whole foods", "trader joe",
		"safeway", "kroger", "walmart", "target", "costco",
		"uber eats", "doordash", "grubhub", "postmates", "dining",
	}},
	{"Transportation", []string{
		"gas", "fuel", "shell", "chevron", "exxon", "bp", "76",
		"uber", "lyft", "taxi", "parking", "toll", "metro",
		"transit", "bus", "train", "subway", "car payment",
		"auto insurance", "dmv", "vehicle", "repair", "mechanic",
	}},
	{"Utilities", []string{
		"electric", "electricity", "gas", "water", "sewer", "trash",
		"internet", "wifi", "phone", "mobile", "cable", "utility",
		"verizon", "att", "tmobile", "comcast", "xfinity",
	}},
	{"Entertainment", []string{
		"movie", "theater", "cinema", "spotify", "apple music",
		"entertainment", "game", "steam", "playstation", "xbox",
		"concert", "event", "ticket", "amusement", "recreation",
	}},
	{"Shopping", []string{
		"amazon", "ebay", "walmart", "target", "best buy",
		"home depot", "lowes", "ikea", "clothing", "apparel",
		"shoes", "electronics", "retail", "store", "shop",
		"mall", "macys", "nordstrom", "gap", "old navy",
	}},
	{"Healthcare", []string{
		"pharmacy", "cvs", "walgreens", "rite aid", "medical",
		"doctor", "hospital", "dental", "dentist", "health",
		"insurance", "clinic", "prescription", "medicine",
	}},
	{models.CategorySubscriptions, []string{
		"netflix", "hulu", "disney", "amazon prime", "youtube premium",
		"subscription", "membership", "annual fee", "monthly fee",
		"spotify", "apple tv", "hbo", "paramount", "peacock",
		"gym", "fitness", "planet fitness", "24 hour fitness",
	}},
	{"Insurance", []string{
		"insurance", "geico", "state farm", "allstate", "progressive",
		"policy", "premium", "health insurance", "life insurance",
	}},
	{models.CategoryDebtPayments, []string{
		"credit card payment", "loan payment", "student loan",
		"payment to", "chase payment", "bank of america payment",
		"capital one payment", "discover payment", "amex payment",
	}},
	{models.CategorySavings, []string{
		"transfer to savings", "investment", "brokerage", "fidelity",
		"vanguard", "charles schwab", "etrade", "robinhood",
		"401k", "ira", "retirement", "savings account",
	}},
	{"Personal Care", []string{
		"salon", "haircut", "spa", "beauty", "cosmetics",
		"hygiene", "personal care", "barber",
	}},
	{"Education", []string{
		"tuition", "school", "university", "college", "course",
		"textbook", "education", "learning", "udemy", "coursera",
	}},
	{"Pets", []string{
		"pet", "vet", "veterinary", "petsmart", "petco",
		"dog", "cat", "animal",
	}},
	{"Travel", []string{
		"airline", "flight", "hotel", "airbnb", "booking",
		"travel", "vacation", "resort", "marriott", "hilton",
		"delta", "united", "american airlines", "southwest",
	}},
	{"Fees & Charges", []string{
		"fee", "charge", "atm", "overdraft", "late fee",
		"service charge", "maintenance fee", "penalty",
	}},
	{"Cash & ATM", []string{
		"atm withdrawal", "cash", "withdrawal",
	}},
	{"Taxes", []string{
		"irs", "tax", "federal tax", "state tax", "tax payment",
	}},
}

var fixedCategories = map[string]bool{
	"Housing":                    true,
	"Insurance":                  true,
	models.CategoryDebtPayments:  true,
	models.CategorySubscriptions: true,
	"Utilities":                  true,
}

var discretionaryCategories = map[string]bool{
	"Entertainment": true,
	"Shopping":      true,
	"Dining":        true,
	"Travel":        true,
	"Personal Care": true,
	"Food & Dining": true,
}

type categorizerService struct {
	logger   *slog.Logger
	recorder MetricsRecorderInterface
}

// NewCategorizerService creates a new CategorizerServiceInterface instance
func NewCategorizerService(logger *slog.Logger, recorder MetricsRecorderInterface) CategorizerServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &categorizerService{logger: logger, recorder: recorder}
}

// Categorize assigns one category to a transaction. Credits are checked
// against income keywords first; credits that match no keyword at all
// still default to Income after falling through the expense scan.
func (s *categorizerService) Categorize(txn models.RawTransaction) models.CategorizedTransaction {
	description := strings.ToLower(txn.Description)
	txnType := txn.Type()

	category := s.matchCategory(description, txnType, txn.Amount.IsPositive())

	return models.CategorizedTransaction{
		RawTransaction:  txn,
		Category:        category,
		TransactionType: txnType,
		ExpenseType:     s.ClassifyExpenseType(category),
	}
}

func (s *categorizerService) matchCategory(description, txnType string, positive bool) string {
	if txnType == models.TransactionTypeCredit && positive {
		if matchesAnyKeyword(description, incomeKeywords) {
			return models.CategoryIncome
		}
	}

	for _, rule := range expenseRules {
		if matchesAnyKeyword(description, rule.keywords) {
			return rule.category
		}
	}

	if txnType == models.TransactionTypeDebit {
		return models.CategoryOther
	}
	return models.CategoryIncome
}

// CategorizeBatch categorizes transactions preserving input order and logs
// the resulting category distribution
func (s *categorizerService) CategorizeBatch(txns []models.RawTransaction) []models.CategorizedTransaction {
	categorized := make([]models.CategorizedTransaction, 0, len(txns))
	counts := make(map[string]int)

	for _, txn := range txns {
		ct := s.Categorize(txn)
		categorized = append(categorized, ct)
		counts[ct.Category]++
		if s.recorder != nil {
			s.recorder.IncrementCounter("categorization.assigned", map[string]string{"category": ct.Category})
		}
	}

	s.logger.Info("categorized transactions",
		"count", len(categorized),
		"distribution", counts)

	return categorized
}

// ClassifyExpenseType maps a category to its necessity class via a static
// lookup, Variable when the category is in neither set
func (s *categorizerService) ClassifyExpenseType(category string) string {
	if fixedCategories[category] {
		return models.ExpenseTypeFixed
	}
	if discretionaryCategories[category] {
		return models.ExpenseTypeDiscretionary
	}
	return models.ExpenseTypeVariable
}

// Categories returns the taxonomy in declaration order, Income first
func (s *categorizerService) Categories() []string {
	categories := make([]string, 0, len(expenseRules)+1)
	categories = append(categories, models.CategoryIncome)
	for _, rule := range expenseRules {
		categories = append(categories, rule.category)
	}
	return categories
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
