package services

import (
	"context"
	"time"

	"fincoach/internal/agents"
	"fincoach/internal/dto"
	"fincoach/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExtractorServiceInterface defines the contract for recovering raw
// transactions from OCR output
type ExtractorServiceInterface interface {
	// Extract runs the strategy cascade over raw text and table grids.
	// It never fails: when no strategy yields anything it returns the
	// single synthetic fallback transaction.
	Extract(text string, tables [][][]string) []models.RawTransaction

	// ExtractFromStructuredTable parses one table whose header row names
	// a date column, honoring debit/credit column splits
	ExtractFromStructuredTable(table [][]string) []models.RawTransaction
}

// CategorizerServiceInterface defines the contract for transaction
// categorization operations
type CategorizerServiceInterface interface {
	// Categorize assigns exactly one category to a transaction.
	// Deterministic: the same description always yields the same category.
	Categorize(txn models.RawTransaction) models.CategorizedTransaction

	// CategorizeBatch categorizes transactions preserving input order
	CategorizeBatch(txns []models.RawTransaction) []models.CategorizedTransaction

	// ClassifyExpenseType maps a category to Fixed, Variable or Discretionary
	ClassifyExpenseType(category string) string

	// Categories returns the taxonomy in declaration order
	Categories() []string
}

// MetricsEngineInterface defines the contract for financial metric
// calculations
type MetricsEngineInterface interface {
	// CalculateAll aggregates categorized transactions into the full
	// metrics record. A positive monthlyIncome overrides the income
	// derived from transactions.
	CalculateAll(txns []models.CategorizedTransaction, monthlyIncome decimal.Decimal) *models.FinancialMetrics

	// DebtToIncomeRatio returns monthly debt payments over monthly income
	// as a percentage, 0 when income is not positive
	DebtToIncomeRatio(monthlyDebtPayments, monthlyIncome decimal.Decimal) float64

	// LiquidityRatio returns months of expenses covered by the balance,
	// 0 when expenses are not positive
	LiquidityRatio(currentBalance, monthlyExpenses decimal.Decimal) float64
}

// ValidationEngineInterface defines the advisory consistency checks run
// before results are handed to the reasoning layer. Findings are collected
// and logged; they never block the pipeline.
type ValidationEngineInterface interface {
	ValidateTransactions(txns []models.CategorizedTransaction) models.ValidationResult
	ValidateFinancialState(metrics *models.FinancialMetrics, dtiRatio float64) models.ValidationResult
	ValidateMathematicalConsistency(metrics *models.FinancialMetrics) models.ValidationResult
	ValidateAgentOutputs(outputs models.AgentOutputs) models.ValidationResult
	DetectConflicts(metrics *models.FinancialMetrics, outputs models.AgentOutputs) []string
}

// AgentCoordinatorInterface runs the reasoning agents over a validated
// snapshot. Implementations must survive individual agent failures and
// return fallback outputs instead of errors.
type AgentCoordinatorInterface interface {
	RunAll(ctx context.Context, input agents.Input) models.AgentOutputs
}

// AnalysisServiceInterface orchestrates the complete pipeline
type AnalysisServiceInterface interface {
	// AnalyzeDocument extracts a document via the OCR provider and runs
	// the full pipeline on its output
	AnalyzeDocument(ctx context.Context, path, sourceName string) (*dto.AnalysisResult, error)

	// AnalyzeContent runs the pipeline over already-extracted content
	AnalyzeContent(ctx context.Context, text string, tables [][][]string, method, sourceName string) (*dto.AnalysisResult, error)

	// GetAnalysis loads one persisted analysis
	GetAnalysis(id uuid.UUID) (*models.Analysis, error)

	// ListAnalyses returns persisted analyses, newest first
	ListAnalyses(offset, limit int) ([]models.Analysis, int64, error)
}

// MetricsRecorderInterface abstracts observability counters so services
// can be tested without a live registry
type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}
