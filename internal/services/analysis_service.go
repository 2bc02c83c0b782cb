package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"fincoach/internal/agents"
	"fincoach/internal/dto"
	"fincoach/internal/models"
	"fincoach/internal/ocr"
	"fincoach/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Heuristic credit estimate when the statement carries no explicit debt data
var (
	creditShareOfExpenses = decimal.NewFromFloat(0.3)
	creditLimitMultiplier = decimal.NewFromInt(3)
	minimumPaymentRate    = decimal.NewFromFloat(0.03)
	monthlyPaymentRate    = decimal.NewFromFloat(0.06)
	defaultCreditLimit    = decimal.NewFromInt(5000)
)

const estimatedAPR = 18.0

// analysisService runs the full statement pipeline: extraction,
// categorization, metrics, advisory validation, reasoning agents and
// persistence.
type analysisService struct {
	provider    ocr.Provider
	extractor   ExtractorServiceInterface
	categorizer CategorizerServiceInterface
	metrics     MetricsEngineInterface
	validator   ValidationEngineInterface
	coordinator AgentCoordinatorInterface
	repo        repositories.AnalysisRepositoryInterface
	recorder    MetricsRecorderInterface
	logger      *slog.Logger
}

// NewAnalysisService creates the pipeline orchestrator
func NewAnalysisService(
	provider ocr.Provider,
	extractor ExtractorServiceInterface,
	categorizer CategorizerServiceInterface,
	metrics MetricsEngineInterface,
	validator ValidationEngineInterface,
	coordinator AgentCoordinatorInterface,
	repo repositories.AnalysisRepositoryInterface,
	recorder MetricsRecorderInterface,
	logger *slog.Logger,
) AnalysisServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &analysisService{
		provider:    provider,
		extractor:   extractor,
		categorizer: categorizer,
		metrics:     metrics,
		validator:   validator,
		coordinator: coordinator,
		repo:        repo,
		recorder:    recorder,
		logger:      logger,
	}
}

// AnalyzeDocument extracts a document from disk and runs the pipeline on it
func (s *analysisService) AnalyzeDocument(ctx context.Context, path, sourceName string) (*dto.AnalysisResult, error) {
	start := time.Now()
	doc, err := s.provider.Extract(ctx, path)
	if err != nil {
		s.recorder.IncrementCounter("document.extraction_failed", map[string]string{"method": ""})
		return nil, fmt.Errorf("extracting document: %w", err)
	}
	s.recorder.IncrementCounter("document.extracted", map[string]string{"method": doc.Method})
	s.recorder.RecordProcessingTime("stage.extraction", time.Since(start))

	return s.analyze(ctx, doc, sourceName)
}

// AnalyzeContent runs the pipeline over already-extracted content
func (s *analysisService) AnalyzeContent(ctx context.Context, text string, tables [][][]string, method, sourceName string) (*dto.AnalysisResult, error) {
	if method == "" {
		method = "text"
	}
	return s.analyze(ctx, &ocr.Document{Text: text, Tables: tables, Method: method}, sourceName)
}

// GetAnalysis loads one persisted analysis
func (s *analysisService) GetAnalysis(id uuid.UUID) (*models.Analysis, error) {
	return s.repo.GetByID(id)
}

// ListAnalyses returns persisted analyses, newest first
func (s *analysisService) ListAnalyses(offset, limit int) ([]models.Analysis, int64, error) {
	return s.repo.GetAll(offset, limit)
}

func (s *analysisService) analyze(ctx context.Context, doc *ocr.Document, sourceName string) (*dto.AnalysisResult, error) {
	pipelineStart := time.Now()
	analysisID := uuid.New()

	logger := s.logger.With("analysis_id", analysisID, "source", sourceName, "method", doc.Method)
	logger.Info("starting analysis", "text_chars", len(doc.Text), "tables", len(doc.Tables))

	stageStart := time.Now()
	raw := s.extractor.Extract(doc.Text, doc.Tables)
	s.recorder.RecordProcessingTime("stage.extraction", time.Since(stageStart))
	logger.Info("extracted transactions", "count", len(raw))

	stageStart = time.Now()
	categorized := s.categorizer.CategorizeBatch(raw)
	s.recorder.RecordProcessingTime("stage.categorization", time.Since(stageStart))

	stageStart = time.Now()
	metrics := s.metrics.CalculateAll(categorized, decimal.Zero)
	s.recorder.RecordProcessingTime("stage.metrics", time.Since(stageStart))
	logger.Info("calculated metrics",
		"total_income", metrics.TotalIncome,
		"total_expenses", metrics.TotalExpenses,
		"net_cash_flow", metrics.NetCashFlow)

	debts := s.estimateDebtAccounts(metrics, categorized)
	dtiRatio := s.metrics.DebtToIncomeRatio(totalMonthlyPayments(debts), metrics.TotalIncome)

	stageStart = time.Now()
	validation := s.validator.ValidateTransactions(categorized).
		Merge(s.validator.ValidateFinancialState(metrics, dtiRatio)).
		Merge(s.validator.ValidateMathematicalConsistency(metrics))
	s.recorder.RecordProcessingTime("stage.validation", time.Since(stageStart))

	stageStart = time.Now()
	outputs := s.coordinator.RunAll(ctx, agents.Input{
		AnalysisID:        analysisID.String(),
		Transactions:      categorized,
		DebtAccounts:      debts,
		Metrics:           metrics,
		DebtToIncomeRatio: dtiRatio,
	})
	s.recorder.RecordProcessingTime("stage.agents", time.Since(stageStart))

	validation = validation.Merge(s.validator.ValidateAgentOutputs(outputs))
	if conflicts := s.validator.DetectConflicts(metrics, outputs); len(conflicts) > 0 {
		for _, conflict := range conflicts {
			logger.Warn("agent recommendation conflict", "conflict", conflict)
		}
		validation = validation.Merge(models.ValidationResult{IsValid: false, Errors: conflicts})
	}

	status := s.resolveStatus(raw, validation)
	result := &dto.AnalysisResult{
		ID:                analysisID,
		SourceName:        sourceName,
		ExtractionMethod:  doc.Method,
		Pages:             doc.Pages,
		Status:            status,
		Transactions:      categorized,
		DebtAccounts:      debts,
		Metrics:           metrics,
		DebtToIncomeRatio: dtiRatio,
		AgentOutputs:      outputs,
		Validation:        validation,
		CreatedAt:         time.Now(),
	}

	stageStart = time.Now()
	if err := s.persist(result); err != nil {
		// The caller still gets the full result; persistence is best effort
		logger.Error("failed to persist analysis", "error", err)
	}
	s.recorder.RecordProcessingTime("stage.persistence", time.Since(stageStart))

	s.recorder.IncrementCounter("analysis."+status, nil)
	s.recorder.RecordGauge("analysis.transaction_count", float64(len(categorized)), nil)
	s.recorder.RecordProcessingTime("analysis.pipeline", time.Since(pipelineStart))

	logger.Info("analysis complete",
		"status", status,
		"transactions", len(categorized),
		"validation_errors", len(validation.Errors),
		"duration_ms", time.Since(pipelineStart).Milliseconds())

	return result, nil
}

// estimateDebtAccounts derives a single credit card from aggregate expenses
// when the statement has no explicit debt data. Roughly 30% of spending is
// assumed to ride on credit.
func (s *analysisService) estimateDebtAccounts(metrics *models.FinancialMetrics, txns []models.CategorizedTransaction) []models.DebtAccount {
	totalExpenses := metrics.TotalExpenses
	if !totalExpenses.IsPositive() {
		for _, txn := range txns {
			if txn.Amount.IsNegative() {
				totalExpenses = totalExpenses.Add(txn.Amount.Abs())
			}
		}
	}

	if totalExpenses.IsPositive() {
		balance := totalExpenses.Mul(creditShareOfExpenses).Round(2)
		return []models.DebtAccount{{
			AccountID:      models.DebtAccountEstimatedID,
			AccountType:    models.DebtAccountTypeCreditCard,
			Balance:        balance,
			CreditLimit:    balance.Mul(creditLimitMultiplier).Round(2),
			APR:            estimatedAPR,
			MinimumPayment: balance.Mul(minimumPaymentRate).Round(2),
			MonthlyPayment: balance.Mul(monthlyPaymentRate).Round(2),
		}}
	}

	return []models.DebtAccount{{
		AccountID:      models.DebtAccountDefaultID,
		AccountType:    models.DebtAccountTypeCreditCard,
		Balance:        decimal.Zero,
		CreditLimit:    defaultCreditLimit,
		APR:            estimatedAPR,
		MinimumPayment: decimal.Zero,
		MonthlyPayment: decimal.Zero,
	}}
}

// resolveStatus downgrades the run when extraction hit the terminal fallback
// or validation collected findings. Findings never fail the run outright.
func (s *analysisService) resolveStatus(raw []models.RawTransaction, validation models.ValidationResult) string {
	for _, txn := range raw {
		if txn.IsFallback() {
			return models.AnalysisStatusDegraded
		}
	}
	if !validation.IsValid {
		return models.AnalysisStatusDegraded
	}
	return models.AnalysisStatusCompleted
}

func (s *analysisService) persist(result *dto.AnalysisResult) error {
	record := &models.Analysis{
		ID:               result.ID,
		SourceName:       result.SourceName,
		ExtractionMethod: result.ExtractionMethod,
		Pages:            result.Pages,
		Status:           result.Status,
		TransactionCount: len(result.Transactions),
		CreatedAt:        result.CreatedAt,
	}

	var err error
	if record.Transactions, err = marshalDocument(result.Transactions); err != nil {
		return fmt.Errorf("encoding transactions: %w", err)
	}
	if record.DebtAccounts, err = marshalDocument(result.DebtAccounts); err != nil {
		return fmt.Errorf("encoding debt accounts: %w", err)
	}
	if record.Metrics, err = marshalDocument(result.Metrics); err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	if record.AgentOutputs, err = marshalDocument(result.AgentOutputs); err != nil {
		return fmt.Errorf("encoding agent outputs: %w", err)
	}
	if record.ValidationErrors, err = marshalDocument(result.Validation); err != nil {
		return fmt.Errorf("encoding validation result: %w", err)
	}

	return s.repo.Create(record)
}

func marshalDocument(v interface{}) (models.JSONDocument, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return models.JSONDocument(data), nil
}

func totalMonthlyPayments(debts []models.DebtAccount) decimal.Decimal {
	total := decimal.Zero
	for _, debt := range debts {
		total = total.Add(debt.MonthlyPayment)
	}
	return total
}
