package dto

import (
	"time"

	"fincoach/internal/models"

	"github.com/google/uuid"
)

// AnalyzeTextRequest submits already-extracted statement content. Either
// text or tables must be present; the handler rejects fully empty bodies.
type AnalyzeTextRequest struct {
	Text       string       `json:"text,omitempty"`
	Tables     [][][]string `json:"tables,omitempty"`
	SourceName string       `json:"source_name,omitempty" validate:"omitempty,max=255"`
}

// AnalysisResult is the full pipeline output for one statement. Validation
// errors ride along instead of failing the request.
type AnalysisResult struct {
	ID                uuid.UUID                       `json:"id"`
	SourceName        string                          `json:"source_name,omitempty"`
	ExtractionMethod  string                          `json:"extraction_method"`
	Pages             int                             `json:"pages,omitempty"`
	Status            string                          `json:"status"`
	Transactions      []models.CategorizedTransaction `json:"transactions"`
	DebtAccounts      []models.DebtAccount            `json:"debt_accounts"`
	Metrics           *models.FinancialMetrics        `json:"metrics"`
	DebtToIncomeRatio float64                         `json:"debt_to_income_ratio"`
	AgentOutputs      models.AgentOutputs             `json:"agent_outputs"`
	Validation        models.ValidationResult         `json:"validation"`
	CreatedAt         time.Time                       `json:"created_at"`
}

// AnalysisSummary is the list-view projection of a persisted analysis
type AnalysisSummary struct {
	ID               uuid.UUID `json:"id"`
	SourceName       string    `json:"source_name,omitempty"`
	ExtractionMethod string    `json:"extraction_method"`
	Status           string    `json:"status"`
	TransactionCount int       `json:"transaction_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewAnalysisSummary projects a persisted record into its list view
func NewAnalysisSummary(a *models.Analysis) AnalysisSummary {
	return AnalysisSummary{
		ID:               a.ID,
		SourceName:       a.SourceName,
		ExtractionMethod: a.ExtractionMethod,
		Status:           a.Status,
		TransactionCount: a.TransactionCount,
		CreatedAt:        a.CreatedAt,
	}
}
