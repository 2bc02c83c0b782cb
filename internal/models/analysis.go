package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AnalysisStatusCompleted = "completed"
	AnalysisStatusDegraded  = "degraded"
	AnalysisStatusFailed    = "failed"
)

// JSONDocument stores an arbitrary JSON payload in a text column.
// Stored as a string for SQLite compatibility.
type JSONDocument json.RawMessage

// Value implements driver.Valuer
func (d JSONDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return string(d), nil
}

// Scan implements sql.Scanner
func (d *JSONDocument) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*d = JSONDocument(append([]byte{}, v...))
	case string:
		*d = JSONDocument(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONDocument", value)
	}
	return nil
}

func (d JSONDocument) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return json.RawMessage(d).MarshalJSON()
}

func (d *JSONDocument) UnmarshalJSON(data []byte) error {
	*d = JSONDocument(append([]byte{}, data...))
	return nil
}

// Analysis is one persisted pipeline run: the source document's extraction
// method, the recovered ledger, the computed metrics, and the agent outputs.
type Analysis struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	SourceName       string       `gorm:"type:varchar(255)" json:"source_name"`
	ExtractionMethod string       `gorm:"type:varchar(50);not null" json:"extraction_method"`
	Pages            int          `gorm:"default:0" json:"pages"`
	Status           string       `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	Transactions     JSONDocument `gorm:"type:text" json:"transactions,omitempty"`
	DebtAccounts     JSONDocument `gorm:"type:text" json:"debt_accounts,omitempty"`
	Metrics          JSONDocument `gorm:"type:text" json:"metrics,omitempty"`
	AgentOutputs     JSONDocument `gorm:"type:text" json:"agent_outputs,omitempty"`
	ValidationErrors JSONDocument `gorm:"type:text" json:"validation_errors,omitempty"`
	TransactionCount int          `gorm:"default:0" json:"transaction_count"`
	CreatedAt        time.Time    `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Analysis
func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AnalysisStatusCompleted
	}
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	return a.Validate()
}

// BeforeUpdate hook for Analysis. Partial updates pass an empty model
// through this hook, so full validation only runs on create.
func (a *Analysis) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}

// Validate validates the analysis fields
func (a *Analysis) Validate() error {
	if a.ExtractionMethod == "" {
		return fmt.Errorf("extraction method is required")
	}
	if !IsValidAnalysisStatus(a.Status) {
		return fmt.Errorf("invalid analysis status: %s", a.Status)
	}
	return nil
}

// TableName returns the table name for Analysis
func (a *Analysis) TableName() string {
	return "analyses"
}

// IsValidAnalysisStatus checks if the analysis status is valid
func IsValidAnalysisStatus(status string) bool {
	switch status {
	case AnalysisStatusCompleted, AnalysisStatusDegraded, AnalysisStatusFailed:
		return true
	default:
		return false
	}
}
