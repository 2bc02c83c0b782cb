package repositories

import (
	"fincoach/internal/models"

	"github.com/google/uuid"
)

// AnalysisRepositoryInterface defines the contract for persisted analysis
// repository operations
type AnalysisRepositoryInterface interface {
	Create(analysis *models.Analysis) error
	GetByID(id uuid.UUID) (*models.Analysis, error)
	GetAll(offset, limit int) ([]models.Analysis, int64, error)
	GetByStatus(status string, offset, limit int) ([]models.Analysis, int64, error)
	UpdateStatus(id uuid.UUID, status string) error
	Delete(id uuid.UUID) error
	CountByStatus() (map[string]int64, error)
}
