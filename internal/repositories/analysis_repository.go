package repositories

import (
	"errors"
	"fmt"
	"time"

	"fincoach/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// analysisRepository implements AnalysisRepositoryInterface
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) AnalysisRepositoryInterface {
	return &analysisRepository{
		db: db,
	}
}

// Create persists a completed pipeline run
func (r *analysisRepository) Create(analysis *models.Analysis) error {
	if err := r.db.Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// GetByID retrieves an analysis by ID
func (r *analysisRepository) GetByID(id uuid.UUID) (*models.Analysis, error) {
	analysis := &models.Analysis{ID: id}
	if err := r.db.First(analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return analysis, nil
}

// GetAll retrieves analyses with pagination, newest first
func (r *analysisRepository) GetAll(offset, limit int) ([]models.Analysis, int64, error) {
	var analyses []models.Analysis
	var total int64

	if err := r.db.Model(&models.Analysis{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count analyses: %w", err)
	}

	if err := r.db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&analyses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get analyses: %w", err)
	}

	return analyses, total, nil
}

// GetByStatus retrieves analyses with a given status, newest first
func (r *analysisRepository) GetByStatus(status string, offset, limit int) ([]models.Analysis, int64, error) {
	var analyses []models.Analysis
	var total int64

	query := r.db.Model(&models.Analysis{}).Where("status = ?", status)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count analyses by status: %w", err)
	}

	if err := query.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&analyses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get analyses by status: %w", err)
	}

	return analyses, total, nil
}

// UpdateStatus updates the status of an analysis
func (r *analysisRepository) UpdateStatus(id uuid.UUID, status string) error {
	if !models.IsValidAnalysisStatus(status) {
		return fmt.Errorf("invalid analysis status: %s", status)
	}
	result := r.db.Model(&models.Analysis{ID: id}).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update analysis status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAnalysisNotFound
	}
	return nil
}

// Delete removes an analysis
func (r *analysisRepository) Delete(id uuid.UUID) error {
	result := r.db.Delete(&models.Analysis{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete analysis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAnalysisNotFound
	}
	return nil
}

// CountByStatus returns analysis counts grouped by status
func (r *analysisRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&models.Analysis{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count analyses by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
