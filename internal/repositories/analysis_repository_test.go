package repositories

import (
	"testing"
	"time"

	"fincoach/internal/database"
	"fincoach/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AnalysisRepositoryTestSuite struct {
	suite.Suite
	db   *database.DB
	repo AnalysisRepositoryInterface
}

func TestAnalysisRepositorySuite(t *testing.T) {
	suite.Run(t, new(AnalysisRepositoryTestSuite))
}

func (s *AnalysisRepositoryTestSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewAnalysisRepository(s.db.DB)
}

func (s *AnalysisRepositoryTestSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *AnalysisRepositoryTestSuite) newAnalysis(status string, createdAt time.Time) *models.Analysis {
	return &models.Analysis{
		ID:               uuid.New(),
		SourceName:       "statement.pdf",
		ExtractionMethod: "pdf_text",
		Status:           status,
		Transactions:     models.JSONDocument(`[]`),
		Metrics:          models.JSONDocument(`{"total_income": 6200}`),
		TransactionCount: 10,
		CreatedAt:        createdAt,
	}
}

func (s *AnalysisRepositoryTestSuite) TestCreateAndGetByID() {
	analysis := s.newAnalysis(models.AnalysisStatusCompleted, time.Now())
	s.Require().NoError(s.repo.Create(analysis))

	found, err := s.repo.GetByID(analysis.ID)

	s.Require().NoError(err)
	s.Equal(analysis.ID, found.ID)
	s.Equal("statement.pdf", found.SourceName)
	s.Equal("pdf_text", found.ExtractionMethod)
	s.Equal(10, found.TransactionCount)
	s.JSONEq(`{"total_income": 6200}`, string(found.Metrics))
}

func (s *AnalysisRepositoryTestSuite) TestCreate_GeneratesID() {
	analysis := s.newAnalysis(models.AnalysisStatusCompleted, time.Now())
	analysis.ID = uuid.Nil

	s.Require().NoError(s.repo.Create(analysis))
	s.NotEqual(uuid.Nil, analysis.ID)
}

func (s *AnalysisRepositoryTestSuite) TestCreate_RejectsInvalidStatus() {
	analysis := s.newAnalysis("pending", time.Now())
	s.Error(s.repo.Create(analysis))
}

func (s *AnalysisRepositoryTestSuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(uuid.New())
	s.ErrorIs(err, ErrAnalysisNotFound)
}

func (s *AnalysisRepositoryTestSuite) TestGetAll_PaginatedNewestFirst() {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.repo.Create(s.newAnalysis(models.AnalysisStatusCompleted, base.AddDate(0, 0, i))))
	}

	page, total, err := s.repo.GetAll(0, 2)

	s.Require().NoError(err)
	s.Equal(int64(5), total)
	s.Require().Len(page, 2)
	s.True(page[0].CreatedAt.After(page[1].CreatedAt), "newest first")

	rest, total, err := s.repo.GetAll(4, 2)
	s.Require().NoError(err)
	s.Equal(int64(5), total)
	s.Len(rest, 1)
}

func (s *AnalysisRepositoryTestSuite) TestGetByStatus() {
	now := time.Now()
	s.Require().NoError(s.repo.Create(s.newAnalysis(models.AnalysisStatusCompleted, now)))
	s.Require().NoError(s.repo.Create(s.newAnalysis(models.AnalysisStatusDegraded, now)))
	s.Require().NoError(s.repo.Create(s.newAnalysis(models.AnalysisStatusDegraded, now)))

	degraded, total, err := s.repo.GetByStatus(models.AnalysisStatusDegraded, 0, 10)

	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(degraded, 2)
	for _, a := range degraded {
		s.Equal(models.AnalysisStatusDegraded, a.Status)
	}
}

func (s *AnalysisRepositoryTestSuite) TestUpdateStatus() {
	analysis := s.newAnalysis(models.AnalysisStatusCompleted, time.Now())
	s.Require().NoError(s.repo.Create(analysis))

	s.Require().NoError(s.repo.UpdateStatus(analysis.ID, models.AnalysisStatusDegraded))

	found, err := s.repo.GetByID(analysis.ID)
	s.Require().NoError(err)
	s.Equal(models.AnalysisStatusDegraded, found.Status)
}

func (s *AnalysisRepositoryTestSuite) TestUpdateStatus_InvalidStatus() {
	analysis := s.newAnalysis(models.AnalysisStatusCompleted, time.Now())
	s.Require().NoError(s.repo.Create(analysis))

	s.Error(s.repo.UpdateStatus(analysis.ID, "pending"))
}

func (s *AnalysisRepositoryTestSuite) TestUpdateStatus_NotFound() {
	s.ErrorIs(s.repo.UpdateStatus(uuid.New(), models.AnalysisStatusFailed), ErrAnalysisNotFound)
}

func (s *AnalysisRepositoryTestSuite) TestDelete() {
	analysis := s.newAnalysis(models.AnalysisStatusCompleted, time.Now())
	s.Require().NoError(s.repo.Create(analysis))

	s.Require().NoError(s.repo.Delete(analysis.ID))

	_, err := s.repo.GetByID(analysis.ID)
	s.ErrorIs(err, ErrAnalysisNotFound)
}

func (s *AnalysisRepositoryTestSuite) TestDelete_NotFound() {
	s.ErrorIs(s.repo.Delete(uuid.New()), ErrAnalysisNotFound)
}

func (s *AnalysisRepositoryTestSuite) TestCountByStatus() {
	now := time.Now()
	s.Require().NoError(s.repo.Create(s.newAnalysis(models.AnalysisStatusCompleted, now)))
	s.Require().NoError(s.repo.Create(s.newAnalysis(models.AnalysisStatusCompleted, now)))
	s.Require().NoError(s.repo.Create(s.newAnalysis(models.AnalysisStatusFailed, now)))

	counts, err := s.repo.CountByStatus()

	s.Require().NoError(err)
	s.Equal(int64(2), counts[models.AnalysisStatusCompleted])
	s.Equal(int64(1), counts[models.AnalysisStatusFailed])
	s.NotContains(counts, models.AnalysisStatusDegraded)
}
