package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adaudit/adaudit-api/internal/models"
	"github.com/adaudit/adaudit-api/internal/storage"
)

// Service provides report-table CRUD plus result aggregation. It is
// intentionally thin: validation and timestamp management here, persistence
// in the repo, heavy lifting in the metrics store and the aggregator.
type Service struct {
	repo    storage.ReportRepo
	metrics storage.MetricsStore
}

// NewService constructs a report Service.
func NewService(repo storage.ReportRepo, metrics storage.MetricsStore) *Service {
	return &Service{repo: repo, metrics: metrics}
}

// Create validates the report, assigns an ID when absent, stamps timestamps
// and persists it.
func (s *Service) Create(ctx context.Context, rep *models.Report) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = now
	}
	rep.UpdatedAt = now
	if err := rep.Validate(); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, rep)
}

// List returns all stored reports.
func (s *Service) List(ctx context.Context) ([]*models.Report, error) {
	return s.repo.ListAll(ctx)
}

// Get returns a report by ID, or nil when not found.
func (s *Service) Get(ctx context.Context, id string) (*models.Report, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes a report by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Results fetches the per-timeframe metric pages for a stored report and
// aggregates them into the two campaign forests. Returns nil forests when
// the report does not exist.
func (s *Service) Results(ctx context.Context, id string) (*CampaignForests, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, nil
	}
	pages, err := s.metrics.FetchResults(ctx, rep.Config)
	if err != nil {
		return nil, err
	}
	forests := Aggregate(pages)
	return &forests, nil
}
