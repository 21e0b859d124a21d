package storage

import (
	"context"

	"github.com/adaudit/adaudit-api/internal/models"
)

// =============================================
// REPORT REPOSITORY
// =============================================

// ReportRepo defines operations for stored report-table definitions.
type ReportRepo interface {
	ListAll(ctx context.Context) ([]*models.Report, error)
	GetByID(ctx context.Context, id string) (*models.Report, error)
	Upsert(ctx context.Context, r *models.Report) error
	Delete(ctx context.Context, id string) error
}

// =============================================
// INTEGRATION REPOSITORY
// =============================================

// IntegrationRepo defines operations for integration storage.
type IntegrationRepo interface {
	ListAll(ctx context.Context) ([]*models.Integration, error)
	GetByID(ctx context.Context, id string) (*models.Integration, error)
	Upsert(ctx context.Context, i *models.Integration) error
	Delete(ctx context.Context, id string) error
	SetCronEnabled(ctx context.Context, id string, enabled bool) error
}

// =============================================
// METRICS STORE
// =============================================

// MetricsStore is the analytics source behind report results and the
// filter-value option lists. FetchResults returns one result page per
// timeframe bucket enabled in the config.
type MetricsStore interface {
	FetchResults(ctx context.Context, cfg models.ReportConfig) ([]models.MetricsResult, error)

	// Option lists for the filter-value pickers.
	CampaignNames(ctx context.Context) ([]string, error)
	AdAccounts(ctx context.Context) (map[string][]models.AdAccount, error)
	AdPlatforms(ctx context.Context) ([]string, error)
}
