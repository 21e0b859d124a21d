package storage

import (
	"context"
	"sync"

	"github.com/adaudit/adaudit-api/internal/models"
)

// In-memory implementations are used when the backing service is not
// configured, and in tests. They provide the same contracts as the
// database-backed stores but keep everything in maps behind an RWMutex.

// =============================================
// IN-MEMORY REPORT REPO
// =============================================

// InMemoryReportRepo stores reports in a map keyed by ID.
type InMemoryReportRepo struct {
	mu      sync.RWMutex
	reports map[string]*models.Report
	order   []string
}

// NewInMemoryReportRepo creates an empty in-memory report repo.
func NewInMemoryReportRepo() *InMemoryReportRepo {
	return &InMemoryReportRepo{reports: make(map[string]*models.Report)}
}

// ListAll returns all reports in insertion order.
func (r *InMemoryReportRepo) ListAll(ctx context.Context) ([]*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Report, 0, len(r.order))
	for _, id := range r.order {
		if rep, ok := r.reports[id]; ok {
			out = append(out, rep)
		}
	}
	return out, nil
}

// GetByID returns the report with the given ID or nil if not found.
func (r *InMemoryReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rep, ok := r.reports[id]; ok {
		return rep, nil
	}
	return nil, nil
}

// Upsert inserts or replaces a report. A shallow copy is stored to avoid
// external mutation of the kept value.
func (r *InMemoryReportRepo) Upsert(ctx context.Context, rep *models.Report) error {
	if rep == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reports[rep.ID]; !exists {
		r.order = append(r.order, rep.ID)
	}
	cp := *rep
	r.reports[rep.ID] = &cp
	return nil
}

// Delete removes a report by ID; deleting a missing ID is not an error.
func (r *InMemoryReportRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reports, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// =============================================
// IN-MEMORY INTEGRATION REPO
// =============================================

// InMemoryIntegrationRepo stores integrations in a map keyed by ID.
type InMemoryIntegrationRepo struct {
	mu           sync.RWMutex
	integrations map[string]*models.Integration
	order        []string
}

// NewInMemoryIntegrationRepo creates an empty in-memory integration repo.
func NewInMemoryIntegrationRepo() *InMemoryIntegrationRepo {
	return &InMemoryIntegrationRepo{integrations: make(map[string]*models.Integration)}
}

// ListAll returns all integrations in insertion order.
func (r *InMemoryIntegrationRepo) ListAll(ctx context.Context) ([]*models.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Integration, 0, len(r.order))
	for _, id := range r.order {
		if in, ok := r.integrations[id]; ok {
			out = append(out, in)
		}
	}
	return out, nil
}

// GetByID returns the integration with the given ID or nil if not found.
func (r *InMemoryIntegrationRepo) GetByID(ctx context.Context, id string) (*models.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if in, ok := r.integrations[id]; ok {
		return in, nil
	}
	return nil, nil
}

// Upsert inserts or replaces an integration.
func (r *InMemoryIntegrationRepo) Upsert(ctx context.Context, in *models.Integration) error {
	if in == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.integrations[in.ID]; !exists {
		r.order = append(r.order, in.ID)
	}
	cp := *in
	r.integrations[in.ID] = &cp
	return nil
}

// Delete removes an integration by ID.
func (r *InMemoryIntegrationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.integrations, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetCronEnabled flips the cron flag on a stored integration. Unknown IDs
// are a silent no-op, matching the database implementation's row count
// indifference.
func (r *InMemoryIntegrationRepo) SetCronEnabled(ctx context.Context, id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if in, ok := r.integrations[id]; ok {
		in.CronEnabled = enabled
	}
	return nil
}

// =============================================
// IN-MEMORY METRICS STORE
// =============================================

// InMemoryMetricsStore serves seeded result pages keyed by timeframe, for
// development and tests.
type InMemoryMetricsStore struct {
	mu            sync.RWMutex
	pages         map[string]models.MetricsResult
	campaignNames []string
	adAccounts    map[string][]models.AdAccount
	adPlatforms   []string
}

// NewInMemoryMetricsStore creates an empty in-memory metrics store.
func NewInMemoryMetricsStore() *InMemoryMetricsStore {
	return &InMemoryMetricsStore{
		pages:      make(map[string]models.MetricsResult),
		adAccounts: make(map[string][]models.AdAccount),
	}
}

// SeedPage installs the result page for a timeframe key.
func (s *InMemoryMetricsStore) SeedPage(timeFrame string, page models.MetricsResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[timeFrame] = page
}

// SeedOptions installs the option lists.
func (s *InMemoryMetricsStore) SeedOptions(names []string, accounts map[string][]models.AdAccount, platforms []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaignNames = names
	s.adAccounts = accounts
	s.adPlatforms = platforms
}

// FetchResults returns the seeded page for each enabled timeframe bucket,
// in canonical bucket order. Buckets without a seeded page are skipped.
func (s *InMemoryMetricsStore) FetchResults(ctx context.Context, cfg models.ReportConfig) ([]models.MetricsResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MetricsResult
	for _, key := range cfg.TimeFrames.Enabled() {
		if page, ok := s.pages[key]; ok {
			out = append(out, page)
		}
	}
	return out, nil
}

// CampaignNames returns the seeded campaign name list.
func (s *InMemoryMetricsStore) CampaignNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.campaignNames...), nil
}

// AdAccounts returns the seeded platform -> accounts map.
func (s *InMemoryMetricsStore) AdAccounts(ctx context.Context) (map[string][]models.AdAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]models.AdAccount, len(s.adAccounts))
	for k, v := range s.adAccounts {
		out[k] = append([]models.AdAccount(nil), v...)
	}
	return out, nil
}

// AdPlatforms returns the seeded platform list.
func (s *InMemoryMetricsStore) AdPlatforms(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.adPlatforms...), nil
}
