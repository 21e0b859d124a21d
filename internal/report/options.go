package report

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adaudit/adaudit-api/internal/metrics"
	"github.com/adaudit/adaudit-api/internal/models"
	"github.com/adaudit/adaudit-api/internal/storage"
)

// Redis keys for the cached option lists.
const (
	cacheKeyCampaignNames = "adaudit:options:campaign_names"
	cacheKeyAdAccounts    = "adaudit:options:ad_accounts"
	cacheKeyAdPlatforms   = "adaudit:options:ad_platforms"
)

// OptionsService serves the filter-value picker lists with a best-effort
// redis cache in front of the metrics store. Cache failures are logged and
// fall through to the store; the cache is never the source of truth.
type OptionsService struct {
	metrics storage.MetricsStore
	cache   *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	mx      *metrics.Metrics
}

// NewOptionsService constructs an OptionsService. cache may be nil, in
// which case every call hits the metrics store.
func NewOptionsService(metrics storage.MetricsStore, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *OptionsService {
	return &OptionsService{metrics: metrics, cache: cache, ttl: ttl, logger: logger}
}

// SetMetrics attaches the metrics collector for cache hit accounting.
func (s *OptionsService) SetMetrics(m *metrics.Metrics) {
	s.mx = m
}

// CampaignNames returns the campaign-name picker list.
func (s *OptionsService) CampaignNames(ctx context.Context) ([]string, error) {
	var names []string
	if s.cached(ctx, cacheKeyCampaignNames, &names) {
		return names, nil
	}
	names, err := s.metrics.CampaignNames(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKeyCampaignNames, names)
	return names, nil
}

// AdAccounts returns the platform -> ad accounts picker map.
func (s *OptionsService) AdAccounts(ctx context.Context) (map[string][]models.AdAccount, error) {
	var accounts map[string][]models.AdAccount
	if s.cached(ctx, cacheKeyAdAccounts, &accounts) {
		return accounts, nil
	}
	accounts, err := s.metrics.AdAccounts(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKeyAdAccounts, accounts)
	return accounts, nil
}

// AdPlatforms returns the ad-platform picker list.
func (s *OptionsService) AdPlatforms(ctx context.Context) ([]string, error) {
	var platforms []string
	if s.cached(ctx, cacheKeyAdPlatforms, &platforms) {
		return platforms, nil
	}
	platforms, err := s.metrics.AdPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKeyAdPlatforms, platforms)
	return platforms, nil
}

// Options returns all three picker lists in one shot, for clients that
// hydrate the report builder with a single request.
func (s *OptionsService) Options(ctx context.Context) (*models.FieldOptions, error) {
	names, err := s.CampaignNames(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.AdAccounts(ctx)
	if err != nil {
		return nil, err
	}
	platforms, err := s.AdPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	return &models.FieldOptions{
		CampaignNames: names,
		AdAccounts:    accounts,
		AdPlatforms:   platforms,
	}, nil
}

// cached loads a cache entry into out, reporting whether it was usable.
func (s *OptionsService) cached(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("options cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.record(key, false)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("options cache entry corrupt", zap.String("key", key), zap.Error(err))
		s.record(key, false)
		return false
	}
	s.record(key, true)
	return true
}

func (s *OptionsService) record(key string, hit bool) {
	if s.mx != nil {
		s.mx.RecordOptionsCache(strings.TrimPrefix(key, "adaudit:options:"), hit)
	}
}

// store writes a cache entry, best effort.
func (s *OptionsService) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("options cache write failed", zap.String("key", key), zap.Error(err))
	}
}
