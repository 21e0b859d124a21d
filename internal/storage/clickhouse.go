package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/adaudit/adaudit-api/internal/models"
)

// Platform discriminators in the ad_events table.
const (
	platformMeta   = "meta"
	platformGoogle = "google"
)

// ClickHouseMetricsStore implements MetricsStore over the ad_events table.
// Each enabled timeframe bucket becomes one result page: Meta campaigns
// grouped by campaign/ad-set/ad, Google campaigns by campaign/ad-group/ad.
type ClickHouseMetricsStore struct {
	conn driver.Conn
	now  func() time.Time
}

func NewClickHouseMetricsStore(conn driver.Conn) *ClickHouseMetricsStore {
	return &ClickHouseMetricsStore{conn: conn, now: time.Now}
}

// timeFrameDays maps bucket keys to their lookback window. Zero means no
// lower bound (the "total" bucket).
var timeFrameDays = map[string]int{
	models.TimeFrameYesterday:    1,
	models.TimeFrameTwoDays:      2,
	models.TimeFrameFourDays:     4,
	models.TimeFrameSevenDays:    7,
	models.TimeFrameFourteenDays: 14,
	models.TimeFrameThirtyDays:   30,
	models.TimeFrameTotal:        0,
}

// FetchResults builds one MetricsResult page per enabled timeframe, in
// canonical bucket order. Meta campaigns go under the "value" field and
// Google campaigns under "google"; the asymmetry is part of the wire
// contract with the dashboard.
func (s *ClickHouseMetricsStore) FetchResults(ctx context.Context, cfg models.ReportConfig) ([]models.MetricsResult, error) {
	var pages []models.MetricsResult
	for _, key := range cfg.TimeFrames.Enabled() {
		since := s.windowStart(key)

		meta, err := s.queryMeta(ctx, since)
		if err != nil {
			return nil, fmt.Errorf("meta query for %s: %w", key, err)
		}
		google, err := s.queryGoogle(ctx, since)
		if err != nil {
			return nil, fmt.Errorf("google query for %s: %w", key, err)
		}

		pages = append(pages, models.MetricsResult{
			Label:  key,
			Value:  [][]models.MetricsCampaign{meta},
			Google: [][]models.MetricsCampaign{google},
		})
	}
	return pages, nil
}

// windowStart returns the lower time bound for a bucket; the zero time
// means unbounded.
func (s *ClickHouseMetricsStore) windowStart(key string) time.Time {
	days := timeFrameDays[key]
	if days == 0 {
		return time.Time{}
	}
	return s.now().UTC().AddDate(0, 0, -days)
}

const metaRowsQuery = `
	SELECT
		campaign_id, any(campaign_name), any(account_id), any(status),
		adset_id, any(adset_name),
		ad_id, any(ad_name),
		sum(spend), sum(impressions), sum(clicks),
		sum(sales), sum(revenue), sum(leads), sum(booked_calls)
	FROM ad_events
	WHERE platform = ? AND (? = toDateTime(0) OR ts >= ?)
	GROUP BY campaign_id, adset_id, ad_id
	ORDER BY campaign_id, adset_id, ad_id
`

func (s *ClickHouseMetricsStore) queryMeta(ctx context.Context, since time.Time) ([]models.MetricsCampaign, error) {
	rows, err := s.conn.Query(ctx, metaRowsQuery, platformMeta, since, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		campaigns []models.MetricsCampaign
		campIdx   = make(map[string]int)
		setIdx    = make(map[string]map[string]int)
	)
	for rows.Next() {
		var (
			campaignID, campaignName, accountID, status string
			adSetID, adSetName, adID, adName            string
			spend, revenue                              float64
			impressions, clicks, sales, leads, calls    uint64
		)
		if err := rows.Scan(&campaignID, &campaignName, &accountID, &status,
			&adSetID, &adSetName, &adID, &adName,
			&spend, &impressions, &clicks, &sales, &revenue, &leads, &calls); err != nil {
			return nil, err
		}

		ci, ok := campIdx[campaignID]
		if !ok {
			campaigns = append(campaigns, models.MetricsCampaign{
				ID:        ns(campaignID),
				Name:      ns(campaignName),
				AccountID: ns(accountID),
				Status:    ns(status),
			})
			ci = len(campaigns) - 1
			campIdx[campaignID] = ci
			setIdx[campaignID] = make(map[string]int)
		}
		si, ok := setIdx[campaignID][adSetID]
		if !ok {
			campaigns[ci].AdSets = append(campaigns[ci].AdSets, models.AdSet{
				ID:   ns(adSetID),
				Name: ns(adSetName),
			})
			si = len(campaigns[ci].AdSets) - 1
			setIdx[campaignID][adSetID] = si
		}
		campaigns[ci].AdSets[si].Ads = append(campaigns[ci].AdSets[si].Ads,
			buildAd(adID, adName, spend, impressions, clicks, sales, revenue, leads, calls))
	}
	return campaigns, rows.Err()
}

const googleRowsQuery = `
	SELECT
		campaign_id, any(campaign_name), any(account_id), any(status),
		adgroup_id, any(adgroup_name),
		ad_id, any(ad_name),
		sum(spend), sum(impressions), sum(clicks),
		sum(sales), sum(revenue), sum(leads), sum(booked_calls)
	FROM ad_events
	WHERE platform = ? AND (? = toDateTime(0) OR ts >= ?)
	GROUP BY campaign_id, adgroup_id, ad_id
	ORDER BY campaign_id, adgroup_id, ad_id
`

func (s *ClickHouseMetricsStore) queryGoogle(ctx context.Context, since time.Time) ([]models.MetricsCampaign, error) {
	rows, err := s.conn.Query(ctx, googleRowsQuery, platformGoogle, since, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		campaigns []models.MetricsCampaign
		campIdx   = make(map[string]int)
		grpIdx    = make(map[string]map[int64]int)
	)
	for rows.Next() {
		var (
			campaignID, campaignName, accountID, status string
			adGroupID                                   int64
			adGroupName, adID, adName                   string
			spend, revenue                              float64
			impressions, clicks, sales, leads, calls    uint64
		)
		if err := rows.Scan(&campaignID, &campaignName, &accountID, &status,
			&adGroupID, &adGroupName, &adID, &adName,
			&spend, &impressions, &clicks, &sales, &revenue, &leads, &calls); err != nil {
			return nil, err
		}

		ci, ok := campIdx[campaignID]
		if !ok {
			campaigns = append(campaigns, models.MetricsCampaign{
				ID:        ns(campaignID),
				Name:      ns(campaignName),
				AccountID: ns(accountID),
				Status:    ns(status),
			})
			ci = len(campaigns) - 1
			campIdx[campaignID] = ci
			grpIdx[campaignID] = make(map[int64]int)
		}
		gi, ok := grpIdx[campaignID][adGroupID]
		if !ok {
			campaigns[ci].AdGroups = append(campaigns[ci].AdGroups, models.AdGroup{
				ID:   models.NullInt64{Int64: adGroupID, Valid: true},
				Name: ns(adGroupName),
			})
			gi = len(campaigns[ci].AdGroups) - 1
			grpIdx[campaignID][adGroupID] = gi
		}
		campaigns[ci].AdGroups[gi].Ads = append(campaigns[ci].AdGroups[gi].Ads,
			buildAd(adID, adName, spend, impressions, clicks, sales, revenue, leads, calls))
	}
	return campaigns, rows.Err()
}

// CampaignNames returns the distinct campaign names across both platforms.
func (s *ClickHouseMetricsStore) CampaignNames(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT campaign_name FROM ad_events ORDER BY campaign_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AdAccounts returns the known ad accounts grouped by platform.
func (s *ClickHouseMetricsStore) AdAccounts(ctx context.Context) (map[string][]models.AdAccount, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT platform, account_id, any(account_name)
		FROM ad_events GROUP BY platform, account_id ORDER BY platform, account_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]models.AdAccount)
	for rows.Next() {
		var platform, id, name string
		if err := rows.Scan(&platform, &id, &name); err != nil {
			return nil, err
		}
		out[platform] = append(out[platform], models.AdAccount{ID: id, Name: name, Platform: platform})
	}
	return out, rows.Err()
}

// AdPlatforms returns the distinct source platforms.
func (s *ClickHouseMetricsStore) AdPlatforms(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT platform FROM ad_events ORDER BY platform`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var platforms []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

func ns(s string) models.NullString {
	return models.NullString{String: s, Valid: s != ""}
}

// buildAd assembles an ad row, deriving the rate metrics from the sums.
func buildAd(id, name string, spend float64, impressions, clicks, sales uint64, revenue float64, leads, calls uint64) models.Ad {
	ad := models.Ad{
		ID:          ns(id),
		Name:        ns(name),
		Spend:       spend,
		Impressions: int64(impressions),
		Clicks:      int64(clicks),
		Sales:       int64(sales),
		Revenue:     revenue,
		Leads:       int64(leads),
		BookedCalls: int64(calls),
	}
	if impressions > 0 {
		ad.CTR = float64(clicks) / float64(impressions) * 100
		ad.CPM = spend / float64(impressions) * 1000
	}
	if clicks > 0 {
		ad.CPC = spend / float64(clicks)
	}
	return ad
}
