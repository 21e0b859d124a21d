package report

import (
	"github.com/adaudit/adaudit-api/internal/models"
)

// CampaignForests is the aggregated output of a metrics fetch: one
// deduplicated campaign forest per ad platform, ready for tabular
// rendering. Order within each forest is first-seen page order.
type CampaignForests struct {
	Meta   []models.MetricsCampaign `json:"meta"`
	Google []models.MetricsCampaign `json:"google"`
}

// Aggregate reduces per-timeframe metrics result pages into two
// deduplicated campaign forests. Campaigns are upserted by normalized ID:
// the first occurrence establishes the campaign's static fields, later
// pages only contribute children. Ad-set and ad-group ads are concatenated
// across pages, never replaced, which is what lets one call per timeframe
// bucket fill in the same row incrementally. Ads picked up from a page are
// stamped with that page's timeframe label unless they already carry one.
//
// Missing or empty child arrays are treated as empty; a campaign with zero
// children still appears in the output.
func Aggregate(pages []models.MetricsResult) CampaignForests {
	meta := newMetaMerger()
	google := newGoogleMerger()

	for i := range pages {
		page := &pages[i]
		for _, c := range page.MetaCampaigns() {
			meta.add(c, page.Label)
		}
		for _, c := range page.GoogleCampaigns() {
			google.add(c, page.Label)
		}
	}

	return CampaignForests{
		Meta:   meta.ordered(),
		Google: google.ordered(),
	}
}

// metaMerger upserts Meta campaigns by ID and their ad-sets within each
// campaign, preserving insertion order on both levels.
type metaMerger struct {
	byID  map[string]*models.MetricsCampaign
	order []string
	// ad-set index per campaign ID
	setIdx map[string]map[string]int
}

func newMetaMerger() *metaMerger {
	return &metaMerger{
		byID:   make(map[string]*models.MetricsCampaign),
		setIdx: make(map[string]map[string]int),
	}
}

func (m *metaMerger) add(c models.MetricsCampaign, label string) {
	key := c.ID.Value()
	existing, ok := m.byID[key]
	if !ok {
		cp := c
		cp.AdSets = nil
		cp.AdGroups = nil
		m.byID[key] = &cp
		m.order = append(m.order, key)
		m.setIdx[key] = make(map[string]int)
		existing = m.byID[key]
	}
	idx := m.setIdx[key]
	for _, as := range c.AdSets {
		asKey := as.ID.Value()
		if i, seen := idx[asKey]; seen {
			existing.AdSets[i].Ads = append(existing.AdSets[i].Ads, stampAds(as.Ads, label)...)
			continue
		}
		cp := as
		cp.Ads = stampAds(as.Ads, label)
		existing.AdSets = append(existing.AdSets, cp)
		idx[asKey] = len(existing.AdSets) - 1
	}
}

func (m *metaMerger) ordered() []models.MetricsCampaign {
	out := make([]models.MetricsCampaign, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, *m.byID[key])
	}
	return out
}

// googleMerger mirrors metaMerger for the ad-group hierarchy, whose IDs are
// numeric and may arrive in nullable envelopes.
type googleMerger struct {
	byID   map[string]*models.MetricsCampaign
	order  []string
	grpIdx map[string]map[string]int
}

func newGoogleMerger() *googleMerger {
	return &googleMerger{
		byID:   make(map[string]*models.MetricsCampaign),
		grpIdx: make(map[string]map[string]int),
	}
}

func (m *googleMerger) add(c models.MetricsCampaign, label string) {
	key := c.ID.Value()
	existing, ok := m.byID[key]
	if !ok {
		cp := c
		cp.AdSets = nil
		cp.AdGroups = nil
		m.byID[key] = &cp
		m.order = append(m.order, key)
		m.grpIdx[key] = make(map[string]int)
		existing = m.byID[key]
	}
	idx := m.grpIdx[key]
	for _, ag := range c.AdGroups {
		agKey := ag.ID.Key()
		if i, seen := idx[agKey]; seen {
			existing.AdGroups[i].Ads = append(existing.AdGroups[i].Ads, stampAds(ag.Ads, label)...)
			continue
		}
		cp := ag
		cp.Ads = stampAds(ag.Ads, label)
		existing.AdGroups = append(existing.AdGroups, cp)
		idx[agKey] = len(existing.AdGroups) - 1
	}
}

func (m *googleMerger) ordered() []models.MetricsCampaign {
	out := make([]models.MetricsCampaign, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, *m.byID[key])
	}
	return out
}

func stampAds(ads []models.Ad, label string) []models.Ad {
	out := make([]models.Ad, len(ads))
	copy(out, ads)
	for i := range out {
		if out[i].TimeFrame == "" {
			out[i].TimeFrame = label
		}
	}
	return out
}
