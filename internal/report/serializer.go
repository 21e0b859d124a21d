package report

import (
	"github.com/adaudit/adaudit-api/internal/models"
)

// ProductGroup is a named product grouping submitted with a report. Labels
// holds the sales-metric labels checked for this group; the group's six
// metric flags derive from it the same way the global block derives from
// the main selection.
type ProductGroup struct {
	Name     string   `json:"name"`
	Products []string `json:"products"`
	Labels   []string `json:"labels"`
}

// Separation is the sales-separation input: when enabled, the sales block
// is split per checked timeframe label.
type Separation struct {
	Enabled    bool     `json:"enabled"`
	TimeFrames []string `json:"time_frames"`
}

// Serialize flattens a filter tree plus a checked-label selection into the
// full nested configuration payload the query layer expects. Every leaf
// boolean is a membership test against the selection; nothing else is read,
// so identical inputs always produce identical output.
//
// The cost-per coupling is enforced at the Selection toggle layer, not
// re-derived here: the serializer trusts its input set.
func Serialize(tree *models.FilterNode, sel *Selection, products []string, groups []ProductGroup, sep Separation) models.ReportConfig {
	return models.ReportConfig{
		Filters:    tree,
		Statics:    serializeStatics(sel),
		TimeFrames: serializeTimeFrames(sel.Has),
		Events: models.Events{
			Sales:                  serializeSales(sel, products, groups, sep),
			LeadFormSubmissions:    countCost(sel, LabelCountOfLeads, LabelCostPerLead),
			BookedCalls:            countCost(sel, LabelCountOfBookedCalls, LabelCostPerBookedCall),
			Sets:                   countCost(sel, LabelCountOfSets, LabelCostPerSet),
			QualifiedOpportunities: countCost(sel, LabelCountOfQualifiedOpportunities, LabelCostPerQualifiedOpportunity),
			Offers:                 countCost(sel, LabelCountOfOffers, LabelCostPerOffer),
			AddToCarts:             countCost(sel, LabelCountOfAddToCarts, LabelCostPerAddToCart),
			AdMetrics: models.AdMetricsEvents{
				Meta: models.PlatformAdMetrics{
					Spend:       sel.Has(LabelMetaSpend),
					Impressions: sel.Has(LabelMetaImpressions),
					Clicks:      sel.Has(LabelMetaClicks),
					CTR:         sel.Has(LabelMetaCTR),
					CPC:         sel.Has(LabelMetaCPC),
					CPM:         sel.Has(LabelMetaCPM),
				},
				Google: models.PlatformAdMetrics{
					Spend:       sel.Has(LabelGoogleSpend),
					Impressions: sel.Has(LabelGoogleImpressions),
					Clicks:      sel.Has(LabelGoogleClicks),
					CTR:         sel.Has(LabelGoogleCTR),
					CPC:         sel.Has(LabelGoogleCPC),
					CPM:         sel.Has(LabelGoogleCPM),
				},
			},
		},
	}
}

func serializeStatics(sel *Selection) models.Statics {
	return models.Statics{
		AdAccount:     sel.Has(LabelAdAccount),
		TrafficSource: sel.Has(LabelTrafficSource),
		Funnel:        sel.Has(LabelFunnel),
		LeadForm:      sel.Has(LabelLeadForm),
		Status:        sel.Has(LabelStatus),
		// Grade columns are not user-togglable.
		PreviousGrade: true,
		Grade:         true,
	}
}

func serializeTimeFrames(has func(string) bool) models.TimeFrames {
	return models.TimeFrames{
		Yesterday:    has(LabelYesterday),
		TwoDays:      has(LabelTwoDays),
		FourDays:     has(LabelFourDays),
		SevenDays:    has(LabelSevenDays),
		FourteenDays: has(LabelFourteenDays),
		ThirtyDays:   has(LabelThirtyDays),
		Total:        has(LabelTotal),
	}
}

func serializeSales(sel *Selection, products []string, groups []ProductGroup, sep Separation) models.SalesEvents {
	out := models.SalesEvents{
		Metrics: salesMetrics(sel.Has),
		Filter:  models.SalesFilter{Type: models.SalesFilterAll},
	}

	// Precedence is fixed: product groups beat individual products beat all.
	switch {
	case len(groups) > 0:
		out.Filter.Type = models.SalesFilterProductGroup
		out.Filter.Groups = make([]models.ProductGroupConfig, 0, len(groups))
		for _, g := range groups {
			gSel := NewSelection(g.Labels...)
			out.Filter.Groups = append(out.Filter.Groups, models.ProductGroupConfig{
				Name:     g.Name,
				Products: append([]string(nil), g.Products...),
				Metrics:  salesMetrics(gSel.Has),
			})
		}
	case len(products) > 0:
		out.Filter.Type = models.SalesFilterProduct
		out.Filter.Products = append([]string(nil), products...)
	}

	if sep.Enabled {
		sepSel := NewSelection(sep.TimeFrames...)
		out.Separation = models.SalesSeparation{
			Enabled:    true,
			TimeFrames: serializeTimeFrames(sepSel.Has),
		}
	}

	return out
}

func salesMetrics(has func(string) bool) models.SalesMetrics {
	return models.SalesMetrics{
		CountOfSales:      has(LabelCountOfSales),
		Revenue:           has(LabelRevenue),
		CostPerSale:       has(LabelCostPerSale),
		ROAS:              has(LabelROAS),
		AverageOrderValue: has(LabelAverageOrderValue),
		Refunds:           has(LabelRefunds),
	}
}

func countCost(sel *Selection, countLabel, costLabel string) models.CountCostEvents {
	return models.CountCostEvents{
		Count:   sel.Has(countLabel),
		CostPer: sel.Has(costLabel),
	}
}
