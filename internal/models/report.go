package models

import (
	"errors"
	"time"
)

// Statics are the fixed table columns a report always offers. Grade columns
// are not user-togglable; the serializer forces them on.
type Statics struct {
	AdAccount     bool `json:"ad_account"`
	TrafficSource bool `json:"traffic_source"`
	Funnel        bool `json:"funnel"`
	LeadForm      bool `json:"lead_form"`
	Status        bool `json:"status"`
	PreviousGrade bool `json:"previous_grade"`
	Grade         bool `json:"grade"`
}

// TimeFrames selects the lookback buckets a report is computed over.
type TimeFrames struct {
	Yesterday    bool `json:"yesterday"`
	TwoDays      bool `json:"two_days"`
	FourDays     bool `json:"four_days"`
	SevenDays    bool `json:"seven_days"`
	FourteenDays bool `json:"fourteen_days"`
	ThirtyDays   bool `json:"thirty_days"`
	Total        bool `json:"total"`
}

// Canonical timeframe keys, in bucket order.
const (
	TimeFrameYesterday    = "yesterday"
	TimeFrameTwoDays      = "two_days"
	TimeFrameFourDays     = "four_days"
	TimeFrameSevenDays    = "seven_days"
	TimeFrameFourteenDays = "fourteen_days"
	TimeFrameThirtyDays   = "thirty_days"
	TimeFrameTotal        = "total"
)

// Enabled returns the keys of the selected buckets in canonical order.
func (t TimeFrames) Enabled() []string {
	var out []string
	for _, e := range []struct {
		key string
		on  bool
	}{
		{TimeFrameYesterday, t.Yesterday},
		{TimeFrameTwoDays, t.TwoDays},
		{TimeFrameFourDays, t.FourDays},
		{TimeFrameSevenDays, t.SevenDays},
		{TimeFrameFourteenDays, t.FourteenDays},
		{TimeFrameThirtyDays, t.ThirtyDays},
		{TimeFrameTotal, t.Total},
	} {
		if e.on {
			out = append(out, e.key)
		}
	}
	return out
}

// SalesMetrics are the six per-sale metric flags. The same block repeats
// inside each product group so a group can carry its own selection.
type SalesMetrics struct {
	CountOfSales      bool `json:"count_of_sales"`
	Revenue           bool `json:"revenue"`
	CostPerSale       bool `json:"cost_per_sale"`
	ROAS              bool `json:"roas"`
	AverageOrderValue bool `json:"average_order_value"`
	Refunds           bool `json:"refunds"`
}

// Sales filter types, in fixed precedence order: groups beat individual
// products, which beat "all".
const (
	SalesFilterAll          = "all"
	SalesFilterProduct      = "product"
	SalesFilterProductGroup = "product_group"
)

// ProductGroupConfig is one named product group inside a sales filter.
type ProductGroupConfig struct {
	Name     string       `json:"name"`
	Products []string     `json:"products"`
	Metrics  SalesMetrics `json:"metrics"`
}

// SalesFilter scopes the sales event block to products or product groups.
type SalesFilter struct {
	Type     string               `json:"type"`
	Products []string             `json:"products,omitempty"`
	Groups   []ProductGroupConfig `json:"product_groups,omitempty"`
}

// SalesSeparation splits sales columns out per timeframe bucket.
type SalesSeparation struct {
	Enabled    bool       `json:"enabled"`
	TimeFrames TimeFrames `json:"time_frames"`
}

// SalesEvents is the sales category of the events block.
type SalesEvents struct {
	Metrics    SalesMetrics    `json:"metrics"`
	Filter     SalesFilter     `json:"filter"`
	Separation SalesSeparation `json:"separation"`
}

// CountCostEvents is the shape shared by every count/cost-per category.
type CountCostEvents struct {
	Count   bool `json:"count"`
	CostPer bool `json:"cost_per"`
}

// PlatformAdMetrics are the raw delivery metrics of one ad platform.
type PlatformAdMetrics struct {
	Spend       bool `json:"spend"`
	Impressions bool `json:"impressions"`
	Clicks      bool `json:"clicks"`
	CTR         bool `json:"ctr"`
	CPC         bool `json:"cpc"`
	CPM         bool `json:"cpm"`
}

// AdMetricsEvents splits delivery metrics per source platform.
type AdMetricsEvents struct {
	Meta   PlatformAdMetrics `json:"meta"`
	Google PlatformAdMetrics `json:"google"`
}

// Events is the full per-category metric selection of a report.
type Events struct {
	Sales                  SalesEvents     `json:"sales"`
	LeadFormSubmissions    CountCostEvents `json:"lead_form_submissions"`
	BookedCalls            CountCostEvents `json:"booked_calls"`
	Sets                   CountCostEvents `json:"sets"`
	QualifiedOpportunities CountCostEvents `json:"qualified_opportunities"`
	Offers                 CountCostEvents `json:"offers"`
	AddToCarts             CountCostEvents `json:"add_to_carts"`
	AdMetrics              AdMetricsEvents `json:"ad_metrics"`
}

// ReportConfig is the exact payload shape the dashboard submits on report
// creation and the query layer consumes.
type ReportConfig struct {
	Filters    *FilterNode `json:"filters"`
	Statics    Statics     `json:"statics"`
	TimeFrames TimeFrames  `json:"time_frames"`
	Events     Events      `json:"events"`
}

// Report is a stored report-table definition.
type Report struct {
	ID         string       `json:"id"`
	TableName  string       `json:"tableName"`
	ReportName string       `json:"reportName"`
	Config     ReportConfig `json:"config"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Validate checks the report has names and a well-formed filter tree.
func (r *Report) Validate() error {
	if r == nil {
		return errors.New("report is nil")
	}
	if r.TableName == "" {
		return errors.New("tableName is required")
	}
	if r.ReportName == "" {
		return errors.New("reportName is required")
	}
	if r.Config.Filters == nil {
		return errors.New("filters are required")
	}
	return r.Config.Filters.Validate()
}
