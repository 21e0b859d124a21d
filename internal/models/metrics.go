package models

import (
	"encoding/json"
	"strconv"
)

// NullString is a SQL-nullable string as it appears on the wire. Upstream
// services serialize nullable columns either as a plain scalar, as null, or
// as the envelope form {"String": "...", "Valid": true}. All three decode
// into the same normalized value so nothing downstream ever branches on
// envelope shape.
type NullString struct {
	String string
	Valid  bool
}

// Value returns the plain string, empty when invalid.
func (n NullString) Value() string {
	if !n.Valid {
		return ""
	}
	return n.String
}

func (n *NullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullString{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = NullString{String: s, Valid: true}
		return nil
	}
	var env struct {
		String string `json:"String"`
		Valid  *bool  `json:"Valid"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*n = NullString{String: env.String, Valid: env.Valid == nil || *env.Valid}
	return nil
}

func (n NullString) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.String)
}

// NullInt64 is the numeric counterpart of NullString, accepting a plain
// number, null, or {"Int64": n, "Valid": true}.
type NullInt64 struct {
	Int64 int64
	Valid bool
}

// Value returns the plain int64, zero when invalid.
func (n NullInt64) Value() int64 {
	if !n.Valid {
		return 0
	}
	return n.Int64
}

// Key returns the decimal string form, used when the value keys a map.
func (n NullInt64) Key() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(n.Int64, 10)
}

func (n *NullInt64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullInt64{}
		return nil
	}
	var i int64
	if err := json.Unmarshal(data, &i); err == nil {
		*n = NullInt64{Int64: i, Valid: true}
		return nil
	}
	var env struct {
		Int64 int64 `json:"Int64"`
		Valid *bool `json:"Valid"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*n = NullInt64{Int64: env.Int64, Valid: env.Valid == nil || *env.Valid}
	return nil
}

func (n NullInt64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Int64)
}

// Ad is one creative-level row. Per-timeframe values accumulate on the same
// logical ad across result pages, so the timeframe label rides along.
type Ad struct {
	ID          NullString `json:"id"`
	Name        NullString `json:"name"`
	TimeFrame   string     `json:"time_frame,omitempty"`
	Spend       float64    `json:"spend"`
	Impressions int64      `json:"impressions"`
	Clicks      int64      `json:"clicks"`
	CTR         float64    `json:"ctr"`
	CPC         float64    `json:"cpc"`
	CPM         float64    `json:"cpm"`
	Sales       int64      `json:"sales"`
	Revenue     float64    `json:"revenue"`
	Leads       int64      `json:"leads"`
	BookedCalls int64      `json:"booked_calls"`
}

// AdSet groups ads inside a Meta campaign.
type AdSet struct {
	ID   NullString `json:"id"`
	Name NullString `json:"name"`
	Ads  []Ad       `json:"ads"`
}

// AdGroup is the Google-side counterpart of AdSet.
type AdGroup struct {
	ID   NullInt64  `json:"id"`
	Name NullString `json:"name"`
	Ads  []Ad       `json:"ads"`
}

// MetricsCampaign is one campaign row in a metrics result page. Meta
// campaigns nest AdSets, Google campaigns nest AdGroups; the unused side is
// empty rather than null-checked everywhere.
type MetricsCampaign struct {
	ID        NullString `json:"id"`
	Name      NullString `json:"name"`
	AccountID NullString `json:"account_id"`
	Status    NullString `json:"status"`
	AdSets    []AdSet    `json:"adsets,omitempty"`
	AdGroups  []AdGroup  `json:"adgroups,omitempty"`
}

// MetricsResult is one per-timeframe result page. Meta campaigns arrive
// under "value" and Google campaigns under "google"; the asymmetric naming
// is a wire contract shared with the dashboard and must not change.
type MetricsResult struct {
	Label  string              `json:"label"`
	Value  [][]MetricsCampaign `json:"value"`
	Google [][]MetricsCampaign `json:"google"`
}

// MetaCampaigns returns the Meta campaign array of the page, tolerating a
// missing or empty outer wrapper.
func (m *MetricsResult) MetaCampaigns() []MetricsCampaign {
	if len(m.Value) == 0 {
		return nil
	}
	return m.Value[0]
}

// GoogleCampaigns returns the Google campaign array of the page.
func (m *MetricsResult) GoogleCampaigns() []MetricsCampaign {
	if len(m.Google) == 0 {
		return nil
	}
	return m.Google[0]
}
