package models

// AdAccount is one selectable ad account in the filter-value pickers.
type AdAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

// FieldOptions bundles the option lists that populate the report builder's
// filter-value pickers.
type FieldOptions struct {
	CampaignNames []string               `json:"campaign_names"`
	AdAccounts    map[string][]AdAccount `json:"ad_accounts"`
	AdPlatforms   []string               `json:"ad_platforms"`
}
