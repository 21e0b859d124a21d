package report

// Metric labels as the dashboard displays them. The serializer works purely
// off membership of these labels in a Selection; a label outside this
// vocabulary never sets any payload leaf.
const (
	LabelCountOfSales      = "# of Sales"
	LabelRevenue           = "Revenue"
	LabelCostPerSale       = "Cost per Sale"
	LabelROAS              = "ROAS"
	LabelAverageOrderValue = "Average Order Value"
	LabelRefunds           = "# of Refunds"

	LabelCountOfLeads = "# of Leads"
	LabelCostPerLead  = "Cost per Lead"

	LabelCountOfBookedCalls = "# of Booked Calls"
	LabelCostPerBookedCall  = "Cost per Booked Call"

	LabelCountOfSets = "# of Sets"
	LabelCostPerSet  = "Cost per Set"

	LabelCountOfQualifiedOpportunities = "# of Qualified Opportunities"
	LabelCostPerQualifiedOpportunity   = "Cost per Qualified Opportunity"

	LabelCountOfOffers = "# of Offers"
	LabelCostPerOffer  = "Cost per Offer"

	LabelCountOfAddToCarts = "# of Add to Carts"
	LabelCostPerAddToCart  = "Cost per Add to Cart"

	LabelMetaSpend       = "Meta Spend"
	LabelMetaImpressions = "Meta Impressions"
	LabelMetaClicks      = "Meta Clicks"
	LabelMetaCTR         = "Meta CTR"
	LabelMetaCPC         = "Meta CPC"
	LabelMetaCPM         = "Meta CPM"

	LabelGoogleSpend       = "Google Spend"
	LabelGoogleImpressions = "Google Impressions"
	LabelGoogleClicks      = "Google Clicks"
	LabelGoogleCTR         = "Google CTR"
	LabelGoogleCPC         = "Google CPC"
	LabelGoogleCPM         = "Google CPM"

	LabelAdAccount     = "Ad Account"
	LabelTrafficSource = "Traffic Source"
	LabelFunnel        = "Funnel"
	LabelLeadForm      = "Lead Form"
	LabelStatus        = "Status"

	LabelYesterday    = "Yesterday"
	LabelTwoDays      = "2 Days"
	LabelFourDays     = "4 Days"
	LabelSevenDays    = "7 Days"
	LabelFourteenDays = "14 Days"
	LabelThirtyDays   = "30 Days"
	LabelTotal        = "Total"
)

// costPerBase maps each "Cost per X" label to its "# of X" base. A cost-per
// metric only exists relative to its base count, hence the one-directional
// coupling: checking the cost-per requires the base checked, unchecking the
// base cascades to the cost-per. The reverse direction is unconstrained.
var costPerBase = map[string]string{
	LabelCostPerSale:                 LabelCountOfSales,
	LabelCostPerLead:                 LabelCountOfLeads,
	LabelCostPerBookedCall:           LabelCountOfBookedCalls,
	LabelCostPerSet:                  LabelCountOfSets,
	LabelCostPerQualifiedOpportunity: LabelCountOfQualifiedOpportunities,
	LabelCostPerOffer:                LabelCountOfOffers,
	LabelCostPerAddToCart:            LabelCountOfAddToCarts,
}

// baseCostPer is the inverse index, base label -> its cost-per label.
var baseCostPer = func() map[string]string {
	m := make(map[string]string, len(costPerBase))
	for cost, base := range costPerBase {
		m[base] = cost
	}
	return m
}()

// Selection is the set of checked metric labels. The zero value is not
// usable; construct with NewSelection.
type Selection struct {
	checked map[string]bool
}

// NewSelection returns a selection with the given labels pre-checked.
// Pre-checking bypasses the cascade so stored selections round-trip as-is.
func NewSelection(labels ...string) *Selection {
	s := &Selection{checked: make(map[string]bool, len(labels))}
	for _, l := range labels {
		s.checked[l] = true
	}
	return s
}

// Has reports whether label is checked.
func (s *Selection) Has(label string) bool {
	return s.checked[label]
}

// Check marks label as checked. A "Cost per X" label is refused (no-op,
// returns false) while its base "# of X" label is unchecked.
func (s *Selection) Check(label string) bool {
	if base, ok := costPerBase[label]; ok && !s.checked[base] {
		return false
	}
	s.checked[label] = true
	return true
}

// Uncheck removes label from the selection. Unchecking a base "# of X"
// label cascades to its "Cost per X" counterpart.
func (s *Selection) Uncheck(label string) {
	delete(s.checked, label)
	if cost, ok := baseCostPer[label]; ok {
		delete(s.checked, cost)
	}
}

// Labels returns the checked labels in unspecified order.
func (s *Selection) Labels() []string {
	out := make([]string, 0, len(s.checked))
	for l := range s.checked {
		out = append(out, l)
	}
	return out
}

// Len returns the number of checked labels.
func (s *Selection) Len() int {
	return len(s.checked)
}
