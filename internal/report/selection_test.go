package report

import (
	"testing"
)

func TestSelectionCheck(t *testing.T) {
	t.Run("plain labels toggle freely", func(t *testing.T) {
		sel := NewSelection()
		if !sel.Check(LabelRevenue) {
			t.Fatal("Revenue should be checkable")
		}
		if !sel.Has(LabelRevenue) {
			t.Error("Revenue should be checked")
		}
		sel.Uncheck(LabelRevenue)
		if sel.Has(LabelRevenue) {
			t.Error("Revenue should be unchecked")
		}
	})

	t.Run("cost-per is refused without its base", func(t *testing.T) {
		sel := NewSelection()
		if sel.Check(LabelCostPerLead) {
			t.Error("Cost per Lead must be refused while # of Leads is unchecked")
		}
		if sel.Has(LabelCostPerLead) {
			t.Error("refused check must not leave the label set")
		}
	})

	t.Run("cost-per is allowed once the base is checked", func(t *testing.T) {
		sel := NewSelection()
		sel.Check(LabelCountOfLeads)
		if !sel.Check(LabelCostPerLead) {
			t.Error("Cost per Lead should be checkable after # of Leads")
		}
	})

	t.Run("base does not require its cost-per", func(t *testing.T) {
		sel := NewSelection()
		if !sel.Check(LabelCountOfSales) {
			t.Error("base count must check independently")
		}
	})
}

func TestSelectionUncheck(t *testing.T) {
	t.Run("unchecking the base cascades to the cost-per", func(t *testing.T) {
		sel := NewSelection()
		sel.Check(LabelCountOfBookedCalls)
		sel.Check(LabelCostPerBookedCall)

		sel.Uncheck(LabelCountOfBookedCalls)

		if sel.Has(LabelCostPerBookedCall) {
			t.Error("Cost per Booked Call must cascade off with its base")
		}
	})

	t.Run("unchecking the cost-per leaves the base alone", func(t *testing.T) {
		sel := NewSelection()
		sel.Check(LabelCountOfOffers)
		sel.Check(LabelCostPerOffer)

		sel.Uncheck(LabelCostPerOffer)

		if !sel.Has(LabelCountOfOffers) {
			t.Error("# of Offers must survive unchecking its cost-per")
		}
	})

	t.Run("cascade only touches the paired label", func(t *testing.T) {
		sel := NewSelection()
		sel.Check(LabelCountOfSets)
		sel.Check(LabelCostPerSet)
		sel.Check(LabelCountOfLeads)
		sel.Check(LabelCostPerLead)

		sel.Uncheck(LabelCountOfSets)

		if !sel.Has(LabelCostPerLead) {
			t.Error("unrelated cost-per labels must be untouched")
		}
	})
}

func TestNewSelectionBypassesCascade(t *testing.T) {
	// Stored selections are replayed verbatim; a cost-per without its base
	// is the caller's business at construction time.
	sel := NewSelection(LabelCostPerSale)
	if !sel.Has(LabelCostPerSale) {
		t.Error("pre-checked labels must round-trip as-is")
	}
	if sel.Len() != 1 {
		t.Errorf("Len = %d, want 1", sel.Len())
	}
}
