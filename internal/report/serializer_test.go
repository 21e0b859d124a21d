package report

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/adaudit/adaudit-api/internal/filtertree"
	"github.com/adaudit/adaudit-api/internal/models"
)

func TestSerialize(t *testing.T) {
	t.Run("empty selection produces an all-false payload except grades", func(t *testing.T) {
		cfg := Serialize(models.DefaultFilterNode(), NewSelection(), nil, nil, Separation{})

		if !cfg.Statics.PreviousGrade || !cfg.Statics.Grade {
			t.Error("grade columns must always be on")
		}
		if cfg.Statics.AdAccount || cfg.Statics.Status {
			t.Error("unchecked statics must be false")
		}
		if len(cfg.TimeFrames.Enabled()) != 0 {
			t.Errorf("time frames = %v, want none", cfg.TimeFrames.Enabled())
		}
		if cfg.Events.Sales.Filter.Type != models.SalesFilterAll {
			t.Errorf("sales filter type = %q, want all", cfg.Events.Sales.Filter.Type)
		}
		if cfg.Events.Sales.Separation.Enabled {
			t.Error("separation must be off by default")
		}
	})

	t.Run("checked labels set exactly their leaves", func(t *testing.T) {
		sel := NewSelection(
			LabelCountOfSales, LabelRevenue,
			LabelCountOfLeads, LabelCostPerLead,
			LabelMetaSpend, LabelGoogleCPM,
			LabelAdAccount, LabelYesterday, LabelThirtyDays,
		)
		cfg := Serialize(models.DefaultFilterNode(), sel, nil, nil, Separation{})

		if !cfg.Events.Sales.Metrics.CountOfSales || !cfg.Events.Sales.Metrics.Revenue {
			t.Error("sales metrics must reflect the selection")
		}
		if cfg.Events.Sales.Metrics.CostPerSale {
			t.Error("unchecked Cost per Sale must stay false")
		}
		if !cfg.Events.LeadFormSubmissions.Count || !cfg.Events.LeadFormSubmissions.CostPer {
			t.Error("lead leaves must both be set")
		}
		if cfg.Events.BookedCalls.Count {
			t.Error("booked calls were not selected")
		}
		if !cfg.Events.AdMetrics.Meta.Spend || cfg.Events.AdMetrics.Meta.Clicks {
			t.Error("meta ad metrics must match the selection")
		}
		if !cfg.Events.AdMetrics.Google.CPM || cfg.Events.AdMetrics.Google.Spend {
			t.Error("google ad metrics must match the selection")
		}
		if !cfg.Statics.AdAccount {
			t.Error("Ad Account static must be set")
		}
		want := []string{models.TimeFrameYesterday, models.TimeFrameThirtyDays}
		if got := cfg.TimeFrames.Enabled(); !reflect.DeepEqual(got, want) {
			t.Errorf("time frames = %v, want %v", got, want)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		sel := NewSelection(LabelRevenue, LabelROAS, LabelTotal, LabelFunnel)
		tree := models.DefaultFilterNode()

		a, err := json.Marshal(Serialize(tree, sel, nil, nil, Separation{}))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		for i := 0; i < 10; i++ {
			b, err := json.Marshal(Serialize(tree, sel, nil, nil, Separation{}))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(a) != string(b) {
				t.Fatalf("run %d differs:\n%s\n%s", i, a, b)
			}
		}
	})

	t.Run("unknown labels set nothing", func(t *testing.T) {
		empty, err := json.Marshal(Serialize(models.DefaultFilterNode(), NewSelection(), nil, nil, Separation{}))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		withJunk, err := json.Marshal(Serialize(models.DefaultFilterNode(), NewSelection("Clicks", "spend", "# of sales"), nil, nil, Separation{}))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(empty) != string(withJunk) {
			t.Errorf("labels outside the vocabulary changed the payload:\n%s\n%s", empty, withJunk)
		}
	})

	t.Run("filter tree is attached verbatim", func(t *testing.T) {
		tree := &models.FilterNode{
			Type: models.NodeTypeNode,
			Rule: &models.FilterRule{
				Field:    models.FieldTrafficSource,
				Operator: models.OpIs,
				Value:    []string{"meta"},
			},
		}
		cfg := Serialize(tree, NewSelection(), nil, nil, Separation{})
		if cfg.Filters != tree {
			t.Error("filters must carry the input tree")
		}
	})
}

func TestSerializeSalesFilter(t *testing.T) {
	t.Run("individual products select the product filter", func(t *testing.T) {
		cfg := Serialize(models.DefaultFilterNode(), NewSelection(), []string{"Course A", "Course B"}, nil, Separation{})

		f := cfg.Events.Sales.Filter
		if f.Type != models.SalesFilterProduct {
			t.Fatalf("type = %q, want product", f.Type)
		}
		if !reflect.DeepEqual(f.Products, []string{"Course A", "Course B"}) {
			t.Errorf("products = %v", f.Products)
		}
		if len(f.Groups) != 0 {
			t.Error("groups must be empty for a product filter")
		}
	})

	t.Run("groups beat individual products", func(t *testing.T) {
		groups := []ProductGroup{
			{Name: "High Ticket", Products: []string{"Mastermind"}, Labels: []string{LabelCountOfSales, LabelRevenue}},
			{Name: "Low Ticket", Products: []string{"Ebook"}, Labels: []string{LabelRefunds}},
		}
		cfg := Serialize(models.DefaultFilterNode(), NewSelection(), []string{"ignored"}, groups, Separation{})

		f := cfg.Events.Sales.Filter
		if f.Type != models.SalesFilterProductGroup {
			t.Fatalf("type = %q, want product_group", f.Type)
		}
		if len(f.Groups) != 2 {
			t.Fatalf("groups = %d, want 2", len(f.Groups))
		}
		if len(f.Products) != 0 {
			t.Error("individual products must be dropped when groups exist")
		}

		ht := f.Groups[0]
		if ht.Name != "High Ticket" || !ht.Metrics.CountOfSales || !ht.Metrics.Revenue || ht.Metrics.Refunds {
			t.Errorf("group metrics = %+v", ht.Metrics)
		}
		lt := f.Groups[1]
		if !lt.Metrics.Refunds || lt.Metrics.CountOfSales {
			t.Errorf("group metrics = %+v", lt.Metrics)
		}
	})

	t.Run("separation maps its own timeframe labels", func(t *testing.T) {
		sep := Separation{Enabled: true, TimeFrames: []string{LabelSevenDays, LabelTotal}}
		cfg := Serialize(models.DefaultFilterNode(), NewSelection(LabelYesterday), nil, nil, sep)

		s := cfg.Events.Sales.Separation
		if !s.Enabled {
			t.Fatal("separation must be enabled")
		}
		want := []string{models.TimeFrameSevenDays, models.TimeFrameTotal}
		if got := s.TimeFrames.Enabled(); !reflect.DeepEqual(got, want) {
			t.Errorf("separation time frames = %v, want %v", got, want)
		}
		// The report's own timeframe block is independent of separation.
		if !cfg.TimeFrames.Yesterday || cfg.TimeFrames.SevenDays {
			t.Error("report time frames must follow the main selection only")
		}
	})
}

// TestBuildReportFlow walks the whole builder path: start from the default
// tree, retarget the rule to an ad account, pick two sales metrics, and
// serialize.
func TestBuildReportFlow(t *testing.T) {
	tree := filtertree.SetRuleField(models.DefaultFilterNode(), nil, "field", string(models.FieldAdAccountID))

	sel := NewSelection()
	sel.Check(LabelCountOfSales)
	sel.Check(LabelRevenue)

	raw, err := json.Marshal(Serialize(tree, sel, nil, nil, Separation{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	salesMetrics := payload["events"].(map[string]any)["sales"].(map[string]any)["metrics"].(map[string]any)
	for key, want := range map[string]bool{
		"count_of_sales":      true,
		"revenue":             true,
		"cost_per_sale":       false,
		"roas":                false,
		"average_order_value": false,
		"refunds":             false,
	} {
		if salesMetrics[key] != want {
			t.Errorf("sales.metrics.%s = %v, want %v", key, salesMetrics[key], want)
		}
	}

	rule := payload["filters"].(map[string]any)["rule"].(map[string]any)
	if rule["field"] != "ad_account_id" {
		t.Errorf("filters.rule.field = %v, want ad_account_id", rule["field"])
	}
	if rule["operator"] != "Is" {
		t.Errorf("filters.rule.operator = %v, want Is (reset on field change)", rule["operator"])
	}
}

// TestSerializePayloadPaths pins the exact JSON paths the dashboard and the
// query layer agreed on.
func TestSerializePayloadPaths(t *testing.T) {
	sel := NewSelection(LabelCountOfSales, LabelRevenue)
	tree := &models.FilterNode{
		Type: models.NodeTypeNode,
		Rule: &models.FilterRule{
			Field:    models.FieldCampaignName,
			Operator: models.OpContains,
			Value:    []string{"Black Friday"},
		},
	}

	raw, err := json.Marshal(Serialize(tree, sel, nil, nil, Separation{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	events := payload["events"].(map[string]any)
	sales := events["sales"].(map[string]any)
	salesMetrics := sales["metrics"].(map[string]any)
	if salesMetrics["count_of_sales"] != true {
		t.Error("events.sales.metrics.count_of_sales must be true")
	}
	if salesMetrics["revenue"] != true {
		t.Error("events.sales.metrics.revenue must be true")
	}
	if salesMetrics["roas"] != false {
		t.Error("events.sales.metrics.roas must be false")
	}

	filters := payload["filters"].(map[string]any)
	rule := filters["rule"].(map[string]any)
	if rule["field"] != "campaign_name" {
		t.Errorf("filters.rule.field = %v, want campaign_name", rule["field"])
	}
	if rule["operator"] != "Contains" {
		t.Errorf("filters.rule.operator = %v", rule["operator"])
	}
}
