package report

import (
	"context"
	"testing"

	"github.com/adaudit/adaudit-api/internal/models"
	"github.com/adaudit/adaudit-api/internal/storage"
)

func newTestService() (*Service, *storage.InMemoryMetricsStore) {
	store := storage.NewInMemoryMetricsStore()
	return NewService(storage.NewInMemoryReportRepo(), store), store
}

func validReport() *models.Report {
	return &models.Report{
		TableName:  "main",
		ReportName: "Main dashboard",
		Config: models.ReportConfig{
			Filters:    models.DefaultFilterNode(),
			TimeFrames: models.TimeFrames{Yesterday: true, Total: true},
		},
	}
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		svc, _ := newTestService()
		rep := validReport()

		if err := svc.Create(ctx, rep); err != nil {
			t.Fatalf("create: %v", err)
		}
		if rep.ID == "" {
			t.Error("ID should be assigned")
		}
		if rep.CreatedAt.IsZero() || rep.UpdatedAt.IsZero() {
			t.Error("timestamps should be stamped")
		}

		got, err := svc.Get(ctx, rep.ID)
		if err != nil || got == nil {
			t.Fatalf("get after create: %v, %v", got, err)
		}
	})

	t.Run("rejects a report without names", func(t *testing.T) {
		svc, _ := newTestService()
		rep := validReport()
		rep.TableName = ""

		if err := svc.Create(ctx, rep); err == nil {
			t.Error("missing tableName must fail")
		}
	})

	t.Run("rejects a malformed filter tree", func(t *testing.T) {
		svc, _ := newTestService()
		rep := validReport()
		rep.Config.Filters = &models.FilterNode{Type: models.NodeTypeAnd}

		if err := svc.Create(ctx, rep); err == nil {
			t.Error("combinator without children must fail")
		}
	})
}

func TestServiceResults(t *testing.T) {
	ctx := context.Background()

	t.Run("missing report yields nil forests", func(t *testing.T) {
		svc, _ := newTestService()
		forests, err := svc.Results(ctx, "ghost")
		if err != nil {
			t.Fatalf("results: %v", err)
		}
		if forests != nil {
			t.Errorf("got %+v, want nil", forests)
		}
	})

	t.Run("aggregates the report's enabled buckets", func(t *testing.T) {
		svc, store := newTestService()
		store.SeedPage(models.TimeFrameYesterday, models.MetricsResult{
			Label: models.TimeFrameYesterday,
			Value: [][]models.MetricsCampaign{{
				{ID: ns("123"), Name: ns("Launch"), AdSets: []models.AdSet{
					{ID: ns("a1"), Ads: []models.Ad{{ID: ns("ad-1")}}},
				}},
			}},
		})
		store.SeedPage(models.TimeFrameTotal, models.MetricsResult{
			Label: models.TimeFrameTotal,
			Value: [][]models.MetricsCampaign{{
				{ID: ns("123"), AdSets: []models.AdSet{
					{ID: ns("a1"), Ads: []models.Ad{{ID: ns("ad-1")}}},
				}},
			}},
		})
		// Not part of the report's timeframe selection.
		store.SeedPage(models.TimeFrameThirtyDays, models.MetricsResult{
			Label: models.TimeFrameThirtyDays,
			Value: [][]models.MetricsCampaign{{{ID: ns("999")}}},
		})

		rep := validReport()
		if err := svc.Create(ctx, rep); err != nil {
			t.Fatalf("create: %v", err)
		}

		forests, err := svc.Results(ctx, rep.ID)
		if err != nil {
			t.Fatalf("results: %v", err)
		}
		if forests == nil || len(forests.Meta) != 1 {
			t.Fatalf("forests = %+v, want one meta campaign", forests)
		}
		if got := len(forests.Meta[0].AdSets[0].Ads); got != 2 {
			t.Errorf("ads = %d, want 2 (one per enabled bucket)", got)
		}
	})
}
