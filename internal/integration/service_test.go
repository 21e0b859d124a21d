package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adaudit/adaudit-api/internal/models"
	"github.com/adaudit/adaudit-api/internal/sse"
	"github.com/adaudit/adaudit-api/internal/storage"
)

func seedHyros(t *testing.T, repo storage.IntegrationRepo) *models.Integration {
	t.Helper()
	in := &models.Integration{
		ID:       "hyros-1",
		Provider: models.ProviderHyros,
		Name:     "Hyros",
		Enabled:  true,
	}
	if err := repo.Upsert(context.Background(), in); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return in
}

func waitEvent(t *testing.T, sub *sse.Subscription, name string) sse.SyncStatus {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sub.C:
			if ev.Name == name {
				status, ok := ev.Data.(sse.SyncStatus)
				if !ok {
					t.Fatalf("event %q carries %T, want SyncStatus", name, ev.Data)
				}
				return status
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %q", name)
		}
	}
}

func TestStartHyrosSync(t *testing.T) {
	t.Run("publishes running and complete events", func(t *testing.T) {
		repo := storage.NewInMemoryIntegrationRepo()
		seedHyros(t, repo)
		hub := sse.NewHub(zap.NewNop())
		sub := hub.Subscribe()

		svc := NewService(repo, hub, nil, SyncRunnerFunc(func(ctx context.Context) error {
			return nil
		}), zap.NewNop())

		if err := svc.StartHyrosSync(context.Background(), "hyros-1"); err != nil {
			t.Fatalf("start: %v", err)
		}

		running := waitEvent(t, sub, sse.EventHyros)
		if running.Status != models.SyncStatusRunning {
			t.Errorf("first event status = %q, want running", running.Status)
		}

		done := waitEvent(t, sub, sse.EventHyrosSyncComplete)
		if done.Status != models.SyncStatusSuccess {
			t.Errorf("terminal status = %q, want success", done.Status)
		}

		in, _ := repo.GetByID(context.Background(), "hyros-1")
		if in.LastSyncAt.IsZero() {
			t.Error("successful sync must record last sync time")
		}
	})

	t.Run("failed runner reports failed", func(t *testing.T) {
		repo := storage.NewInMemoryIntegrationRepo()
		seedHyros(t, repo)
		hub := sse.NewHub(zap.NewNop())
		sub := hub.Subscribe(sse.EventHyrosSyncComplete)

		svc := NewService(repo, hub, nil, SyncRunnerFunc(func(ctx context.Context) error {
			return errors.New("hyros api 503")
		}), zap.NewNop())

		if err := svc.StartHyrosSync(context.Background(), "hyros-1"); err != nil {
			t.Fatalf("start: %v", err)
		}

		done := waitEvent(t, sub, sse.EventHyrosSyncComplete)
		if done.Status != models.SyncStatusFailed {
			t.Errorf("terminal status = %q, want failed", done.Status)
		}
		if done.Message != "hyros api 503" {
			t.Errorf("message = %q", done.Message)
		}

		in, _ := repo.GetByID(context.Background(), "hyros-1")
		if !in.LastSyncAt.IsZero() {
			t.Error("failed sync must not record last sync time")
		}
	})

	t.Run("second start while running gets ErrBusy", func(t *testing.T) {
		repo := storage.NewInMemoryIntegrationRepo()
		seedHyros(t, repo)
		hub := sse.NewHub(zap.NewNop())

		release := make(chan struct{})
		started := make(chan struct{})
		var startedOnce sync.Once
		svc := NewService(repo, hub, nil, SyncRunnerFunc(func(ctx context.Context) error {
			startedOnce.Do(func() { close(started) })
			<-release
			return nil
		}), zap.NewNop())

		sub := hub.Subscribe(sse.EventHyrosSyncComplete)

		if err := svc.StartHyrosSync(context.Background(), "hyros-1"); err != nil {
			t.Fatalf("first start: %v", err)
		}
		<-started

		if err := svc.StartHyrosSync(context.Background(), "hyros-1"); !errors.Is(err, ErrBusy) {
			t.Errorf("second start err = %v, want ErrBusy", err)
		}

		close(release)
		waitEvent(t, sub, sse.EventHyrosSyncComplete)

		// After completion the guard is released.
		if err := svc.StartHyrosSync(context.Background(), "hyros-1"); err != nil {
			t.Errorf("restart after completion: %v", err)
		}
	})

	t.Run("unconfigured runner reports failed", func(t *testing.T) {
		repo := storage.NewInMemoryIntegrationRepo()
		seedHyros(t, repo)
		hub := sse.NewHub(zap.NewNop())
		sub := hub.Subscribe(sse.EventHyrosSyncComplete)

		svc := NewService(repo, hub, nil, UnconfiguredRunner(), zap.NewNop())

		if err := svc.StartHyrosSync(context.Background(), "hyros-1"); err != nil {
			t.Fatalf("start: %v", err)
		}

		done := waitEvent(t, sub, sse.EventHyrosSyncComplete)
		if done.Status != models.SyncStatusFailed {
			t.Errorf("terminal status = %q, want failed", done.Status)
		}
		if done.Message != "hyros sync runner not configured" {
			t.Errorf("message = %q", done.Message)
		}

		in, _ := repo.GetByID(context.Background(), "hyros-1")
		if !in.LastSyncAt.IsZero() {
			t.Error("a failed sync must not stamp the last sync time")
		}
	})

	t.Run("rejects non-hyros integrations", func(t *testing.T) {
		repo := storage.NewInMemoryIntegrationRepo()
		repo.Upsert(context.Background(), &models.Integration{
			ID: "meta-1", Provider: models.ProviderMeta, Name: "Meta",
		})
		svc := NewService(repo, sse.NewHub(zap.NewNop()), nil, nil, zap.NewNop())

		if err := svc.StartHyrosSync(context.Background(), "meta-1"); err == nil {
			t.Error("meta integration must not start a hyros sync")
		}
		if err := svc.StartHyrosSync(context.Background(), "ghost"); err == nil {
			t.Error("unknown id must error")
		}
	})
}

func TestSyncStatusMirror(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := storage.NewInMemoryIntegrationRepo()
	seedHyros(t, repo)
	hub := sse.NewHub(zap.NewNop())
	sub := hub.Subscribe(sse.EventHyrosSyncComplete)

	svc := NewService(repo, hub, client, SyncRunnerFunc(func(ctx context.Context) error {
		return nil
	}), zap.NewNop())

	if got := svc.SyncStatus(context.Background()); got != models.SyncStatusIdle {
		t.Errorf("initial status = %q, want idle", got)
	}

	if err := svc.StartHyrosSync(context.Background(), "hyros-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitEvent(t, sub, sse.EventHyrosSyncComplete)

	if got := svc.SyncStatus(context.Background()); got != models.SyncStatusSuccess {
		t.Errorf("status after sync = %q, want success", got)
	}
}

func TestToggleCron(t *testing.T) {
	t.Run("flips the flag", func(t *testing.T) {
		repo := storage.NewInMemoryIntegrationRepo()
		seedHyros(t, repo)
		svc := NewService(repo, sse.NewHub(zap.NewNop()), nil, nil, zap.NewNop())

		if err := svc.ToggleCron(context.Background(), "hyros-1", true); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		in, _ := repo.GetByID(context.Background(), "hyros-1")
		if !in.CronEnabled {
			t.Error("cron flag should be enabled")
		}
	})

	t.Run("unknown id errors", func(t *testing.T) {
		svc := NewService(storage.NewInMemoryIntegrationRepo(), sse.NewHub(zap.NewNop()), nil, nil, zap.NewNop())
		if err := svc.ToggleCron(context.Background(), "ghost", true); err == nil {
			t.Error("unknown id must error")
		}
	})
}

func TestUpsertAssignsIdentity(t *testing.T) {
	repo := storage.NewInMemoryIntegrationRepo()
	svc := NewService(repo, sse.NewHub(zap.NewNop()), nil, nil, zap.NewNop())

	in := &models.Integration{Provider: models.ProviderCalendly, Name: "Calendly"}
	if err := svc.Upsert(context.Background(), in); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if in.ID == "" {
		t.Error("ID should be assigned")
	}
	if in.CreatedAt.IsZero() || in.UpdatedAt.IsZero() {
		t.Error("timestamps should be stamped")
	}

	if err := svc.Upsert(context.Background(), &models.Integration{Provider: "fax", Name: "Fax"}); err == nil {
		t.Error("unknown provider must fail validation")
	}
}
