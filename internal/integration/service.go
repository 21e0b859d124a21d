// Package integration manages configured connections to the external ad
// and scheduling platforms (Meta, Google, Hyros, Calendly, OnceHub,
// Typeform) and runs the Hyros background sync.
package integration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adaudit/adaudit-api/internal/metrics"
	"github.com/adaudit/adaudit-api/internal/models"
	"github.com/adaudit/adaudit-api/internal/sse"
	"github.com/adaudit/adaudit-api/internal/storage"
)

// ErrBusy is returned when a mutation is already in flight for the same
// integration. One in-flight mutation per entity: a second toggle or sync
// request for the same ID is rejected instead of queued.
var ErrBusy = errors.New("integration operation already in flight")

// redis key for the mirrored hyros sync status.
const syncStatusKey = "adaudit:sync:hyros"

// SyncRunner performs the actual provider sync. Separated out so tests and
// the dev setup can substitute the network-bound implementation.
type SyncRunner interface {
	Run(ctx context.Context) error
}

// SyncRunnerFunc adapts a function to SyncRunner.
type SyncRunnerFunc func(ctx context.Context) error

func (f SyncRunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// UnconfiguredRunner is the fallback SyncRunner for deployments without a
// Hyros client. It fails immediately, so a triggered sync reports failed
// instead of pretending it moved data.
func UnconfiguredRunner() SyncRunner {
	return SyncRunnerFunc(func(ctx context.Context) error {
		return errors.New("hyros sync runner not configured")
	})
}

// Service provides integration CRUD, the cron toggle, and the Hyros sync.
type Service struct {
	repo   storage.IntegrationRepo
	hub    *sse.Hub
	redis  *redis.Client
	runner SyncRunner
	logger *zap.Logger
	mx     *metrics.Metrics

	mu       sync.Mutex
	inFlight map[string]bool
}

// SetMetrics attaches the metrics collector.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.mx = m
}

// NewService constructs an integration Service. redis may be nil (status
// mirroring is best-effort) and runner may be nil (sync becomes a no-op
// that still emits the terminal event).
func NewService(repo storage.IntegrationRepo, hub *sse.Hub, rdb *redis.Client, runner SyncRunner, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		hub:      hub,
		redis:    rdb,
		runner:   runner,
		logger:   logger,
		inFlight: make(map[string]bool),
	}
}

// List returns all integrations.
func (s *Service) List(ctx context.Context) ([]*models.Integration, error) {
	return s.repo.ListAll(ctx)
}

// Get returns an integration by ID, or nil when not found.
func (s *Service) Get(ctx context.Context, id string) (*models.Integration, error) {
	return s.repo.GetByID(ctx, id)
}

// Upsert validates and stores an integration, assigning an ID when absent.
func (s *Service) Upsert(ctx context.Context, in *models.Integration) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	in.UpdatedAt = now
	if err := in.Validate(); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, in)
}

// Delete removes an integration.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ToggleCron flips the scheduled-sync flag. The per-ID in-flight guard
// makes the toggle at-most-once concurrently: a second request for the
// same integration gets ErrBusy while the first is still being applied.
func (s *Service) ToggleCron(ctx context.Context, id string, enabled bool) error {
	if !s.acquire(id) {
		return ErrBusy
	}
	defer s.release(id)

	in, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if in == nil {
		return errors.New("integration not found")
	}
	if err := s.repo.SetCronEnabled(ctx, id, enabled); err != nil {
		return err
	}
	if s.mx != nil {
		s.mx.RecordCronToggle(string(in.Provider), enabled)
	}
	return nil
}

// StartHyrosSync launches the Hyros sync in the background and returns
// immediately. Progress and the terminal event go out over the SSE hub;
// the status is mirrored to redis best-effort. A sync already in flight
// returns ErrBusy.
func (s *Service) StartHyrosSync(ctx context.Context, id string) error {
	in, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if in == nil || in.Provider != models.ProviderHyros {
		return errors.New("hyros integration not found")
	}
	if !s.acquire(id) {
		return ErrBusy
	}

	// Detached from the request context: navigating away from the
	// dashboard must not cancel a running sync.
	go s.runSync(context.Background(), id)
	return nil
}

func (s *Service) runSync(ctx context.Context, id string) {
	defer s.release(id)
	start := time.Now()

	s.setStatus(ctx, models.SyncStatusRunning, "sync started")
	s.hub.Publish(sse.Event{Name: sse.EventHyros, Data: sse.SyncStatus{
		Status:  models.SyncStatusRunning,
		Message: "hyros sync started",
	}})

	var runErr error
	if s.runner != nil {
		runErr = s.runner.Run(ctx)
	}

	status := models.SyncStatusSuccess
	message := "hyros sync complete"
	if runErr != nil {
		status = models.SyncStatusFailed
		message = runErr.Error()
		s.logger.Error("hyros sync failed", zap.String("integration_id", id), zap.Error(runErr))
	} else {
		now := time.Now().UTC()
		if in, err := s.repo.GetByID(ctx, id); err == nil && in != nil {
			in.LastSyncAt = now
			in.UpdatedAt = now
			if err := s.repo.Upsert(ctx, in); err != nil {
				s.logger.Warn("failed to record last sync time", zap.Error(err))
			}
		}
	}

	s.setStatus(ctx, status, message)
	if s.mx != nil {
		s.mx.RecordSyncRun(string(models.ProviderHyros), status, time.Since(start))
	}
	s.hub.Publish(sse.Event{Name: sse.EventHyrosSyncComplete, Data: sse.SyncStatus{
		Status:  status,
		Message: message,
	}})
}

// SyncStatus reads the mirrored sync status from redis, defaulting to idle.
func (s *Service) SyncStatus(ctx context.Context) string {
	if s.redis == nil {
		return models.SyncStatusIdle
	}
	status, err := s.redis.Get(ctx, syncStatusKey).Result()
	if err != nil {
		return models.SyncStatusIdle
	}
	return status
}

func (s *Service) setStatus(ctx context.Context, status, message string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, syncStatusKey, status, 24*time.Hour).Err(); err != nil {
		s.logger.Warn("failed to mirror sync status",
			zap.String("status", status),
			zap.String("message", message),
			zap.Error(err),
		)
	}
}

func (s *Service) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return false
	}
	s.inFlight[id] = true
	return true
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}
