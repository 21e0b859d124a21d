package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adaudit/adaudit-api/internal/config"
	"github.com/adaudit/adaudit-api/internal/database"
	"github.com/adaudit/adaudit-api/internal/integration"
	"github.com/adaudit/adaudit-api/internal/metrics"
	"github.com/adaudit/adaudit-api/internal/models"
	"github.com/adaudit/adaudit-api/internal/report"
	"github.com/adaudit/adaudit-api/internal/sse"
	"github.com/adaudit/adaudit-api/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB         *database.PostgresDB
	Redis      *database.RedisDB
	ClickHouse *database.ClickHouseDB
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	SyncRunner integration.SyncRunner
}

// Server wraps HTTP handlers and reporting services.
type Server struct {
	reportService      *report.Service
	optionsService     *report.OptionsService
	integrationService *integration.Service
	hub                *sse.Hub
	logger             *zap.Logger
	config             *config.Config
	metrics            *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	// Initialize repositories
	var repRepo storage.ReportRepo
	var intRepo storage.IntegrationRepo
	var metricsStore storage.MetricsStore

	if deps.DB != nil {
		repRepo = storage.NewPostgresReportRepo(deps.DB.Pool)
		intRepo = storage.NewPostgresIntegrationRepo(deps.DB.Pool)
	} else {
		repRepo = storage.NewInMemoryReportRepo()
		intRepo = storage.NewInMemoryIntegrationRepo()
	}

	if deps.ClickHouse != nil {
		metricsStore = storage.NewClickHouseMetricsStore(deps.ClickHouse.Conn)
	} else {
		metricsStore = storage.NewInMemoryMetricsStore()
	}

	var cache *redis.Client
	if deps.Redis != nil {
		cache = deps.Redis.Client
	}

	hub := sse.NewHub(deps.Logger)

	// Initialize services
	repSvc := report.NewService(repRepo, metricsStore)
	optSvc := report.NewOptionsService(metricsStore, cache, deps.Config.Options.CacheTTL, deps.Logger)
	intSvc := integration.NewService(intRepo, hub, cache, deps.SyncRunner, deps.Logger)

	if deps.Metrics != nil {
		hub.SetMetrics(deps.Metrics)
		optSvc.SetMetrics(deps.Metrics)
		intSvc.SetMetrics(deps.Metrics)
	}

	s := &Server{
		reportService:      repSvc,
		optionsService:     optSvc,
		integrationService: intSvc,
		hub:                hub,
		logger:             deps.Logger,
		config:             deps.Config,
		metrics:            deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Report configurations
	mux.HandleFunc("/admin/reports", s.handleReports)
	mux.HandleFunc("/admin/reports/", s.handleReportByID)

	// Filter option lists
	mux.HandleFunc("/admin/options", s.handleOptions)
	mux.HandleFunc("/admin/options/campaign-names", s.handleCampaignNames)
	mux.HandleFunc("/admin/options/ad-accounts", s.handleAdAccounts)
	mux.HandleFunc("/admin/options/ad-platforms", s.handleAdPlatforms)

	// Integrations
	mux.HandleFunc("/admin/integrations", s.handleIntegrations)
	mux.HandleFunc("/admin/integrations/", s.handleIntegrationByID)

	// Live event streams
	mux.HandleFunc("/api/v1/sse", s.handleSSE)

	return mux
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Reports ----

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.reportService.List(r.Context())
		if err != nil {
			s.logger.Error("failed to list reports", zap.Error(err))
			s.errorResponse(w, "failed to list", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, list)

	case http.MethodPost:
		var rep models.Report
		if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := s.reportService.Create(r.Context(), &rep); err != nil {
			s.errorResponse(w, "failed to save: "+err.Error(), http.StatusBadRequest)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordReportCreated(rep.TableName)
		}
		s.jsonResponse(w, rep)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleReportByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/reports/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/results"); ok {
		s.handleReportResults(w, r, id)
		return
	}
	id := rest

	switch r.Method {
	case http.MethodGet:
		rep, err := s.reportService.Get(r.Context(), id)
		if err != nil {
			s.logger.Error("failed to get report", zap.Error(err))
			s.errorResponse(w, "error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if rep == nil {
			http.NotFound(w, r)
			return
		}
		s.jsonResponse(w, rep)

	case http.MethodDelete:
		if err := s.reportService.Delete(r.Context(), id); err != nil {
			s.errorResponse(w, "failed to delete: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordReportDeleted()
		}
		s.jsonResponse(w, map[string]string{"status": "deleted"})

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleReportResults(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	forests, err := s.reportService.Results(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to build report results", zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordResults("error", 0, 0, 0, time.Since(start))
		}
		s.errorResponse(w, "failed to build results", http.StatusInternalServerError)
		return
	}
	if forests == nil {
		http.NotFound(w, r)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordResults("ok", len(forests.Meta), len(forests.Google), 0, time.Since(start))
	}
	s.jsonResponse(w, forests)
}

// ---- Filter option lists ----

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	options, err := s.optionsService.Options(r.Context())
	if err != nil {
		s.logger.Error("failed to list field options", zap.Error(err))
		s.errorResponse(w, "failed to list", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, options)
}

func (s *Server) handleCampaignNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	names, err := s.optionsService.CampaignNames(r.Context())
	if err != nil {
		s.logger.Error("failed to list campaign names", zap.Error(err))
		s.errorResponse(w, "failed to list", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, names)
}

func (s *Server) handleAdAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	accounts, err := s.optionsService.AdAccounts(r.Context())
	if err != nil {
		s.logger.Error("failed to list ad accounts", zap.Error(err))
		s.errorResponse(w, "failed to list", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, accounts)
}

func (s *Server) handleAdPlatforms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	platforms, err := s.optionsService.AdPlatforms(r.Context())
	if err != nil {
		s.logger.Error("failed to list ad platforms", zap.Error(err))
		s.errorResponse(w, "failed to list", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, platforms)
}

// ---- Integrations ----

func (s *Server) handleIntegrations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.integrationService.List(r.Context())
		if err != nil {
			s.errorResponse(w, "failed to list", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, list)

	case http.MethodPost:
		var in models.Integration
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := s.integrationService.Upsert(r.Context(), &in); err != nil {
			s.errorResponse(w, "failed to save: "+err.Error(), http.StatusBadRequest)
			return
		}
		s.jsonResponse(w, in)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleIntegrationByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/integrations/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case rest == "hyros/sync":
		s.handleHyrosSync(w, r)
	case rest == "hyros/events":
		s.handleHyrosEvents(w, r)
	case strings.HasSuffix(rest, "/cron"):
		s.handleCronToggle(w, r, strings.TrimSuffix(rest, "/cron"))
	default:
		s.handleIntegration(w, r, rest)
	}
}

func (s *Server) handleIntegration(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		in, err := s.integrationService.Get(r.Context(), id)
		if err != nil {
			s.errorResponse(w, "error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if in == nil {
			http.NotFound(w, r)
			return
		}
		s.jsonResponse(w, in)

	case http.MethodDelete:
		if err := s.integrationService.Delete(r.Context(), id); err != nil {
			s.errorResponse(w, "failed to delete: "+err.Error(), http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, map[string]string{"status": "deleted"})

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCronToggle(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	err := s.integrationService.ToggleCron(r.Context(), id, body.Enabled)
	switch {
	case errors.Is(err, integration.ErrBusy):
		s.errorResponse(w, "operation already in flight", http.StatusConflict)
	case err != nil:
		s.errorResponse(w, "failed to toggle: "+err.Error(), http.StatusBadRequest)
	default:
		s.jsonResponse(w, map[string]any{"id": id, "cron_enabled": body.Enabled})
	}
}

func (s *Server) handleHyrosSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		s.errorResponse(w, "id is required", http.StatusBadRequest)
		return
	}

	err := s.integrationService.StartHyrosSync(r.Context(), body.ID)
	switch {
	case errors.Is(err, integration.ErrBusy):
		s.errorResponse(w, "sync already running", http.StatusConflict)
	case err != nil:
		s.errorResponse(w, "failed to start sync: "+err.Error(), http.StatusBadRequest)
	default:
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": s.integrationService.SyncStatus(r.Context()),
		})
	}
}

// ---- SSE ----

// handleSSE streams every hub event to the client.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	s.streamEvents(w, r)
}

// handleHyrosEvents streams only the Hyros sync events.
func (s *Server) handleHyrosEvents(w http.ResponseWriter, r *http.Request) {
	s.streamEvents(w, r, sse.EventHyros, sse.EventHyrosSyncComplete)
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, names ...string) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.errorResponse(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := s.hub.Subscribe(names...)
	defer s.hub.Unsubscribe(sub)

	if s.metrics != nil {
		s.metrics.SSEClients.Inc()
		defer s.metrics.SSEClients.Dec()
	}

	writeEvent(w, sse.Event{Name: sse.EventConnection, Data: map[string]string{"status": "connected"}})
	flusher.Flush()

	// Heartbeat keeps proxies from closing an idle stream.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev sse.Event) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
