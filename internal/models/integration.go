package models

import (
	"errors"
	"time"
)

// IntegrationProvider identifies a supported external platform.
type IntegrationProvider string

const (
	ProviderMeta     IntegrationProvider = "meta"
	ProviderGoogle   IntegrationProvider = "google"
	ProviderHyros    IntegrationProvider = "hyros"
	ProviderCalendly IntegrationProvider = "calendly"
	ProviderOnceHub  IntegrationProvider = "oncehub"
	ProviderTypeform IntegrationProvider = "typeform"
)

var knownProviders = map[IntegrationProvider]bool{
	ProviderMeta:     true,
	ProviderGoogle:   true,
	ProviderHyros:    true,
	ProviderCalendly: true,
	ProviderOnceHub:  true,
	ProviderTypeform: true,
}

// SyncStatus values for an integration's background sync.
const (
	SyncStatusIdle    = "idle"
	SyncStatusRunning = "running"
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// Integration is a configured connection to an external platform.
type Integration struct {
	ID          string              `json:"id"`
	Provider    IntegrationProvider `json:"provider"`
	Name        string              `json:"name"`
	Enabled     bool                `json:"enabled"`
	CronEnabled bool                `json:"cron_enabled"`
	LastSyncAt  time.Time           `json:"last_sync_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Validate checks the minimal required integration fields.
func (i *Integration) Validate() error {
	if i == nil {
		return errors.New("integration is nil")
	}
	if i.ID == "" {
		return errors.New("id is required")
	}
	if !knownProviders[i.Provider] {
		return errors.New("unknown provider: " + string(i.Provider))
	}
	if i.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
