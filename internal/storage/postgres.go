package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adaudit/adaudit-api/internal/models"
)

// PostgresReportRepo implements ReportRepo using PostgreSQL. The report
// config (filter tree included) is stored as a JSONB blob: the tree is
// opaque data for this service and is forwarded to the query layer
// verbatim, so there is nothing to normalize into columns.
type PostgresReportRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresReportRepo(pool *pgxpool.Pool) *PostgresReportRepo {
	return &PostgresReportRepo{pool: pool}
}

func (r *PostgresReportRepo) ListAll(ctx context.Context) ([]*models.Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, table_name, report_name, config, created_at, updated_at
		FROM reports ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *PostgresReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, table_name, report_name, config, created_at, updated_at
		FROM reports WHERE id = $1
	`, id)

	rep, err := scanReport(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rep, nil
}

func (r *PostgresReportRepo) Upsert(ctx context.Context, rep *models.Report) error {
	cfg, err := json.Marshal(rep.Config)
	if err != nil {
		return fmt.Errorf("failed to encode report config: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO reports (id, table_name, report_name, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			table_name = EXCLUDED.table_name,
			report_name = EXCLUDED.report_name,
			config = EXCLUDED.config,
			updated_at = EXCLUDED.updated_at
	`, rep.ID, rep.TableName, rep.ReportName, cfg, rep.CreatedAt, rep.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}
	return nil
}

func (r *PostgresReportRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

func scanReport(row pgx.Row) (*models.Report, error) {
	var rep models.Report
	var cfg []byte
	if err := row.Scan(&rep.ID, &rep.TableName, &rep.ReportName, &cfg, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cfg, &rep.Config); err != nil {
		return nil, fmt.Errorf("failed to decode report config: %w", err)
	}
	return &rep, nil
}

// PostgresIntegrationRepo implements IntegrationRepo using PostgreSQL.
type PostgresIntegrationRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresIntegrationRepo(pool *pgxpool.Pool) *PostgresIntegrationRepo {
	return &PostgresIntegrationRepo{pool: pool}
}

func (r *PostgresIntegrationRepo) ListAll(ctx context.Context) ([]*models.Integration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, provider, name, enabled, cron_enabled, last_sync_at, created_at, updated_at
		FROM integrations ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	defer rows.Close()

	var list []*models.Integration
	for rows.Next() {
		var in models.Integration
		if err := rows.Scan(&in.ID, &in.Provider, &in.Name, &in.Enabled, &in.CronEnabled,
			&in.LastSyncAt, &in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &in)
	}
	return list, rows.Err()
}

func (r *PostgresIntegrationRepo) GetByID(ctx context.Context, id string) (*models.Integration, error) {
	var in models.Integration
	err := r.pool.QueryRow(ctx, `
		SELECT id, provider, name, enabled, cron_enabled, last_sync_at, created_at, updated_at
		FROM integrations WHERE id = $1
	`, id).Scan(&in.ID, &in.Provider, &in.Name, &in.Enabled, &in.CronEnabled,
		&in.LastSyncAt, &in.CreatedAt, &in.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return &in, nil
}

func (r *PostgresIntegrationRepo) Upsert(ctx context.Context, in *models.Integration) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO integrations (id, provider, name, enabled, cron_enabled, last_sync_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			provider = EXCLUDED.provider,
			name = EXCLUDED.name,
			enabled = EXCLUDED.enabled,
			cron_enabled = EXCLUDED.cron_enabled,
			last_sync_at = EXCLUDED.last_sync_at,
			updated_at = EXCLUDED.updated_at
	`, in.ID, in.Provider, in.Name, in.Enabled, in.CronEnabled, in.LastSyncAt, in.CreatedAt, in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert integration: %w", err)
	}
	return nil
}

func (r *PostgresIntegrationRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM integrations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}
	return nil
}

func (r *PostgresIntegrationRepo) SetCronEnabled(ctx context.Context, id string, enabled bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE integrations SET cron_enabled = $2, updated_at = now() WHERE id = $1
	`, id, enabled)
	if err != nil {
		return fmt.Errorf("failed to update cron flag: %w", err)
	}
	return nil
}
