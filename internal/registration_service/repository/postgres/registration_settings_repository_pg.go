package postgres

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
)

// DBTX is the query surface shared by pgxpool.Pool and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgRegistrationSettingsRepository persists per-company registration
// progress with merge-upsert semantics.
type PgRegistrationSettingsRepository struct {
	db     DBTX
	pool   *pgxpool.Pool // dedicated connections for advisory locks
	logger *slog.Logger
}

// NewPgRegistrationSettingsRepository creates a repository backed by a
// pgx pool.
func NewPgRegistrationSettingsRepository(pool *pgxpool.Pool, logger *slog.Logger) *PgRegistrationSettingsRepository {
	return &PgRegistrationSettingsRepository{
		db:     pool,
		pool:   pool,
		logger: logger.With("component", "registration_settings_repository_pg"),
	}
}

// Get returns the settings row for a company, or domain.ErrNotFound.
func (r *PgRegistrationSettingsRepository) Get(ctx context.Context, companyID uuid.UUID) (*domain.RegistrationSettings, error) {
	query := `
		SELECT company_id, brand_id, campaign_id, toll_free_request_id, toll_free_status, toll_free_submitted_at, updated_at
		FROM registration_settings WHERE company_id = $1
	`
	settings := &domain.RegistrationSettings{}
	var tollFreeStatus *string
	err := r.db.QueryRow(ctx, query, companyID).Scan(
		&settings.CompanyID,
		&settings.BrandID,
		&settings.CampaignID,
		&settings.TollFreeRequestID,
		&tollFreeStatus,
		&settings.TollFreeSubmittedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registration settings: %w", err)
	}
	if tollFreeStatus != nil {
		status := domain.TollFreeStatus(*tollFreeStatus)
		settings.TollFreeStatus = &status
	}
	return settings, nil
}

// Upsert merges the supplied fields into the company's row. Nil patch
// fields never clobber previously stored values.
func (r *PgRegistrationSettingsRepository) Upsert(ctx context.Context, companyID uuid.UUID, patch domain.RegistrationSettingsPatch) error {
	query := `
		INSERT INTO registration_settings (
			company_id, brand_id, campaign_id, toll_free_request_id, toll_free_status, toll_free_submitted_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id) DO UPDATE SET
			brand_id = COALESCE(EXCLUDED.brand_id, registration_settings.brand_id),
			campaign_id = COALESCE(EXCLUDED.campaign_id, registration_settings.campaign_id),
			toll_free_request_id = COALESCE(EXCLUDED.toll_free_request_id, registration_settings.toll_free_request_id),
			toll_free_status = COALESCE(EXCLUDED.toll_free_status, registration_settings.toll_free_status),
			toll_free_submitted_at = COALESCE(EXCLUDED.toll_free_submitted_at, registration_settings.toll_free_submitted_at),
			updated_at = EXCLUDED.updated_at
	`
	var tollFreeStatus *string
	if patch.TollFreeStatus != nil {
		s := string(*patch.TollFreeStatus)
		tollFreeStatus = &s
	}
	_, err := r.db.Exec(ctx, query,
		companyID,
		patch.BrandID,
		patch.CampaignID,
		patch.TollFreeRequestID,
		tollFreeStatus,
		patch.TollFreeSubmittedAt,
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert registration settings", "company_id", companyID, "error", err)
		return fmt.Errorf("failed to upsert registration settings: %w", err)
	}
	return nil
}

// HasCompletedRegistration reports whether both a brand id and a campaign
// id are recorded for the company.
func (r *PgRegistrationSettingsRepository) HasCompletedRegistration(ctx context.Context, companyID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registration_settings
			WHERE company_id = $1
			  AND brand_id IS NOT NULL AND brand_id <> ''
			  AND campaign_id IS NOT NULL AND campaign_id <> ''
		)
	`
	var completed bool
	if err := r.db.QueryRow(ctx, query, companyID).Scan(&completed); err != nil {
		return false, fmt.Errorf("failed to check registration completion: %w", err)
	}
	return completed, nil
}

// AcquireCompanyLock takes a session advisory lock keyed on the company
// id, on a dedicated pooled connection held until release. Two concurrent
// orchestrations for the same company cannot both create a brand.
func (r *PgRegistrationSettingsRepository) AcquireCompanyLock(ctx context.Context, companyID uuid.UUID) (func(), error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for company lock: %w", err)
	}

	key := companyLockKey(companyID)
	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&locked); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to take company advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, domain.ErrRegistrationInProgress
	}

	release := func() {
		// Unlock on the same session the lock was taken on.
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, key); err != nil {
			r.logger.Error("Failed to release company advisory lock", "company_id", companyID, "error", err)
		}
		conn.Release()
	}
	return release, nil
}

// companyLockKey hashes a company id into the bigint keyspace advisory
// locks use.
func companyLockKey(companyID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(companyID[:])
	return int64(h.Sum64())
}
