package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
)

// PgCompanyDirectory reads company profile data owned by the directory
// subsystem. All queries here are read-only.
type PgCompanyDirectory struct {
	db     DBTX
	logger *slog.Logger
}

// NewPgCompanyDirectory creates a PgCompanyDirectory.
func NewPgCompanyDirectory(db DBTX, logger *slog.Logger) *PgCompanyDirectory {
	return &PgCompanyDirectory{
		db:     db,
		logger: logger.With("component", "company_directory_pg"),
	}
}

// GetCompany returns a company profile, or domain.ErrNotFound.
func (r *PgCompanyDirectory) GetCompany(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	query := `
		SELECT id, legal_name, ein, address_line_1, city, state, postal_code, country,
		       industry, website, contact_email, contact_phone
		FROM companies WHERE id = $1
	`
	company := &domain.Company{}
	err := r.db.QueryRow(ctx, query, companyID).Scan(
		&company.ID,
		&company.LegalName,
		&company.EIN,
		&company.AddressLine1,
		&company.City,
		&company.State,
		&company.PostalCode,
		&company.Country,
		&company.Industry,
		&company.Website,
		&company.ContactEmail,
		&company.ContactPhone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// GetEmailDomainVerification returns the company's domain verification
// record, or domain.ErrNotFound when no verification was ever started.
func (r *PgCompanyDirectory) GetEmailDomainVerification(ctx context.Context, companyID uuid.UUID) (*domain.EmailDomainVerification, error) {
	query := `
		SELECT company_id, domain, status
		FROM email_domain_verifications WHERE company_id = $1
	`
	verification := &domain.EmailDomainVerification{}
	err := r.db.QueryRow(ctx, query, companyID).Scan(
		&verification.CompanyID,
		&verification.Domain,
		&verification.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get email domain verification: %w", err)
	}
	return verification, nil
}

// ListActivePhoneNumbers returns the company's active numbers.
func (r *PgCompanyDirectory) ListActivePhoneNumbers(ctx context.Context, companyID uuid.UUID) ([]domain.PhoneNumber, error) {
	query := `
		SELECT number, type, is_active
		FROM phone_numbers WHERE company_id = $1 AND is_active = TRUE
		ORDER BY number
	`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list phone numbers: %w", err)
	}
	defer rows.Close()

	var numbers []domain.PhoneNumber
	for rows.Next() {
		var n domain.PhoneNumber
		if err := rows.Scan(&n.Number, &n.Type, &n.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan phone number: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate phone numbers: %w", err)
	}
	return numbers, nil
}
