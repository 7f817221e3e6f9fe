package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopbooks/internal/domain"
	"shopbooks/internal/port"
)

type partyRepo struct {
	db *sqlx.DB
}

// NewPartyRepo creates a PostgreSQL-backed PartyRepository.
func NewPartyRepo(db *sqlx.DB) port.PartyRepository {
	return &partyRepo{db: db}
}

func (r *partyRepo) GetByID(ctx context.Context, companyID, partyID uuid.UUID) (*domain.Party, error) {
	var p domain.Party
	err := r.db.GetContext(ctx, &p,
		"SELECT * FROM parties WHERE id = $1 AND company_id = $2", partyID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPartyNotFound
		}
		return nil, fmt.Errorf("partyRepo.GetByID: %w", err)
	}
	return &p, nil
}

func (r *partyRepo) FindByExternalRef(ctx context.Context, companyID, externalRef uuid.UUID) (*domain.Party, error) {
	var p domain.Party
	err := r.db.GetContext(ctx, &p,
		"SELECT * FROM parties WHERE company_id = $1 AND external_ref = $2", companyID, externalRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPartyNotFound
		}
		return nil, fmt.Errorf("partyRepo.FindByExternalRef: %w", err)
	}
	return &p, nil
}

func (r *partyRepo) Create(ctx context.Context, party *domain.Party) error {
	now := time.Now().UTC()
	party.CreatedAt = now
	party.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO parties (id, company_id, kind, name, phone, email, gstin, external_ref, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		party.ID, party.CompanyID, party.Kind, party.Name, party.Phone,
		party.Email, party.GSTIN, party.ExternalRef, party.CreatedAt, party.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "phone") {
			return domain.ErrDuplicatePartyPhone
		}
		return fmt.Errorf("partyRepo.Create: %w", err)
	}
	return nil
}

type companyRepo struct {
	db *sqlx.DB
}

// NewCompanyRepo creates a PostgreSQL-backed CompanyRepository.
func NewCompanyRepo(db *sqlx.DB) port.CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) GetByID(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	var c domain.Company
	err := r.db.GetContext(ctx, &c, "SELECT * FROM companies WHERE id = $1", companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("companyRepo.GetByID: %w", err)
	}
	return &c, nil
}
