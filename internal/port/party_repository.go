package port

import (
	"context"

	"github.com/google/uuid"

	"shopbooks/internal/domain"
)

// PartyRepository is the counterparty directory for a company.
type PartyRepository interface {
	GetByID(ctx context.Context, companyID, partyID uuid.UUID) (*domain.Party, error)
	// FindByExternalRef looks a party up by its stable identity key (the
	// originating company's ID for synthesized counterparties).
	FindByExternalRef(ctx context.Context, companyID, externalRef uuid.UUID) (*domain.Party, error)
	// Create inserts a party. A unique violation on (company, phone) yields
	// domain.ErrDuplicatePartyPhone.
	Create(ctx context.Context, party *domain.Party) error
}

// CompanyRepository resolves companies.
type CompanyRepository interface {
	GetByID(ctx context.Context, companyID uuid.UUID) (*domain.Company, error)
}
