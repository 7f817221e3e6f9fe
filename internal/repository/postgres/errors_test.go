package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"shopbooks/internal/domain"
)

func TestTranslateNotFound(t *testing.T) {
	err := translateNotFound(sql.ErrNoRows, domain.ErrItemNotFound, "stockRepo.Adjust apply")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	// A real database failure must keep its cause and never masquerade as
	// not-found.
	cause := errors.New("connection reset by peer")
	err = translateNotFound(cause, domain.ErrItemNotFound, "stockRepo.Adjust apply")
	assert.NotErrorIs(t, err, domain.ErrItemNotFound)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "stockRepo.Adjust apply")
}
