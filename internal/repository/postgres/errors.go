package postgres

import (
	"database/sql"
	"errors"
	"fmt"
)

// translateNotFound maps sql.ErrNoRows onto the given not-found sentinel.
// Any other error keeps its cause and gains the operation prefix.
func translateNotFound(err, notFound error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
