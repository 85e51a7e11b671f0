package relationships

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines relationships data access interface.
// Reads return (nil, nil) when no row matches.
type Repository interface {
	FindBetween(ctx context.Context, a, b uuid.UUID) (*Relationship, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Relationship, error)
	Create(ctx context.Context, rel *Relationship) error
	Update(ctx context.Context, rel *Relationship) error
	// Delete removes the row and returns it as it was. ErrRecordNotFound if it is already gone.
	Delete(ctx context.Context, id uuid.UUID) (*Relationship, error)
	List(ctx context.Context, filter ListFilter) ([]*Relationship, int, error)

	// LockPair serializes writers on the unordered pair {a, b} until the transaction ends
	LockPair(ctx context.Context, a, b uuid.UUID) error
	// LockByID reads the row with a row lock held until the transaction ends
	LockByID(ctx context.Context, id uuid.UUID) (*Relationship, error)
	// WithinTx runs fn against a transaction-bound repository.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
}
