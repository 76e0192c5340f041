package guidelines

import (
	"context"

	"github.com/google/uuid"
)

// Store persists guidelines. Find, Update, and Delete return ErrNotFound
// when no guideline has the given ID.
type Store interface {
	Find(ctx context.Context, id uuid.UUID) (Guideline, error)
	// Query returns the window of guidelines matching q and the total match count.
	Query(ctx context.Context, q Query) ([]Guideline, int, error)
	Insert(ctx context.Context, g Guideline) error
	Update(ctx context.Context, g Guideline) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Trusts returns the distinct trust names of active guidelines in ascending order.
	Trusts(ctx context.Context) ([]string, error)
}
