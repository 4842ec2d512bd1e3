package therapy

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// MaterialRepository reads the seeded therapy content.
type MaterialRepository interface {
	ListByType(ctx context.Context, materialType string) ([]*Material, error)
	GetByID(ctx context.Context, id int64, materialType string) (*Material, error)
}

// ChatRepository persists the therapy chat log.
type ChatRepository interface {
	// InsertExchange stores the user message and the reply atomically,
	// setting IDs and CreatedAt on both.
	InsertExchange(ctx context.Context, user, ai *ChatEntry) error
	// ListBySufferer returns one page newest first plus the total count.
	ListBySufferer(ctx context.Context, suffererID int64, limit, offset int) ([]*ChatEntry, int, error)
}
