package screening

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no row matches a lookup.
var ErrNotFound = errors.New("not found")

type QuestionRepository interface {
	List(ctx context.Context) ([]*Question, error)
}

// LogRepository persists screening results. The log is append-only: entries
// are inserted once and never updated or deleted.
type LogRepository interface {
	// Insert writes the log entry and its answer rows atomically, setting
	// entry.ID and entry.CreatedAt from the stored row.
	Insert(ctx context.Context, entry *LogEntry, answers []Answer) error
	GetByID(ctx context.Context, id int64) (*LogEntry, error)
	// ListBySufferer returns one page of a subject's history ordered by
	// creation time descending, plus the total match count. testType is a
	// filter; "" or "all" matches every entry.
	ListBySufferer(ctx context.Context, suffererID int64, testType string, limit, offset int) ([]*LogEntry, int, error)
}
