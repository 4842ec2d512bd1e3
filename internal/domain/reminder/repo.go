package reminder

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Repository is the reminder persistence surface. Create, Update and Delete
// touch the reminder row and its time rows atomically.
type Repository interface {
	// Create inserts the reminder and its times, setting ID and CreatedAt.
	Create(ctx context.Context, r *Reminder) error
	GetByID(ctx context.Context, id int64) (*Reminder, error)
	// ListBySufferer returns reminders with their times, filtered by the
	// optional date range.
	ListBySufferer(ctx context.Context, suffererID int64, f ListFilter) ([]*Reminder, error)
	// Update rewrites the reminder row and replaces all of its times.
	Update(ctx context.Context, r *Reminder) error
	Delete(ctx context.Context, id int64) error
	// RecordIntake persists one dose, setting ID and RecordedAt.
	RecordIntake(ctx context.Context, in *Intake) error
}
