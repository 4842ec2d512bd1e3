package identity

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Repository is the user persistence surface.
type Repository interface {
	// Create inserts the user and sets ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByMobile resolves a user by the mobile number used as username.
	GetByMobile(ctx context.Context, mobile string) (*User, error)
	// Update applies only the non-nil patch fields and returns the fresh row.
	Update(ctx context.Context, id int64, p *Patch) (*User, error)
	SetPhotoURL(ctx context.Context, id int64, url string) error
}
