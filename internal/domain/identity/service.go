package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/sereno/sereno/internal/platform/auth"
	"github.com/sereno/sereno/internal/platform/httperr"
)

const defaultRoleID = 2 // regular user

// Service implements registration, login and profile management.
type Service struct {
	repo   Repository
	issuer *auth.TokenIssuer
}

func NewService(repo Repository, issuer *auth.TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// Register creates an account and returns a fresh session. The mobile
// number must be unused.
func (s *Service) Register(ctx context.Context, in *RegisterInput) (*Session, error) {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Mobile) == "" || in.Password == "" {
		return nil, httperr.Validation("Missing required fields")
	}

	if _, err := s.repo.GetByMobile(ctx, in.Mobile); err == nil {
		return nil, httperr.UserExists("User already registered")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, httperr.DB("Failed to check existing user", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, httperr.Server("Failed to process password", err)
	}

	user := &User{
		FullName:     in.FullName,
		Gender:       NormalizeGender(in.Gender),
		Mobile:       in.Mobile,
		Email:        in.Email,
		DOB:          in.DOB,
		PasswordHash: hash,
		RoleID:       defaultRoleID,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, httperr.DB("Failed to create user", err)
	}

	return s.newSession(user)
}

// Login verifies credentials and returns a session. Unknown users and wrong
// passwords produce the same error code.
func (s *Service) Login(ctx context.Context, in *LoginInput) (*Session, error) {
	if strings.TrimSpace(in.Mobile) == "" || in.Password == "" {
		return nil, httperr.Validation("Missing mobile or password")
	}

	user, err := s.repo.GetByMobile(ctx, in.Mobile)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.InvalidCredentials("Invalid mobile or password")
	}
	if err != nil {
		return nil, httperr.DB("Failed to fetch user", err)
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, httperr.InvalidCredentials("Invalid mobile or password")
	}

	return s.newSession(user)
}

// Profile returns the authenticated user's row.
func (s *Service) Profile(ctx context.Context) (*User, error) {
	userID := auth.UserIDFromContext(ctx)
	if userID == 0 {
		return nil, httperr.Unauthorized("No token provided")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.UserNotFound("User not found")
	}
	if err != nil {
		return nil, httperr.Server("Failed to fetch user data", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update. A password change is re-hashed
// before it reaches storage.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, p *Patch) (*User, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httperr.NotFound("User not found")
		}
		return nil, httperr.DB("Failed to fetch user", err)
	}

	if p.Password != nil {
		if *p.Password == "" {
			return nil, httperr.Validation("Password must not be empty")
		}
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return nil, httperr.Server("Failed to process password", err)
		}
		p.Password = &hash
	}

	user, err := s.repo.Update(ctx, userID, p)
	if err != nil {
		return nil, httperr.DB("Failed to update user", err)
	}
	return user, nil
}

// SetPhoto stores the profile photo URL.
func (s *Service) SetPhoto(ctx context.Context, userID int64, url string) error {
	if strings.TrimSpace(url) == "" {
		return httperr.Validation("photoUrl is required")
	}

	err := s.repo.SetPhotoURL(ctx, userID, url)
	if errors.Is(err, ErrNotFound) {
		return httperr.NotFound("User not found")
	}
	if err != nil {
		return httperr.DB("Failed to update photo", err)
	}
	return nil
}

func (s *Service) newSession(user *User) (*Session, error) {
	token, err := s.issuer.Issue(user.ID, user.Mobile)
	if err != nil {
		return nil, httperr.Server("Failed to issue token", err)
	}
	return &Session{Token: token, User: user}, nil
}
