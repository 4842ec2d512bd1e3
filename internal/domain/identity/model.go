package identity

import (
	"strings"
	"time"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// User is a stored account. The mobile number doubles as the login
// username; PasswordHash never leaves the service layer.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	Gender       string    `json:"gender"`
	Mobile       string    `json:"mobile"`
	Email        string    `json:"email,omitempty"`
	DOB          string    `json:"dob,omitempty"`
	PasswordHash string    `json:"-"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	RoleID       int       `json:"roleId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// RegisterInput is the register request body.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Gender   string `json:"gender"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	DOB      string `json:"dob"`
	Password string `json:"password"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// Patch carries a partial profile update. Nil means "leave as is".
type Patch struct {
	FullName *string `json:"fullName"`
	Gender   *string `json:"gender"`
	Mobile   *string `json:"mobile"`
	Email    *string `json:"email"`
	DOB      *string `json:"dob"`
	Password *string `json:"password"`
}

// Empty reports whether the patch changes nothing.
func (p *Patch) Empty() bool {
	return p.FullName == nil && p.Gender == nil && p.Mobile == nil &&
		p.Email == nil && p.DOB == nil && p.Password == nil
}

// Session is the register and login response.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// NormalizeGender maps free-form input onto the stored enum. Anything
// outside the two known values collapses to Male, matching the legacy rows.
func NormalizeGender(g string) string {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "female", "f":
		return GenderFemale
	default:
		return GenderMale
	}
}
