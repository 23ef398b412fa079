package user

import (
	"strings"
	"time"

	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/utils"
	"github.com/google/uuid"
)

// Role gates what a principal may do.
type Role string

// Known roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ParseRole accepts a role name in any letter case.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", domain.Validation("role", "must be admin or user")
	}
	return r, nil
}

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt ignores anything past 72 bytes
)

// User is a registered dashboard account.
type User struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"fullName"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	Country        string    `json:"country"`
	ContactNumber  string    `json:"contactNumber"`
	Plan           string    `json:"plan,omitempty"`
	IsActive       bool      `json:"isActive"`
	IsKycCompleted bool      `json:"isKycCompleted"`
	PasswordHash   string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Registration holds the raw registration fields.
type Registration struct {
	FullName      string
	Username      string
	Email         string
	Role          string
	Country       string
	ContactNumber string
	Plan          string
	IsActive      bool
	Password      string
}

// New validates r and returns an account with KYC not yet completed.
// A non-empty password is stored as a bcrypt hash.
func New(r Registration) (*User, error) {
	fields := []struct{ name, value string }{
		{"fullName", r.FullName},
		{"username", r.Username},
		{"email", r.Email},
		{"role", r.Role},
		{"country", r.Country},
		{"contactNumber", r.ContactNumber},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return nil, domain.Validation(f.name, "is required")
		}
	}
	email := strings.TrimSpace(r.Email)
	if !utils.IsEmail(email) {
		return nil, domain.Validation("email", "is not a valid address")
	}
	role, err := ParseRole(r.Role)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:            uuid.New(),
		FullName:      strings.TrimSpace(r.FullName),
		Username:      strings.TrimSpace(r.Username),
		Email:         email,
		Role:          role,
		Country:       strings.TrimSpace(r.Country),
		ContactNumber: strings.TrimSpace(r.ContactNumber),
		Plan:          strings.TrimSpace(r.Plan),
		IsActive:      r.IsActive,
		CreatedAt:     time.Now().UTC(),
	}
	if r.Password != "" {
		if len(r.Password) < minPasswordLen || len(r.Password) > maxPasswordLen {
			return nil, domain.Validation("password", "must be between 6 and 72 characters")
		}
		hash, err := utils.HashPassword(r.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	return u, nil
}

// UsernameKey is the normalized form used for uniqueness checks.
func UsernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// EmailKey is the normalized form used for uniqueness checks.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CanLogin reports whether the account has credentials and is active.
func (u *User) CanLogin() bool {
	return u.IsActive && u.PasswordHash != ""
}

// Principal returns the identity this account acts as.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

// Principal identifies the caller of a service operation.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether p carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
