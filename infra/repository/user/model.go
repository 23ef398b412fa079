package user

import (
	"time"

	"github.com/finsova/fundrequest/pkg/domain/user"
	"github.com/google/uuid"
)

// User represents a user record in the database. UsernameKey and EmailKey
// hold the lower-cased values the unique indexes are built on.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName       string    `gorm:"size:255;not null"`
	Username       string    `gorm:"size:50;not null"`
	UsernameKey    string    `gorm:"size:50;not null;uniqueIndex:uq_user_accounts_username"`
	Email          string    `gorm:"size:255;not null"`
	EmailKey       string    `gorm:"size:255;not null;uniqueIndex:uq_user_accounts_email"`
	Role           string    `gorm:"type:varchar(16);not null"`
	Country        string    `gorm:"size:100;not null"`
	ContactNumber  string    `gorm:"size:32;not null"`
	Plan           string    `gorm:"size:64"`
	IsActive       bool      `gorm:"not null"`
	IsKycCompleted bool      `gorm:"not null"`
	PasswordHash   string    `gorm:"size:255"`
	CreatedAt      time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "user_accounts"
}

func fromDomain(u *user.User) User {
	return User{
		ID:             u.ID,
		FullName:       u.FullName,
		Username:       u.Username,
		UsernameKey:    user.UsernameKey(u.Username),
		Email:          u.Email,
		EmailKey:       user.EmailKey(u.Email),
		Role:           string(u.Role),
		Country:        u.Country,
		ContactNumber:  u.ContactNumber,
		Plan:           u.Plan,
		IsActive:       u.IsActive,
		IsKycCompleted: u.IsKycCompleted,
		PasswordHash:   u.PasswordHash,
		CreatedAt:      u.CreatedAt,
	}
}

func (m *User) toDomain() *user.User {
	return &user.User{
		ID:             m.ID,
		FullName:       m.FullName,
		Username:       m.Username,
		Email:          m.Email,
		Role:           user.Role(m.Role),
		Country:        m.Country,
		ContactNumber:  m.ContactNumber,
		Plan:           m.Plan,
		IsActive:       m.IsActive,
		IsKycCompleted: m.IsKycCompleted,
		PasswordHash:   m.PasswordHash,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}
