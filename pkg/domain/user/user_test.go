package user_test

import (
	"testing"

	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/user"
	"github.com/finsova/fundrequest/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration() user.Registration {
	return user.Registration{
		FullName:      "John Doe",
		Username:      "jdoe",
		Email:         "j@x.com",
		Role:          "user",
		Country:       "India",
		ContactNumber: "+91 98765 43210",
		IsActive:      true,
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	u, err := user.New(registration())
	require.NoError(t, err)
	assert.False(t, u.IsKycCompleted)
	assert.True(t, u.IsActive)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.Empty(t, u.PasswordHash)
	assert.False(t, u.CanLogin(), "no password means no login")
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		desc   string
		mutate func(r *user.Registration)
		field  string
	}{
		{"missing full name", func(r *user.Registration) { r.FullName = "" }, "fullName"},
		{"missing username", func(r *user.Registration) { r.Username = " " }, "username"},
		{"missing email", func(r *user.Registration) { r.Email = "" }, "email"},
		{"bad email", func(r *user.Registration) { r.Email = "not-an-email" }, "email"},
		{"missing role", func(r *user.Registration) { r.Role = "" }, "role"},
		{"unknown role", func(r *user.Registration) { r.Role = "superuser" }, "role"},
		{"missing country", func(r *user.Registration) { r.Country = "" }, "country"},
		{"missing contact", func(r *user.Registration) { r.ContactNumber = "" }, "contactNumber"},
		{"short password", func(r *user.Registration) { r.Password = "abc" }, "password"},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			r := registration()
			tc.mutate(&r)
			u, err := user.New(r)
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.Nil(t, u)
			assert.Equal(t, tc.field, domain.FieldOf(err))
		})
	}
}

func TestNew_Password(t *testing.T) {
	t.Parallel()
	r := registration()
	r.Role = "ADMIN"
	r.Password = "password123"
	u, err := user.New(r)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.True(t, u.CanLogin())
	assert.True(t, utils.CheckPasswordHash("password123", u.PasswordHash))
	assert.True(t, u.Principal().IsAdmin())
}

func TestKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "jdoe", user.UsernameKey(" JDoe "))
	assert.Equal(t, "j@x.com", user.EmailKey("J@X.com"))
}
