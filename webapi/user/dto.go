package user

import (
	usersvc "github.com/finsova/fundrequest/pkg/service/user"
)

// NewUser represents the request body for registering an account.
type NewUser struct {
	FullName      string `json:"fullName" validate:"required,max=100"`
	Username      string `json:"username" validate:"required,min=3,max=50"`
	Email         string `json:"email" validate:"required,email,max=100"`
	Role          string `json:"role" validate:"required"`
	Country       string `json:"country" validate:"required,max=60"`
	ContactNumber string `json:"contactNumber" validate:"required,max=30"`
	IsActive      *bool  `json:"isActive"`
	Plan          string `json:"plan" validate:"max=60"`
	Password      string `json:"password" validate:"omitempty,min=6,max=72"`
}

// toInput maps the body to the service input. Accounts are active unless
// the body says otherwise.
func (n *NewUser) toInput() usersvc.RegisterInput {
	active := true
	if n.IsActive != nil {
		active = *n.IsActive
	}
	return usersvc.RegisterInput{
		FullName:      n.FullName,
		Username:      n.Username,
		Email:         n.Email,
		Role:          n.Role,
		Country:       n.Country,
		ContactNumber: n.ContactNumber,
		IsActive:      active,
		Plan:          n.Plan,
		Password:      n.Password,
	}
}
