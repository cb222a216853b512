package authapi

import (
	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/token"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo is the profile slice returned on login.
type UserInfo struct {
	UserID                 kernel.UserID `json:"user_id"`
	UserName               string        `json:"user_name"`
	Mileage                int64         `json:"mileage"`
	PersonalChargedMileage int64         `json:"personal_charged_mileage"`
}

type LoginResponse struct {
	User  UserInfo   `json:"user"`
	Token token.Pair `json:"token"`
}

type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role,omitempty"`
	Name           string `json:"name"`
	EmployeeNumber int64  `json:"employee_number"`
	JoinDate       string `json:"join_date"`
}

type RenewTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type DeleteUserRequest struct {
	Password string   `json:"password"`
	Reason   []string `json:"reason,omitempty"`
	Message  string   `json:"message,omitempty"`
}
