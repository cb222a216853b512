package authapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/dpang/auth-server/pkg/asyncx"
	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/logx"
	"github.com/dpang/auth-server/pkg/profile"
	"github.com/dpang/auth-server/pkg/token"
	"github.com/dpang/auth-server/pkg/user"
)

// AuthHandlers wires the HTTP surface to the three core services.
type AuthHandlers struct {
	users  UserService
	tokens TokenService
	resets ResetService
}

func NewAuthHandlers(users UserService, tokens TokenService, resets ResetService) *AuthHandlers {
	return &AuthHandlers{
		users:  users,
		tokens: tokens,
		resets: resets,
	}
}

// RegisterRoutes mounts every auth endpoint under /api/auth.
func (h *AuthHandlers) RegisterRoutes(app *fiber.App, mw *TokenMiddleware) {
	grp := app.Group("/api/auth")

	grp.Post("/login", h.Login)
	grp.Post("/join", h.Join)
	grp.Post("/send-verification-code", h.SendVerificationCode)
	grp.Post("/reset-password", h.ResetPassword)

	grp.Post("/users/:userId/renew-token", h.RenewToken)
	grp.Post("/users/:userId/change-password", h.ChangePassword)
	grp.Delete("/users/:userId", h.DeleteUser)

	grp.Post("/logout", mw.Authenticate(), h.Logout)
	grp.Get("/me", mw.Authenticate(), h.Me)
}

// Login verifies the credentials, mints a token pair, and assembles the
// login payload. The profile and mileage lookups run concurrently; both
// services must answer for the login to succeed.
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrMalformedRequest().WithDetail("error", err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return ErrMalformedRequest().WithDetail("reason", "email and password are required")
	}

	ctx := c.UserContext()

	id, err := h.users.VerifyUser(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	pair, err := h.tokens.Issue(ctx, id)
	if err != nil {
		return err
	}

	profileFut := asyncx.Run(func() (*profile.Profile, error) {
		return h.users.GetProfile(ctx, id)
	})
	mileageFut := asyncx.Run(func() (*profile.Mileage, error) {
		return h.users.GetMileage(ctx, id)
	})

	p, err := profileFut.Await()
	if err != nil {
		return err
	}
	m, err := mileageFut.Await()
	if err != nil {
		return err
	}

	return c.JSON(DataResponse{
		Status:  http.StatusOK,
		Message: "Login succeeded",
		Data: LoginResponse{
			User: UserInfo{
				UserID:                 id,
				UserName:               p.Name,
				Mileage:                m.Mileage,
				PersonalChargedMileage: m.PersonalChargedMileage,
			},
			Token: *pair,
		},
	})
}

// Join registers a new identity.
func (h *AuthHandlers) Join(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrMalformedRequest().WithDetail("error", err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return ErrMalformedRequest().WithDetail("reason", "email and password are required")
	}

	err := h.users.Register(c.UserContext(), user.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Role:           kernel.Role(req.Role),
		Name:           req.Name,
		EmployeeNumber: req.EmployeeNumber,
		JoinDate:       req.JoinDate,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(BaseResponse{
		Status:  http.StatusCreated,
		Message: "Registration completed",
	})
}

// RenewToken rotates the caller's session. The gateway identity must match
// the user in the path.
func (h *AuthHandlers) RenewToken(c *fiber.Ctx) error {
	target, err := kernel.ParseUserID(c.Params("userId"))
	if err != nil {
		return ErrMalformedRequest().WithDetail("reason", "invalid user id")
	}
	if _, err := requireSelf(c, target); err != nil {
		return err
	}

	var req RenewTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrMalformedRequest().WithDetail("error", err.Error())
	}
	if req.RefreshToken == "" {
		return ErrMalformedRequest().WithDetail("reason", "refresh_token is required")
	}

	pair, err := h.tokens.Refresh(c.UserContext(), target, req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(DataResponse{
		Status:  http.StatusOK,
		Message: "Token renewed",
		Data:    pair,
	})
}

// ChangePassword replaces the caller's password after re-verifying the old
// one. The gateway identity must match the user in the path.
func (h *AuthHandlers) ChangePassword(c *fiber.Ctx) error {
	target, err := kernel.ParseUserID(c.Params("userId"))
	if err != nil {
		return ErrMalformedRequest().WithDetail("reason", "invalid user id")
	}
	if _, err := requireSelf(c, target); err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrMalformedRequest().WithDetail("error", err.Error())
	}

	if err := h.users.ChangePassword(c.UserContext(), target, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(BaseResponse{
		Status:  http.StatusOK,
		Message: "Password changed",
	})
}

// SendVerificationCode starts the password-reset challenge for the address
// in the email query parameter.
func (h *AuthHandlers) SendVerificationCode(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return ErrMalformedRequest().WithDetail("reason", "email query parameter is required")
	}

	if err := h.resets.RequestReset(c.UserContext(), email); err != nil {
		return err
	}

	return c.JSON(BaseResponse{
		Status:  http.StatusOK,
		Message: "Verification code sent",
	})
}

// ResetPassword redeems a verification code for a new password.
func (h *AuthHandlers) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrMalformedRequest().WithDetail("error", err.Error())
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return ErrMalformedRequest().WithDetail("reason", "email, code and new_password are required")
	}

	if err := h.resets.ResetPassword(c.UserContext(), req.Email, req.Code, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(BaseResponse{
		Status:  http.StatusOK,
		Message: "Password reset",
	})
}

// DeleteUser removes the account and its session. The gateway identity must
// match the user in the path. Session revocation after a successful delete
// is best effort; a user without a session is already logged out.
func (h *AuthHandlers) DeleteUser(c *fiber.Ctx) error {
	target, err := kernel.ParseUserID(c.Params("userId"))
	if err != nil {
		return ErrMalformedRequest().WithDetail("reason", "invalid user id")
	}
	if _, err := requireSelf(c, target); err != nil {
		return err
	}

	var req DeleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrMalformedRequest().WithDetail("error", err.Error())
	}

	if err := h.users.DeleteAccount(c.UserContext(), target, req.Password, req.Reason, req.Message); err != nil {
		return err
	}

	if err := h.tokens.Revoke(c.UserContext(), target); err != nil && !errors.Is(err, token.ErrTokenNotFound()) {
		logx.WithField("user_id", target.Int64()).WithError(err).
			Warn("session revocation failed after account deletion")
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// Logout revokes the caller's session. Logging out without a live session
// succeeds; the end state is the same.
func (h *AuthHandlers) Logout(c *fiber.Ctx) error {
	ac, err := AuthFromLocals(c)
	if err != nil {
		return err
	}

	if err := h.tokens.Revoke(c.UserContext(), ac.UserID); err != nil && !errors.Is(err, token.ErrTokenNotFound()) {
		return err
	}

	return c.JSON(BaseResponse{
		Status:  http.StatusOK,
		Message: "Logged out",
	})
}

// Me returns the verified identity of the caller.
func (h *AuthHandlers) Me(c *fiber.Ctx) error {
	ac, err := AuthFromLocals(c)
	if err != nil {
		return err
	}

	return c.JSON(DataResponse{
		Status:  http.StatusOK,
		Message: "OK",
		Data:    ac,
	})
}
