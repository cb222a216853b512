package authapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dpang/auth-server/pkg/kernel"
)

// Gateway identity headers. The API gateway authenticates the caller and
// injects these on every proxied request; handlers trust them instead of
// re-parsing the access token.
const (
	ClientIDHeader   = "X-Client-ID"
	ClientRoleHeader = "X-Client-Role"
)

// TokenMiddleware authenticates requests that carry a Bearer access token
// directly, for routes not fronted by the gateway.
type TokenMiddleware struct {
	tokens TokenService
}

func NewTokenMiddleware(tokens TokenService) *TokenMiddleware {
	return &TokenMiddleware{tokens: tokens}
}

// Authenticate validates the Authorization header and stores the caller
// identity in fiber locals under kernel.AuthContextKey.
func (m *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return ErrUnauthorized().WithDetail("reason", "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return ErrUnauthorized().WithDetail("reason", "malformed Authorization header")
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			return err
		}

		c.Locals(string(kernel.AuthContextKey), &kernel.AuthContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		})
		return c.Next()
	}
}

// AuthFromLocals returns the identity stored by Authenticate.
func AuthFromLocals(c *fiber.Ctx) (*kernel.AuthContext, error) {
	ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
	if !ok || ac == nil || !ac.IsValid() {
		return nil, ErrUnauthorized()
	}
	return ac, nil
}

// gatewayCaller reads the identity the gateway injected into the request.
func gatewayCaller(c *fiber.Ctx) (*kernel.AuthContext, error) {
	id, err := kernel.ParseUserID(c.Get(ClientIDHeader))
	if err != nil {
		return nil, ErrUnauthorized().WithDetail("reason", "missing or malformed client id header")
	}

	role := kernel.Role(c.Get(ClientRoleHeader))
	if !role.Valid() {
		return nil, ErrUnauthorized().WithDetail("reason", "missing or malformed client role header")
	}

	return &kernel.AuthContext{UserID: id, Role: role}, nil
}

// requireSelf authorizes gateway-fronted routes that operate on a specific
// user: the caller must be that user. Roles carry no override here.
func requireSelf(c *fiber.Ctx, target kernel.UserID) (*kernel.AuthContext, error) {
	caller, err := gatewayCaller(c)
	if err != nil {
		return nil, err
	}
	if caller.UserID != target {
		return nil, ErrForbidden().
			WithDetail("caller_id", caller.UserID.Int64()).
			WithDetail("target_id", target.Int64())
	}
	return caller, nil
}
