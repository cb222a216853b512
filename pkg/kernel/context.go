package kernel

// AuthContext is the authenticated caller identity injected into each request
// after token validation or gateway-header extraction.
type AuthContext struct {
	UserID UserID `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsValid reports whether the context identifies a concrete user.
func (ac *AuthContext) IsValid() bool {
	return !ac.UserID.IsZero() && ac.Role.Valid()
}

// IsAdmin reports whether the caller holds an administrative role.
func (ac *AuthContext) IsAdmin() bool {
	return ac.Role == RoleAdmin || ac.Role == RoleSuperAdmin
}

type ContextKey string

const (
	// AuthContextKey stores the AuthContext in fiber locals / context.Context.
	AuthContextKey ContextKey = "auth_context"

	// RequestIDKey stores the per-request trace ID.
	RequestIDKey ContextKey = "request_id"
)
