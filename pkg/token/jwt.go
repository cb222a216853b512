package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dpang/auth-server/pkg/kernel"
)

// JWTCodec implements Codec with HS256-signed JWTs. The symmetric key is
// loaded once at construction and read-only afterwards, so concurrent use
// needs no synchronization.
type JWTCodec struct {
	secretKey       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	issuer          string
}

// NewJWTCodec creates a codec. Zero TTLs fall back to the service defaults
// (3h access, 5d refresh).
func NewJWTCodec(secretKey string, accessTokenTTL, refreshTokenTTL time.Duration, issuer string) *JWTCodec {
	if accessTokenTTL == 0 {
		accessTokenTTL = 3 * time.Hour
	}
	if refreshTokenTTL == 0 {
		refreshTokenTTL = 5 * 24 * time.Hour
	}
	if issuer == "" {
		issuer = "dpang-auth-server"
	}

	return &JWTCodec{
		secretKey:       []byte(secretKey),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		issuer:          issuer,
	}
}

// accessTokenClaims is the wire shape of access-token claims.
type accessTokenClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken mints a signed access token carrying the subject
// email, role and user ID.
func (c *JWTCodec) GenerateAccessToken(id kernel.UserID, email string, role kernel.Role) (string, error) {
	now := time.Now()

	claims := accessTokenClaims{
		UserID: id.Int64(),
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secretKey)
	if err != nil {
		return "", ErrGenerationFailed().WithDetail("error", err.Error())
	}
	return signed, nil
}

// GenerateRefreshToken mints a signed refresh token. It carries only
// registered claims; session validity is decided against the stored copy,
// not the claim set. The jti keeps two tokens minted within the same second
// distinct, which the exact-match rotation check depends on.
func (c *JWTCodec) GenerateRefreshToken(email string) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTokenTTL)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secretKey)
	if err != nil {
		return "", ErrGenerationFailed().WithDetail("error", err.Error())
	}
	return signed, nil
}

// ValidateAccessToken verifies signature and time bounds (exp, nbf) and
// returns the decoded claims.
func (c *JWTCodec) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &accessTokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secretKey, nil
	})
	if err != nil {
		return nil, ErrValidationFailed().WithDetail("error", err.Error())
	}
	if !parsed.Valid {
		return nil, ErrValidationFailed().WithDetail("error", "token is invalid")
	}

	claims, ok := parsed.Claims.(*accessTokenClaims)
	if !ok {
		return nil, ErrValidationFailed().WithDetail("error", "invalid claims type")
	}

	return &AccessClaims{
		UserID:    kernel.NewUserID(claims.UserID),
		Email:     claims.Subject,
		Role:      kernel.Role(claims.Role),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
