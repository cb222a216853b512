package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/token"
)

const testSecret = "test-secret-key-of-reasonable-length"

func TestJWTCodec_AccessTokenRoundTrip(t *testing.T) {
	codec := token.NewJWTCodec(testSecret, 3*time.Hour, 5*24*time.Hour, "test-issuer")

	signed, err := codec.GenerateAccessToken(kernel.NewUserID(42), "a@b.com", kernel.RoleAdmin)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := codec.ValidateAccessToken(signed)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID.Int64() != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID.Int64())
	}
	if claims.Email != "a@b.com" {
		t.Errorf("email = %q, want a@b.com", claims.Email)
	}
	if claims.Role != kernel.RoleAdmin {
		t.Errorf("role = %q, want ADMIN", claims.Role)
	}

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt)
	if ttl != 3*time.Hour {
		t.Errorf("access token ttl = %v, want 3h", ttl)
	}
}

func TestJWTCodec_RejectsWrongKey(t *testing.T) {
	codec := token.NewJWTCodec(testSecret, 0, 0, "")
	other := token.NewJWTCodec("a-completely-different-secret-key", 0, 0, "")

	signed, err := codec.GenerateAccessToken(kernel.NewUserID(1), "a@b.com", kernel.RoleUser)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := other.ValidateAccessToken(signed); err == nil {
		t.Fatal("expected validation to fail under a different key")
	}
}

func TestJWTCodec_RejectsExpired(t *testing.T) {
	codec := token.NewJWTCodec(testSecret, -time.Minute, 0, "")

	signed, err := codec.GenerateAccessToken(kernel.NewUserID(1), "a@b.com", kernel.RoleUser)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := codec.ValidateAccessToken(signed); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestJWTCodec_RejectsTampering(t *testing.T) {
	codec := token.NewJWTCodec(testSecret, 0, 0, "")

	signed, err := codec.GenerateAccessToken(kernel.NewUserID(1), "a@b.com", kernel.RoleUser)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := codec.ValidateAccessToken(tampered); err == nil {
		t.Fatal("expected validation to fail for a tampered signature")
	}
}

func TestJWTCodec_RefreshTokensDiffer(t *testing.T) {
	codec := token.NewJWTCodec(testSecret, 0, 0, "")

	r1, err := codec.GenerateRefreshToken("a@b.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	r2, err := codec.GenerateRefreshToken("a@b.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if r1 == r2 {
		t.Fatal("two refresh tokens for the same subject must differ (jti)")
	}
}
