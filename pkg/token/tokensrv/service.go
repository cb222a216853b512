package tokensrv

import (
	"context"

	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/logx"
	"github.com/dpang/auth-server/pkg/token"
	"github.com/dpang/auth-server/pkg/user"
)

// TokenService drives the token lifecycle: issuance, rotation and
// revocation. It keeps no in-process state; the session repository is the
// single source of truth for which refresh token is live.
type TokenService struct {
	users    user.Repository
	sessions token.SessionRepository
	codec    token.Codec
}

func NewTokenService(users user.Repository, sessions token.SessionRepository, codec token.Codec) *TokenService {
	return &TokenService{
		users:    users,
		sessions: sessions,
		codec:    codec,
	}
}

// Issue mints a fresh token pair for the user and replaces any existing
// session, so at most one refresh token is ever live per user.
func (s *TokenService) Issue(ctx context.Context, id kernel.UserID) (*token.Pair, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pair, err := s.mint(u)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Replace(ctx, id, pair.RefreshToken); err != nil {
		return nil, err
	}

	logx.WithField("user_id", id.Int64()).Info("token pair issued")
	return pair, nil
}

// Refresh rotates the session: the presented token must be byte-identical to
// the stored one. The compare and the delete happen atomically in the store,
// so of two concurrent refreshes with the same token exactly one wins; the
// loser observes the consumed session and gets InvalidRefreshToken.
//
// Signature and expiry of the presented token are deliberately not
// re-verified here: a token that does not match the single live session is
// invalid no matter what its claims say.
func (s *TokenService) Refresh(ctx context.Context, id kernel.UserID, presented string) (*token.Pair, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	won, err := s.sessions.CompareAndDelete(ctx, id, presented)
	if err != nil {
		return nil, err
	}
	if !won {
		logx.WithField("user_id", id.Int64()).Warn("refresh rejected: token absent or mismatched")
		return nil, token.ErrInvalidRefreshToken().WithDetail("user_id", id.Int64())
	}

	pair, err := s.mint(u)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Replace(ctx, id, pair.RefreshToken); err != nil {
		return nil, err
	}

	logx.WithField("user_id", id.Int64()).Info("token pair rotated")
	return pair, nil
}

// Revoke drops the user's session. Revoking an absent session reports
// TokenNotFound; callers running idempotent logout tolerate it.
func (s *TokenService) Revoke(ctx context.Context, id kernel.UserID) error {
	deleted, err := s.sessions.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return token.ErrTokenNotFound().WithDetail("user_id", id.Int64())
	}

	logx.WithField("user_id", id.Int64()).Info("session revoked")
	return nil
}

// Validate decodes and verifies an access token.
func (s *TokenService) Validate(tokenString string) (*token.AccessClaims, error) {
	return s.codec.ValidateAccessToken(tokenString)
}

func (s *TokenService) mint(u *user.User) (*token.Pair, error) {
	access, err := s.codec.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.GenerateRefreshToken(u.Email)
	if err != nil {
		return nil, err
	}
	return &token.Pair{Role: u.Role, AccessToken: access, RefreshToken: refresh}, nil
}
