package resetsrv

import (
	"context"

	"github.com/dpang/auth-server/pkg/logx"
	"github.com/dpang/auth-server/pkg/notifx"
	"github.com/dpang/auth-server/pkg/password"
	"github.com/dpang/auth-server/pkg/reset"
	"github.com/dpang/auth-server/pkg/user"
)

const codeTemplateName = "reset-code"

// codeTemplate renders the verification email. The code is the only dynamic
// part; it expires with the stored challenge, not with the email.
const codeTemplate = `<html>
<body>
  <p>Use the verification code below to reset your password.</p>
  <h2>{{.Code}}</h2>
  <p>The code expires in 5 minutes. If you did not request a reset, ignore this email.</p>
</body>
</html>`

// ResetService drives the password-reset challenge flow: mail a short-lived
// code, then trade the code for a password change.
type ResetService struct {
	users      user.Repository
	challenges reset.ChallengeRepository
	hasher     password.Hasher
	mailer     *notifx.Client
	from       string
}

func NewResetService(users user.Repository, challenges reset.ChallengeRepository, hasher password.Hasher, mailer *notifx.Client, from string) (*ResetService, error) {
	if err := mailer.RegisterTemplate(codeTemplateName, codeTemplate); err != nil {
		return nil, err
	}
	return &ResetService{
		users:      users,
		challenges: challenges,
		hasher:     hasher,
		mailer:     mailer,
		from:       from,
	}, nil
}

// RequestReset mails a fresh verification code to the address and records it
// as the pending challenge. The code is persisted only after the provider
// accepts the email, so a pending challenge always has a delivered (or at
// least dispatched) code behind it.
//
// The address is not checked against the user store. Whether an account
// exists is revealed at redemption time, never by this call.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	code, err := reset.GenerateCode()
	if err != nil {
		return err
	}

	msg := notifx.EmailMessage{
		From:    s.from,
		To:      []string{email},
		Subject: "Your password reset code",
	}
	if err := s.mailer.SendTemplatedEmail(ctx, codeTemplateName, map[string]string{"Code": code}, msg); err != nil {
		logx.WithError(err).WithField("email", email).Error("verification code send failed")
		return err
	}

	if err := s.challenges.Save(ctx, email, code); err != nil {
		return err
	}

	logx.WithField("email", email).Info("verification code issued")
	return nil
}

// ResetPassword redeems a verification code for a password change. The user
// must exist, a challenge must be pending, and the code must match it
// exactly. A redeemed challenge is deleted, so each code works at most once.
func (s *ResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	stored, err := s.challenges.Find(ctx, email)
	if err != nil {
		return err
	}
	if stored != code {
		return reset.ErrInvalidCode().WithDetail("email", email)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	// The password is already changed; a failed cleanup only shortens the
	// window to the challenge TTL.
	if err := s.challenges.Delete(ctx, email); err != nil {
		logx.WithError(err).WithField("email", email).Warn("failed to delete redeemed verification code")
	}

	logx.WithField("user_id", u.ID.Int64()).Info("password reset completed")
	return nil
}
