package usersrv

import (
	"context"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/logx"
	"github.com/dpang/auth-server/pkg/password"
	"github.com/dpang/auth-server/pkg/profile"
	"github.com/dpang/auth-server/pkg/user"
)

// UserService verifies credentials, registers identities and manages the
// durable side of the account lifecycle. All session state is the token
// service's concern.
type UserService struct {
	repo    user.Repository
	hasher  password.Hasher
	users   profile.UserClient
	mileage profile.MileageClient
}

func NewUserService(
	repo user.Repository,
	hasher password.Hasher,
	users profile.UserClient,
	mileage profile.MileageClient,
) *UserService {
	return &UserService{
		repo:    repo,
		hasher:  hasher,
		users:   users,
		mileage: mileage,
	}
}

// VerifyUser authenticates an email/password pair and returns the user ID.
// Read-only: no session or audit state is touched here.
func (s *UserService) VerifyUser(ctx context.Context, email, plainPassword string) (kernel.UserID, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return 0, err
	}

	ok, err := s.hasher.Compare(u.PasswordHash, plainPassword)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, user.ErrInvalidPassword().WithDetail("email", email)
	}

	return u.ID, nil
}

// Register creates a new identity and replicates its profile downstream.
//
// The ExistsByEmail pre-check is advisory; the unique index on users.email is
// what actually closes the check-then-insert race (the repository maps the
// violation to the same EmailExists error). A replication failure after the
// local insert is surfaced to the caller while the local row persists.
func (s *UserService) Register(ctx context.Context, in user.RegisterInput) error {
	role := in.Role
	if role == "" {
		role = kernel.RoleUser
	}
	if !role.Valid() {
		return user.ErrInvalidRole().WithDetail("role", role.String())
	}

	exists, err := s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if exists {
		return user.ErrEmailExists().WithDetail("email", in.Email)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	u := &user.User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}

	logx.WithFields(logx.Fields{"user_id": u.ID.Int64(), "email": in.Email}).
		Info("user registered")

	err = s.users.RegisterProfile(ctx, profile.RegisterProfileInput{
		UserID:         u.ID,
		Email:          in.Email,
		Name:           in.Name,
		EmployeeNumber: in.EmployeeNumber,
		JoinDate:       in.JoinDate,
	})
	if err != nil {
		// Known consistency gap: the identity row is already committed and
		// stays committed. The caller sees the failure; reconciliation is a
		// downstream concern.
		logx.WithField("user_id", u.ID.Int64()).WithError(err).
			Error("profile replication failed after local commit")
		return err
	}

	return nil
}

// ChangePassword re-verifies the old password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, id kernel.UserID, oldPassword, newPassword string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Compare(u.PasswordHash, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return user.ErrInvalidPassword().WithDetail("user_id", id.Int64())
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}

	logx.WithField("user_id", id.Int64()).Info("password changed")
	return nil
}

// DeleteAccount verifies the password, removes the identity row, and clears
// downstream records. The local delete is authoritative: downstream cleanup
// failures are logged and do not undo the deletion.
func (s *UserService) DeleteAccount(ctx context.Context, id kernel.UserID, plainPassword string, reason []string, message string) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Compare(u.PasswordHash, plainPassword)
	if err != nil {
		return err
	}
	if !ok {
		return user.ErrInvalidPassword().WithDetail("user_id", id.Int64())
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logx.WithField("user_id", id.Int64()).Info("account deleted")

	if err := s.users.DeleteProfile(ctx, id, profile.DeleteProfileInput{Reason: reason, Message: message}); err != nil {
		logx.WithField("user_id", id.Int64()).WithError(err).
			Warn("profile cleanup failed after account deletion")
	}
	if err := s.mileage.DeleteMileage(ctx, id); err != nil {
		logx.WithField("user_id", id.Int64()).WithError(err).
			Warn("mileage cleanup failed after account deletion")
	}

	return nil
}

// GetProfile fetches the downstream profile record for a user.
func (s *UserService) GetProfile(ctx context.Context, id kernel.UserID) (*profile.Profile, error) {
	p, err := s.users.GetProfile(ctx, id)
	if err != nil {
		return nil, errx.Wrap(err, "failed to fetch user profile", errx.TypeExternal)
	}
	return p, nil
}

// GetMileage fetches the downstream mileage balance for a user.
func (s *UserService) GetMileage(ctx context.Context, id kernel.UserID) (*profile.Mileage, error) {
	return s.mileage.GetMileage(ctx, id)
}
