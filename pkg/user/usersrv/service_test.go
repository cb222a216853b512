package usersrv_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/password"
	"github.com/dpang/auth-server/pkg/profile"
	"github.com/dpang/auth-server/pkg/user"
	"github.com/dpang/auth-server/pkg/user/usersrv"
)

// fakeUserRepo is an in-memory user.Repository with a unique email check.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*user.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id.Int64()]
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.ErrEmailExists()
		}
	}
	r.seq++
	u.ID = kernel.NewUserID(r.seq)
	cp := *u
	r.users[r.seq] = &cp
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id kernel.UserID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id.Int64()]
	if !ok {
		return user.ErrUserNotFound()
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id kernel.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id.Int64()]; !ok {
		return user.ErrUserNotFound()
	}
	delete(r.users, id.Int64())
	return nil
}

// fakeProfileClient implements both downstream contracts and records calls.
type fakeProfileClient struct {
	mu          sync.Mutex
	registered  []profile.RegisterProfileInput
	deleted     []kernel.UserID
	mileageGone []kernel.UserID

	failRegister      bool
	failDeleteProfile bool
	failDeleteMileage bool
}

func (c *fakeProfileClient) RegisterProfile(_ context.Context, in profile.RegisterProfileInput) error {
	if c.failRegister {
		return profile.ErrReplicationFailed()
	}
	c.mu.Lock()
	c.registered = append(c.registered, in)
	c.mu.Unlock()
	return nil
}

func (c *fakeProfileClient) GetProfile(_ context.Context, id kernel.UserID) (*profile.Profile, error) {
	return &profile.Profile{UserID: id, Name: "Hong Gildong"}, nil
}

func (c *fakeProfileClient) DeleteProfile(_ context.Context, id kernel.UserID, _ profile.DeleteProfileInput) error {
	if c.failDeleteProfile {
		return profile.ErrDeleteFailed()
	}
	c.mu.Lock()
	c.deleted = append(c.deleted, id)
	c.mu.Unlock()
	return nil
}

func (c *fakeProfileClient) GetMileage(_ context.Context, _ kernel.UserID) (*profile.Mileage, error) {
	return &profile.Mileage{Mileage: 1000, PersonalChargedMileage: 200}, nil
}

func (c *fakeProfileClient) DeleteMileage(_ context.Context, id kernel.UserID) error {
	if c.failDeleteMileage {
		return profile.ErrDeleteFailed()
	}
	c.mu.Lock()
	c.mileageGone = append(c.mileageGone, id)
	c.mu.Unlock()
	return nil
}

type fixture struct {
	svc        *usersrv.UserService
	repo       *fakeUserRepo
	downstream *fakeProfileClient
	hasher     password.Hasher
	userID     kernel.UserID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeUserRepo()
	downstream := &fakeProfileClient{}
	hasher := password.NewBcryptHasher(4)

	hash, err := hasher.Hash("old-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	u := &user.User{Email: "a@b.com", PasswordHash: hash, Role: kernel.RoleUser}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	return &fixture{
		svc:        usersrv.NewUserService(repo, hasher, downstream, downstream),
		repo:       repo,
		downstream: downstream,
		hasher:     hasher,
		userID:     u.ID,
	}
}

func TestVerifyUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.VerifyUser(ctx, "a@b.com", "old-password")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if id != f.userID {
		t.Errorf("id = %d, want %d", id.Int64(), f.userID.Int64())
	}

	if _, err := f.svc.VerifyUser(ctx, "a@b.com", "wrong"); !errors.Is(err, user.ErrInvalidPassword()) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := f.svc.VerifyUser(ctx, "nobody@b.com", "old-password"); !errors.Is(err, user.ErrUserNotFound()) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := user.RegisterInput{
		Email:          "new@b.com",
		Password:       "secret-pass",
		Name:           "Kim Cheolsu",
		EmployeeNumber: 20240001,
		JoinDate:       "2024-03-01",
	}
	if err := f.svc.Register(ctx, in); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	u, err := f.repo.FindByEmail(ctx, "new@b.com")
	if err != nil {
		t.Fatalf("registered user missing: %v", err)
	}
	if u.Role != kernel.RoleUser {
		t.Errorf("role = %q, want default USER", u.Role)
	}
	if u.PasswordHash == "secret-pass" {
		t.Fatal("password must be stored hashed")
	}
	if ok, _ := f.hasher.Compare(u.PasswordHash, "secret-pass"); !ok {
		t.Fatal("stored hash must verify the password")
	}

	if len(f.downstream.registered) != 1 || f.downstream.registered[0].UserID != u.ID {
		t.Fatalf("profile replication missing: %+v", f.downstream.registered)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Register(context.Background(), user.RegisterInput{Email: "a@b.com", Password: "x"})
	if !errors.Is(err, user.ErrEmailExists()) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Register(context.Background(), user.RegisterInput{
		Email:    "new@b.com",
		Password: "x",
		Role:     kernel.Role("JANITOR"),
	})
	if !errors.Is(err, user.ErrInvalidRole()) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRegister_ReplicationFailureKeepsLocalRow(t *testing.T) {
	f := newFixture(t)
	f.downstream.failRegister = true
	ctx := context.Background()

	err := f.svc.Register(ctx, user.RegisterInput{Email: "new@b.com", Password: "x"})
	if !errors.Is(err, profile.ErrReplicationFailed()) {
		t.Fatalf("expected replication failure to surface, got %v", err)
	}

	// The identity row stays committed; reconciliation is downstream work.
	if _, err := f.repo.FindByEmail(ctx, "new@b.com"); err != nil {
		t.Fatalf("local row must persist after replication failure: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.ChangePassword(ctx, f.userID, "wrong", "next"); !errors.Is(err, user.ErrInvalidPassword()) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	if err := f.svc.ChangePassword(ctx, f.userID, "old-password", "new-password"); err != nil {
		t.Fatalf("change failed: %v", err)
	}

	if _, err := f.svc.VerifyUser(ctx, "a@b.com", "new-password"); err != nil {
		t.Fatalf("new password must verify: %v", err)
	}
	if _, err := f.svc.VerifyUser(ctx, "a@b.com", "old-password"); !errors.Is(err, user.ErrInvalidPassword()) {
		t.Fatalf("old password must stop verifying, got %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.DeleteAccount(ctx, f.userID, "wrong", nil, ""); !errors.Is(err, user.ErrInvalidPassword()) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	if err := f.svc.DeleteAccount(ctx, f.userID, "old-password", []string{"LEAVING"}, "bye"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := f.repo.FindByID(ctx, f.userID); !errors.Is(err, user.ErrUserNotFound()) {
		t.Fatalf("identity row must be gone, got %v", err)
	}
	if len(f.downstream.deleted) != 1 || len(f.downstream.mileageGone) != 1 {
		t.Fatalf("downstream cleanup missing: profiles=%v mileage=%v",
			f.downstream.deleted, f.downstream.mileageGone)
	}
}

func TestDeleteAccount_DownstreamFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.downstream.failDeleteProfile = true
	f.downstream.failDeleteMileage = true
	ctx := context.Background()

	// The local delete is authoritative; cleanup failures are logged only.
	if err := f.svc.DeleteAccount(ctx, f.userID, "old-password", nil, ""); err != nil {
		t.Fatalf("delete must succeed despite downstream failures: %v", err)
	}
	if _, err := f.repo.FindByID(ctx, f.userID); !errors.Is(err, user.ErrUserNotFound()) {
		t.Fatalf("identity row must be gone, got %v", err)
	}
}
