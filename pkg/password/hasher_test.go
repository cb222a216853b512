package password_test

import (
	"testing"

	"github.com/dpang/auth-server/pkg/password"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := password.NewBcryptHasher(4) // min cost keeps the test fast

	hash, err := h.Hash("hunter2")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "hunter2" || hash == "" {
		t.Fatalf("hash must not echo the plaintext, got %q", hash)
	}

	ok, err := h.Compare(hash, "hunter2")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to compare true")
	}

	ok, err = h.Compare(hash, "wrong-password")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if ok {
		t.Fatal("expected mismatching password to compare false")
	}
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	h := password.NewBcryptHasher(4)

	h1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	h2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ (per-hash salt)")
	}
}

func TestBcryptHasher_GarbageHash(t *testing.T) {
	h := password.NewBcryptHasher(4)

	if _, err := h.Compare("not-a-bcrypt-hash", "pw"); err == nil {
		t.Fatal("expected error comparing against a malformed hash")
	}
}
