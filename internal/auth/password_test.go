package auth

import (
	"errors"
	"testing"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{}

	hash, err := h.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "hunter2" {
		t.Error("hash should not equal the raw password")
	}

	if err := h.Compare(hash, "hunter2"); err != nil {
		t.Errorf("Compare with correct password failed: %v", err)
	}
	if err := h.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestBcryptHashesAreSalted(t *testing.T) {
	h := BcryptHasher{}
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Error("two hashes of the same password should differ (salt)")
	}
}

func TestPlainHasher(t *testing.T) {
	h := PlainHasher{}
	hash, _ := h.Hash("pw")
	if err := h.Compare(hash, "pw"); err != nil {
		t.Errorf("Compare failed: %v", err)
	}
	if err := h.Compare(hash, "other"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
}
