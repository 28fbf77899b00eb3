package utils

import (
	"strings"
	"testing"
)

func TestPlainHasher(t *testing.T) {
	h := NewPasswordHasher(SchemePlain)
	stored, err := h.Hash("password123")
	if err != nil {
		t.Fatal(err)
	}
	if stored != "password123" {
		t.Fatalf("plain scheme must store verbatim, got %q", stored)
	}
	if !h.Verify("password123", stored) {
		t.Error("expected match")
	}
	if h.Verify("wrong", stored) {
		t.Error("expected mismatch")
	}
}

func TestArgon2Hasher(t *testing.T) {
	h := NewPasswordHasher(SchemeArgon2id)
	stored, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stored, "$argon2id$") {
		t.Fatalf("unexpected hash format %q", stored)
	}
	if !h.Verify("s3cret!", stored) {
		t.Error("expected match")
	}
	if h.Verify("s3cret?", stored) {
		t.Error("expected mismatch")
	}
}

func TestArgon2HasherAcceptsLegacyPlaintext(t *testing.T) {
	h := Argon2Hasher{}
	if !h.Verify("password123", "password123") {
		t.Error("legacy plaintext record should still verify")
	}
	if h.Verify("password12", "password123") {
		t.Error("expected mismatch")
	}
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	if _, err := VerifyPassword("x", "$argon2id$broken"); err == nil {
		t.Error("expected format error")
	}
}
