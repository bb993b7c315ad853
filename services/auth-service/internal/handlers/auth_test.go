package handlers

import (
	"testing"
	"time"

	"github.com/mahfuz-anam/pawcare/libs/auth"
	"github.com/mahfuz-anam/pawcare/services/auth-service/internal/storage"
)

func TestPasswordHashing(t *testing.T) {
	password := "pass123"
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if err := verifyPassword(hash, password); err != nil {
		t.Fatalf("verifyPassword should succeed: %v", err)
	}
	if err := verifyPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("verifyPassword should fail for wrong password")
	}
}

func TestIssueTokenCarriesIdentity(t *testing.T) {
	h := NewAuthHandler(nil, "test-secret")
	user := storage.User{ID: "u-1", Email: "pet@owner.example", Role: "customer"}

	token, err := h.issueToken(user)
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}
	claims, err := auth.ParseAndVerifyHS256(token, "test-secret")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Sub != user.ID || claims.Email != user.Email || claims.Role != user.Role {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Exp <= time.Now().Unix() {
		t.Fatal("token should expire in the future")
	}
}
