package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newTestPasetoService(t *testing.T) *PasetoService {
	t.Helper()
	svc, err := NewPasetoService([]byte(testKey))
	if err != nil {
		t.Fatalf("NewPasetoService error: %v", err)
	}
	return svc
}

func TestNewPasetoService_RejectsShortKey(t *testing.T) {
	if _, err := NewPasetoService([]byte("too-short")); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestCreateAndVerifyToken(t *testing.T) {
	svc := newTestPasetoService(t)

	userID := uuid.New()
	token, err := svc.CreateToken(userID, "alice", time.Hour)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}
	if !strings.HasPrefix(token, "v4.local.") {
		t.Fatalf("unexpected token format: %s", token)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if claims.UserID != userID.String() {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Username != "alice" {
		t.Fatalf("expected username alice, got %s", claims.Username)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Fatal("expected expiry in the future")
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	svc := newTestPasetoService(t)

	token, err := svc.CreateToken(uuid.New(), "alice", -time.Minute)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}

	if _, err := svc.VerifyToken(token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyToken_WrongKey(t *testing.T) {
	svc := newTestPasetoService(t)
	other, err := NewPasetoService([]byte("fedcba9876543210fedcba9876543210"))
	if err != nil {
		t.Fatalf("NewPasetoService error: %v", err)
	}

	token, err := svc.CreateToken(uuid.New(), "alice", time.Hour)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}

	if _, err := other.VerifyToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc := newTestPasetoService(t)

	if _, err := svc.VerifyToken("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
