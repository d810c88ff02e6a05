package jwt

import (
	"testing"
	"time"

	"go-clinic-workflow/config"

	"github.com/google/uuid"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "unit-test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, "doc@clinic.test", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("token should validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, claims.UserID)
	}
	if claims.TokenID != tokenID {
		t.Errorf("expected token id %s, got %s", tokenID, claims.TokenID)
	}
	if claims.TokenType != AccessToken {
		t.Errorf("expected access token type, got %s", claims.TokenType)
	}
	if claims.RoleID != 2 {
		t.Errorf("expected role 2, got %d", claims.RoleID)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.GenerateRefreshToken(uuid.New(), "doc@clinic.test", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := newTestService().GenerateAccessToken(uuid.New(), "doc@clinic.test", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", AccessExpiry: time.Minute})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}
