package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret-at-least-32-chars-long-for-security"

func TestJWTManager_GenerateAndValidate_Success(t *testing.T) {
	t.Parallel()
	manager := NewJWTManager(testSecret, "memorygym-test", 15*time.Minute)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token %q is not a compact JWT", token)
	}

	got, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if got != userID {
		t.Errorf("expected userID %s, got %s", userID, got)
	}
}

func TestJWTManager_GenerateAccessToken_NilUser(t *testing.T) {
	t.Parallel()
	manager := NewJWTManager(testSecret, "memorygym-test", time.Minute)

	if _, err := manager.GenerateAccessToken(uuid.Nil); err == nil {
		t.Fatal("expected error for nil user id")
	}
}

func TestJWTManager_ValidateToken_Failures(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	manager := NewJWTManager(testSecret, "memorygym-test", time.Hour)
	manager.now = func() time.Time { return issuedAt }
	valid, err := manager.GenerateAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	otherIssuer := NewJWTManager(testSecret, "someone-else", time.Hour)
	otherIssuer.now = manager.now
	foreign, _ := otherIssuer.GenerateAccessToken(uuid.New())

	otherSecret := NewJWTManager("another-secret-that-is-also-32-chars-long", "memorygym-test", time.Hour)
	otherSecret.now = manager.now
	forged, _ := otherSecret.GenerateAccessToken(uuid.New())

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: uuid.NewString(), Issuer: "memorygym-test",
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{"empty", "", issuedAt},
		{"garbage", "not.a.jwt", issuedAt},
		{"expired", valid, issuedAt.Add(2 * time.Hour)},
		{"wrong issuer", foreign, issuedAt},
		{"wrong secret", forged, issuedAt},
		{"alg none", none, issuedAt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewJWTManager(testSecret, "memorygym-test", time.Hour)
			at := tt.at
			m.now = func() time.Time { return at }

			_, err := m.ValidateToken(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
