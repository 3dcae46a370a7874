package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestVerify(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    "DRIVER",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	user, err := NewJWTVerifier(testSecret).Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != userID {
		t.Errorf("user id = %s, want %s", user.ID, userID)
	}
	if user.Role != types.RoleDriver {
		t.Errorf("role = %s, want DRIVER", user.Role)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    "PASSENGER",
	})

	if _, err := NewJWTVerifier(testSecret).Verify(context.Background(), token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestVerify_Expired(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    "PASSENGER",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := NewJWTVerifier(testSecret).Verify(context.Background(), token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerify_MissingUserID(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"role": "DRIVER"})

	if _, err := NewJWTVerifier(testSecret).Verify(context.Background(), token); err == nil {
		t.Fatal("expected error for token without user_id claim")
	}
}

func TestExtractBearerToken(t *testing.T) {
	if tok, err := extractBearerToken("Bearer abc123"); err != nil || tok != "abc123" {
		t.Errorf("got (%q, %v), want (abc123, nil)", tok, err)
	}
	for _, header := range []string{"abc123", "Basic abc123", "Bearer", "Bearer "} {
		if _, err := extractBearerToken(header); err == nil {
			t.Errorf("header %q accepted, want error", header)
		}
	}
}
