package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/data/repos/testutil"
	"github.com/yungbote/constella-backend/internal/platform/ctxutil"
)

func TestAuthService_RoundTrip(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), "secret", "constella")
	userID := uuid.New()
	token, err := svc.IssueToken(userID, time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if got := ctxutil.UserID(ctx); got != userID {
		t.Fatalf("user id: want=%s got=%s", userID, got)
	}
}

func TestAuthService_Rejects(t *testing.T) {
	log := testutil.Logger(t)
	svc := NewAuthService(log, "secret", "")
	userID := uuid.New()

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}).SignedString([]byte("secret"))
	otherKey, _ := NewAuthService(log, "other", "").IssueToken(userID, time.Minute)
	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}).SignedString([]byte("secret"))

	for name, token := range map[string]string{
		"empty":       "",
		"garbage":     "abc.def.ghi",
		"wrong key":   otherKey,
		"bad subject": badSubject,
		"expired":     expired,
	} {
		if _, err := svc.SetContextFromToken(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("%s: want ErrUnauthenticated, got %v", name, err)
		}
	}
}
