package auth

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, "test-secret")
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register("Ana@Example.com", "s3creta", "Ana")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.Password == "s3creta" {
		t.Fatal("password stored in clear")
	}

	logged, token, err := svc.Login("ana@example.com", "s3creta")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Fatalf("unexpected login result: %+v, %q", logged, token)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserId != user.ID || claims.Role != "user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Register("a@b.com", "x", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register("a@b.com", "y", ""); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Register("a@b.com", "right", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login("a@b.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login("nobody@b.com", "x"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := newTestService(t)
	user, _ := svc.Register("a@b.com", "pw", "")
	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(token + "x"); err == nil {
		t.Fatal("tampered token must not verify")
	}

	other := NewService(svc.db, "other-secret")
	if _, err := other.Verify(token); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Register("a@b.com", "old", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.BeginPasswordReset("a@b.com")
	if err != nil || token == "" {
		t.Fatalf("begin reset: %q, %v", token, err)
	}

	if err := svc.ResetPassword(token, "new"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := svc.Login("a@b.com", "new"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	// the token is single use
	if err := svc.ResetPassword(token, "again"); err != ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken on reuse, got %v", err)
	}
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.BeginPasswordReset("ghost@b.com")
	if err != nil || token != "" {
		t.Fatalf("unknown email must yield empty token and nil error, got %q, %v", token, err)
	}
}

func TestExpiredResetToken(t *testing.T) {
	svc := newTestService(t)
	user, _ := svc.Register("a@b.com", "pw", "")
	token, _ := svc.BeginPasswordReset("a@b.com")

	svc.db.Model(&domain.User{}).Where("id = ?", user.ID).
		Update("reset_token_expires", time.Now().Add(-time.Minute))

	if err := svc.ResetPassword(token, "new"); err != ErrInvalidResetToken {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}
