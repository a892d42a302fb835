package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewService_RequiresSecret(t *testing.T) {
	if _, err := NewService(NewUserRepository(testDB(t)), ServiceConfig{}); err == nil {
		t.Error("NewService() without secret should fail")
	}
}

func TestService_RegisterLoginAuthenticate(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Parent@Example.com", "hunter2")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == "hunter2" {
		t.Errorf("PasswordHash = %q, want an argon2id hash", user.PasswordHash)
	}

	tok, err := svc.Login(ctx, "parent@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if tok.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want bearer", tok.TokenType)
	}
	if tok.ExpiresIn != int(DefaultTokenTTL.Seconds()) {
		t.Errorf("ExpiresIn = %d, want %d", tok.ExpiresIn, int(DefaultTokenTTL.Seconds()))
	}

	got, err := svc.Authenticate(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("Authenticate() user = %q, want %q", got.ID, user.ID)
	}
}

func TestService_RegisterDuplicate(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "twice@example.com", "pw"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, "twice@example.com", "other"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("Register() duplicate error = %v, want ErrEmailExists", err)
	}
}

func TestService_LoginFailures(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "known@example.com", "right"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "known@example.com", "wrong"},
		{"unknown email", "unknown@example.com", "right"},
		{"empty password", "known@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestService_AuthenticateDeletedUser(t *testing.T) {
	svc, repo := testService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "gone@example.com", "pw")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	tok, err := svc.Login(ctx, "gone@example.com", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := svc.Authenticate(ctx, tok.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Authenticate() error = %v, want ErrTokenInvalid", err)
	}
}

func TestService_AuthenticateExpired(t *testing.T) {
	svc, repo := testService(t)
	ctx := context.Background()

	user := seedTestUser(t, repo.db, "late@example.com", "pw")
	expired, _, err := IssueToken(user, testSecret, time.Nanosecond)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	time.Sleep(1100 * time.Millisecond) // exp has second granularity

	if _, err := svc.Authenticate(ctx, expired); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Authenticate() error = %v, want ErrTokenExpired", err)
	}
}

func TestService_GetUser(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "me@example.com", "pw")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	got, err := svc.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Email != "me@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
}
