package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/session"
)

func newTestAuthService(t *testing.T, store *fakeStore) (*AuthService, *session.MemoryStore) {
	t.Helper()
	sessions := session.NewMemoryStore(time.Minute)
	t.Cleanup(func() { sessions.Close() })
	return NewAuthService(store, store, testPasswords(), sessions, testLogger(), nil), sessions
}

func mustRegister(t *testing.T, svc *AuthService, username, email, password string) {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterInput{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		t.Fatalf("Register(%q) error = %v", username, err)
	}
}

// =========================================================================
// Register
// =========================================================================

func TestRegister_Success(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestAuthService(t, store)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("user.ID is empty")
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Errorf("PasswordHash = %q, want a bcrypt hash", user.PasswordHash)
	}
	if n, _ := store.CountUsers(context.Background()); n != 1 {
		t.Errorf("CountUsers() = %d, want 1", n)
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      RegisterInput
		wantMsg string
	}{
		{
			name:    "passwords differ",
			in:      RegisterInput{Username: "a", Email: "a@x.io", Password: "secret1", ConfirmPassword: "secret2"},
			wantMsg: "Passwords do not match!",
		},
		{
			name:    "too short",
			in:      RegisterInput{Username: "a", Email: "a@x.io", Password: "abc", ConfirmPassword: "abc"},
			wantMsg: "Password must be at least 6 characters long!",
		},
		{
			name:    "mismatch is reported before length",
			in:      RegisterInput{Username: "a", Email: "a@x.io", Password: "ab", ConfirmPassword: "cd"},
			wantMsg: "Passwords do not match!",
		},
		{
			name:    "longer than bcrypt accepts",
			in:      RegisterInput{Username: "a", Email: "a@x.io", Password: strings.Repeat("a", 80), ConfirmPassword: strings.Repeat("a", 80)},
			wantMsg: "Password must be at most 72 bytes long!",
		},
		{
			name:    "blank username",
			in:      RegisterInput{Username: "  ", Email: "a@x.io", Password: "secret1", ConfirmPassword: "secret1"},
			wantMsg: "Username is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc, _ := newTestAuthService(t, store)

			_, err := svc.Register(context.Background(), tt.in)

			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Register() error = %v, want ErrValidation", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
			if n, _ := store.CountUsers(context.Background()); n != 0 {
				t.Errorf("CountUsers() = %d, want 0", n)
			}
		})
	}
}

func TestRegister_Duplicates(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestAuthService(t, store)
	mustRegister(t, svc, "alice", "alice@example.com", "secret1")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate username error = %v, want ErrConflict", err)
	}
	if appErr.Field != "username" || appErr.Message != "Username already exists!" {
		t.Errorf("got field %q message %q", appErr.Field, appErr.Message)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "bob", Email: "alice@example.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	if !errors.As(err, &appErr) || appErr.Field != "email" {
		t.Fatalf("duplicate email error = %v, want email conflict", err)
	}
	if appErr.Message != "Email already registered!" {
		t.Errorf("Message = %q", appErr.Message)
	}

	if n, _ := store.CountUsers(context.Background()); n != 1 {
		t.Errorf("CountUsers() = %d, want 1 (store unchanged)", n)
	}
}

// =========================================================================
// Login
// =========================================================================

func TestLogin_User(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestAuthService(t, store)
	mustRegister(t, svc, "alice", "alice@example.com", "secret1")

	p, err := svc.Login(context.Background(), "alice", "secret1", session.RoleUser)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !p.IsUser() || p.Username != "alice" || p.ID == "" {
		t.Errorf("principal = %+v, want user alice", p)
	}
}

func TestLogin_TrimsUsername(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestAuthService(t, store)
	mustRegister(t, svc, " bob ", "bob@example.com", "secret1")

	for _, name := range []string{"bob", " bob ", "bob\t"} {
		p, err := svc.Login(context.Background(), name, "secret1", session.RoleUser)
		if err != nil {
			t.Fatalf("Login(%q) error = %v", name, err)
		}
		if p.Username != "bob" {
			t.Errorf("Login(%q) username = %q, want %q", name, p.Username, "bob")
		}
	}
}

func TestLogin_Failures(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestAuthService(t, store)
	mustRegister(t, svc, "alice", "alice@example.com", "secret1")
	if _, err := svc.CreateAdmin(context.Background(), "root", "admin123"); err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		role     session.Role
		wantMsg  string
	}{
		{"wrong user password", "alice", "nope123", session.RoleUser, "Invalid username or password"},
		{"unknown user", "mallory", "secret1", session.RoleUser, "Invalid username or password"},
		{"wrong admin password", "root", "nope123", session.RoleAdmin, "Invalid admin credentials"},
		{"unknown admin", "ghost", "admin123", session.RoleAdmin, "Invalid admin credentials"},
		{"user credentials as admin", "alice", "secret1", session.RoleAdmin, "Invalid admin credentials"},
		{"admin credentials as user", "root", "admin123", session.RoleUser, "Invalid username or password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Login(context.Background(), tt.username, tt.password, tt.role)

			if !errors.Is(err, apperror.ErrUnauthorized) {
				t.Fatalf("Login() error = %v, want ErrUnauthorized", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
			if !p.IsAnonymous() {
				t.Errorf("principal = %+v, want anonymous", p)
			}
		})
	}
}

func TestLogin_RoleIsolation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestAuthService(t, store)

	// Same name and password in both tables.
	mustRegister(t, svc, "sam", "sam@example.com", "shared99")
	if _, err := svc.CreateAdmin(context.Background(), "sam", "shared99"); err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}

	user, err := svc.Login(context.Background(), "sam", "shared99", session.RoleUser)
	if err != nil {
		t.Fatalf("Login(user) error = %v", err)
	}
	admin, err := svc.Login(context.Background(), "sam", "shared99", session.RoleAdmin)
	if err != nil {
		t.Fatalf("Login(admin) error = %v", err)
	}

	if !user.IsUser() || user.IsAdmin() {
		t.Errorf("user login gave %+v", user)
	}
	if !admin.IsAdmin() || admin.IsUser() {
		t.Errorf("admin login gave %+v", admin)
	}
	if user.ID == admin.ID {
		t.Error("user and admin principals share an ID")
	}
}

func TestLogin_InvalidRole(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeStore())

	_, err := svc.Login(context.Background(), "a", "b", session.Role("superuser"))

	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Login() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// Logout
// =========================================================================

func TestLogout_Idempotent(t *testing.T) {
	svc, sessions := newTestAuthService(t, newFakeStore())
	ctx := context.Background()

	if err := sessions.Set(ctx, "h1", session.NewUser("u1", "alice"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Logout(ctx, "h1"); err != nil {
			t.Fatalf("Logout() call %d error = %v", i+1, err)
		}
	}
	if _, err := sessions.Get(ctx, "h1"); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Get() after logout error = %v, want ErrNoSession", err)
	}
	if err := svc.Logout(ctx, ""); err != nil {
		t.Errorf("Logout(\"\") error = %v, want nil", err)
	}
}

// =========================================================================
// Admin accounts
// =========================================================================

func TestEnsureDefaultAdmin(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestAuthService(t, store)
	ctx := context.Background()

	created, err := svc.EnsureDefaultAdmin(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("EnsureDefaultAdmin() error = %v", err)
	}
	if !created {
		t.Error("first call created = false, want true")
	}

	created, err = svc.EnsureDefaultAdmin(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("EnsureDefaultAdmin() second call error = %v", err)
	}
	if created {
		t.Error("second call created = true, want false")
	}

	if _, err := svc.Login(ctx, "admin", "admin123", session.RoleAdmin); err != nil {
		t.Errorf("Login(default admin) error = %v", err)
	}
}

func TestCreateAdmin_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeStore())

	if _, err := svc.CreateAdmin(context.Background(), "", "admin123"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank username error = %v, want ErrValidation", err)
	}
	if _, err := svc.CreateAdmin(context.Background(), "root", "123"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("short password error = %v, want ErrValidation", err)
	}
	if _, err := svc.CreateAdmin(context.Background(), "root", strings.Repeat("a", 80)); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("80 byte password error = %v, want ErrValidation", err)
	}
}
