package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

func newAuthService(t *testing.T, ttl time.Duration) *AuthService {
	t.Helper()
	return &AuthService{DB: newTestDB(t), SessionTTL: ttl}
}

func TestEnsureUserAndSignIn(t *testing.T) {
	a := newAuthService(t, time.Hour)
	if err := a.EnsureUser(context.Background(), "Admin@AfricanJoy.example", "dairy-milk-1"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	s, err := a.SignIn(context.Background(), "admin@africanjoy.example", "dairy-milk-1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if s.Token == "" || s.UserID == "" {
		t.Fatalf("incomplete session %+v", s)
	}
	if !s.ExpiresAt.After(time.Now().UTC()) {
		t.Fatalf("session already expired: %v", s.ExpiresAt)
	}
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	a := newAuthService(t, time.Hour)
	for i := 0; i < 2; i++ {
		if err := a.EnsureUser(context.Background(), "admin@africanjoy.example", "pw"); err != nil {
			t.Fatalf("ensure user (call %d): %v", i+1, err)
		}
	}
}

func TestSignInMismatchedEmailCase(t *testing.T) {
	a := newAuthService(t, time.Hour)
	if err := a.EnsureUser(context.Background(), "admin@africanjoy.example", "pw"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if _, err := a.SignIn(context.Background(), "  ADMIN@AFRICANJOY.EXAMPLE  ", "pw"); err != nil {
		t.Fatalf("case-insensitive sign-in failed: %v", err)
	}
}

func TestSignInFailuresAreUniform(t *testing.T) {
	a := newAuthService(t, time.Hour)
	if err := a.EnsureUser(context.Background(), "admin@africanjoy.example", "right"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}

	cases := []struct{ email, password string }{
		{"admin@africanjoy.example", "wrong"},
		{"nobody@africanjoy.example", "right"},
		{"", "right"},
		{"admin@africanjoy.example", ""},
	}
	for _, c := range cases {
		if _, err := a.SignIn(context.Background(), c.email, c.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("SignIn(%q, %q) err = %v, want ErrInvalidCredentials", c.email, c.password, err)
		}
	}
}

func TestSessionProbe(t *testing.T) {
	a := newAuthService(t, time.Hour)
	if err := a.EnsureUser(context.Background(), "admin@africanjoy.example", "pw"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	s, err := a.SignIn(context.Background(), "admin@africanjoy.example", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	got, err := a.Session(context.Background(), s.Token)
	if err != nil {
		t.Fatalf("session probe: %v", err)
	}
	if got.UserID != s.UserID {
		t.Fatalf("session user %q, want %q", got.UserID, s.UserID)
	}

	for _, token := range []string{"", "not-a-token"} {
		if _, err := a.Session(context.Background(), token); !errors.Is(err, ErrNoSession) {
			t.Fatalf("Session(%q) err = %v, want ErrNoSession", token, err)
		}
	}
}

func TestExpiredSessionIsAbsentAndPruned(t *testing.T) {
	a := newAuthService(t, -time.Minute)
	if err := a.EnsureUser(context.Background(), "admin@africanjoy.example", "pw"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	s, err := a.SignIn(context.Background(), "admin@africanjoy.example", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	if _, err := a.Session(context.Background(), s.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired session err = %v, want ErrNoSession", err)
	}
	// The probe also removes the row, so a non-expired TTL cannot revive it.
	a.SessionTTL = time.Hour
	if _, err := a.Session(context.Background(), s.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("pruned session err = %v, want ErrNoSession", err)
	}
}

func TestSignOutRevokesAndIsIdempotent(t *testing.T) {
	a := newAuthService(t, time.Hour)
	if err := a.EnsureUser(context.Background(), "admin@africanjoy.example", "pw"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	s, err := a.SignIn(context.Background(), "admin@africanjoy.example", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	if err := a.SignOut(context.Background(), s.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := a.Session(context.Background(), s.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("revoked session err = %v, want ErrNoSession", err)
	}
	if err := a.SignOut(context.Background(), s.Token); err != nil {
		t.Fatalf("repeat sign out: %v", err)
	}
	if err := a.SignOut(context.Background(), ""); err != nil {
		t.Fatalf("blank sign out: %v", err)
	}
}

func TestEnsureUserRequiresCredentials(t *testing.T) {
	a := newAuthService(t, time.Hour)
	if err := a.EnsureUser(context.Background(), "", "pw"); err == nil {
		t.Fatal("expected error for blank email")
	}
	if err := a.EnsureUser(context.Background(), "admin@africanjoy.example", ""); err == nil {
		t.Fatal("expected error for blank password")
	}
}

func TestAccessGuardResolvesAuthenticated(t *testing.T) {
	want := &domain.Session{Token: "tok", UserID: "u1"}
	probes := 0
	g := NewAccessGuard(func(ctx context.Context) (*domain.Session, error) {
		probes++
		return want, nil
	})

	if g.State() != GuardChecking {
		t.Fatalf("initial state = %v, want checking", g.State())
	}
	if g.Session() != nil {
		t.Fatal("session must be nil while checking")
	}

	if got := g.Resolve(context.Background()); got != GuardAuthenticated {
		t.Fatalf("resolve = %v, want authenticated", got)
	}
	if g.Session() != want {
		t.Fatal("resolved session not exposed")
	}
	if g.Resolve(context.Background()) != GuardAuthenticated || probes != 1 {
		t.Fatalf("guard must settle after one probe, probes = %d", probes)
	}
}

func TestAccessGuardResolvesUnauthenticatedWithoutRetry(t *testing.T) {
	probes := 0
	g := NewAccessGuard(func(ctx context.Context) (*domain.Session, error) {
		probes++
		return nil, ErrNoSession
	})

	if got := g.Resolve(context.Background()); got != GuardUnauthenticated {
		t.Fatalf("resolve = %v, want unauthenticated", got)
	}
	// A later resolve must not probe again even if a session now exists.
	if got := g.Resolve(context.Background()); got != GuardUnauthenticated {
		t.Fatalf("second resolve = %v, want unauthenticated", got)
	}
	if probes != 1 {
		t.Fatalf("probes = %d, want 1", probes)
	}
	if g.Session() != nil {
		t.Fatal("unauthenticated guard must expose no session")
	}
}

func TestAccessGuardTreatsProbeFailureAsUnauthenticated(t *testing.T) {
	g := NewAccessGuard(func(ctx context.Context) (*domain.Session, error) {
		return nil, errors.New("backend unreachable")
	})
	if got := g.Resolve(context.Background()); got != GuardUnauthenticated {
		t.Fatalf("resolve = %v, want unauthenticated", got)
	}
}

func TestGuardStateStrings(t *testing.T) {
	if GuardChecking.String() != "checking" || GuardAuthenticated.String() != "authenticated" || GuardUnauthenticated.String() != "unauthenticated" {
		t.Fatal("unexpected state strings")
	}
}
