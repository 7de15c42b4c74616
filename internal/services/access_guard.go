package services

import (
	"context"
	"sync"

	"github.com/africanjoy/feedback-backend/internal/domain"
)

// GuardState is the access guard's resolution state. The guard starts in
// GuardChecking and moves exactly once to one of the terminal states; there
// is no retry and no transition back.
type GuardState int

const (
	GuardChecking GuardState = iota
	GuardAuthenticated
	GuardUnauthenticated
)

func (s GuardState) String() string {
	switch s {
	case GuardChecking:
		return "checking"
	case GuardAuthenticated:
		return "authenticated"
	case GuardUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// SessionProbe asks the auth collaborator whether a token maps to a live
// session. ErrNoSession means no; any other error is treated the same way.
type SessionProbe func(ctx context.Context) (*domain.Session, error)

// AccessGuard gates a protected surface behind a single session probe.
// Readers observing GuardChecking must neither render the protected content
// nor redirect; once the probe resolves, the state is final.
type AccessGuard struct {
	probe SessionProbe

	mu      sync.Mutex
	state   GuardState
	session *domain.Session
}

func NewAccessGuard(probe SessionProbe) *AccessGuard {
	return &AccessGuard{probe: probe, state: GuardChecking}
}

// Resolve runs the probe and settles the guard. Calls after the first
// resolution return the settled state without probing again.
func (g *AccessGuard) Resolve(ctx context.Context) GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GuardChecking {
		return g.state
	}

	s, err := g.probe(ctx)
	if err != nil || s == nil {
		g.state = GuardUnauthenticated
		return g.state
	}
	g.session = s
	g.state = GuardAuthenticated
	return g.state
}

// State reports the current resolution state without triggering a probe.
func (g *AccessGuard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the resolved session, or nil unless the guard settled
// on GuardAuthenticated.
func (g *AccessGuard) Session() *domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GuardAuthenticated {
		return nil
	}
	return g.session
}
