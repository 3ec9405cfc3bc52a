// Package access is the thin coordinator the outside world talks to: it
// validates input, delegates login decisions to the governor and owns the
// verification challenge sessions spawned by lockouts. All collaborators
// are injected explicitly; there is no ambient shared state.
package access

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/challenge"
	"github.com/dmitrijs2005/gatekeeper/internal/server/governor"
	"github.com/dmitrijs2005/gatekeeper/internal/server/store"
)

// MinPasswordLength is the only password policy this system enforces.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type Service struct {
	store    *store.Store
	governor *governor.Governor
	logger   logging.Logger

	pieces int
	delay  time.Duration

	mu         sync.Mutex
	challenges map[string]*challenge.Session // one active session per email
}

func NewService(s *store.Store, g *governor.Governor, pieces int, delay time.Duration, logger logging.Logger) *Service {
	return &Service{
		store:      s,
		governor:   g,
		logger:     logger.With("module", "access"),
		pieces:     pieces,
		delay:      delay,
		challenges: make(map[string]*challenge.Session),
	}
}

// LoginResult is the discriminated outcome of a login request. Challenge is
// set when the outcome is a lockout: it is the session the caller must
// solve to regain access, and it persists across repeated login attempts
// until completed or cancelled.
type LoginResult struct {
	Outcome   governor.Outcome
	Challenge *challenge.Session
}

// Login evaluates one login request. Empty fields are rejected before any
// store access.
func (s *Service) Login(ctx context.Context, email, pw string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	pw = strings.TrimSpace(pw)

	if email == "" || pw == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	out, err := s.governor.Attempt(ctx, email, pw)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{Outcome: out}
	if out.Kind == governor.OutcomeLockedOut {
		result.Challenge = s.ensureChallenge(email)
	}
	return result, nil
}

// Register creates an account after validating the input: every field
// non-empty, password at least MinPasswordLength characters, email of a
// conventional local@domain.tld shape. Validation failures are reported
// before any store access.
func (s *Service) Register(ctx context.Context, name, email, pw string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	pw = strings.TrimSpace(pw)

	if name == "" || email == "" || pw == "" {
		return fmt.Errorf("%w: all fields are required", common.ErrValidation)
	}
	if len(pw) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, MinPasswordLength)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}

	ok, err := s.store.Register(ctx, name, email, pw)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrDuplicateEmail
	}
	return nil
}

// CompleteVerification resets the account's attempt counter and discards
// the active challenge session. It is wired as the challenge's completion
// handler and may also be invoked directly by the caller relaying a
// client-side success.
func (s *Service) CompleteVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrValidation)
	}

	if err := s.governor.Reset(ctx, email); err != nil {
		return err
	}
	s.dropChallenge(email)
	s.logger.Info(ctx, "verification completed", "email", email)
	return nil
}

// CancelVerification discards the active challenge session without
// resetting the counter.
func (s *Service) CancelVerification(email string) {
	s.dropChallenge(email)
}

// Challenge returns the email's active challenge session, if any.
func (s *Service) Challenge(email string) (*challenge.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[email]
	return c, ok
}

func (s *Service) ensureChallenge(email string) *challenge.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.challenges[email]; ok {
		return c
	}

	c := challenge.New(s.pieces, s.delay)
	c.OnSuccess(func() {
		// the session fires at most once, from its own timer goroutine
		if err := s.CompleteVerification(context.Background(), email); err != nil {
			s.logger.Error(context.Background(), "verification reset failed", "email", email, "error", err.Error())
		}
	})
	s.challenges[email] = c
	return c
}

func (s *Service) dropChallenge(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, email)
}
