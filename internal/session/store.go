// Package session owns the "who is the current actor" state of the client
// app. The Store is an explicit, injected service with a single instance per
// running application; views read it and mutate only through
// Login/Register/Logout.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User is the session record persisted in the slot.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

// RegisterInput is the profile collected by the registration form.
type RegisterInput struct {
	Username     string
	Password     string
	Email        string
	FullName     string
	UserType     string
	Bio          string
	ProfileImage string
}

// State is the session lifecycle phase. A user payload exists only in
// StateAuthenticated, so "authenticated but still loading" cannot be
// represented.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Snapshot is a point-in-time view of the session. User is non-nil exactly
// when State is StateAuthenticated.
type Snapshot struct {
	State State
	User  *User
}

var ErrInvalidCredentials = errors.New("email and password are required")

// Store is the single source of truth for the current session. Transitions
// are ordered by invocation: a slower, earlier-invoked operation never
// overwrites the state left by a newer one.
type Store struct {
	slot   Slot
	logger *zap.Logger

	mu          sync.Mutex
	state       State
	user        *User
	seq         uint64
	lastApplied uint64
}

func NewStore(slot Slot, logger *zap.Logger) *Store {
	return &Store{
		slot:   slot,
		logger: logger,
		state:  StateLoading,
	}
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Init restores the persisted session, if any. Until it returns the store
// reports StateLoading so consumers can hold rendering instead of flashing
// a wrong view. A missing or malformed slot starts unauthenticated.
func (s *Store) Init(ctx context.Context) {
	op := s.begin()
	u, err := s.slot.Read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if op < s.lastApplied {
		return
	}
	s.lastApplied = op
	if err != nil {
		s.logger.Warn("session restore failed, starting unauthenticated", zap.Error(err))
		s.state = StateUnauthenticated
		s.user = nil
		return
	}
	if u == nil {
		s.state = StateUnauthenticated
		s.user = nil
		return
	}
	s.state = StateAuthenticated
	s.user = u
	s.logger.Info("session restored", zap.String("user_id", u.ID))
}

// Login transitions to authenticated for the given credentials. Credential
// verification happens server-side on API calls; here the session record is
// derived from the email, matching the account shape the backend issues.
// The transition fails only if the slot write fails, in which case the
// current state is preserved.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	op := s.begin()

	name := email
	if i := strings.Index(email, "@"); i > 0 {
		name = email[:i]
	}
	u := &User{
		ID:    "1",
		Email: email,
		Name:  name,
	}
	return s.commit(ctx, op, "login", u)
}

// Register creates a fresh identity from the profile and transitions to
// authenticated. Same failure contract as Login.
func (s *Store) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}
	op := s.begin()

	u := &User{
		ID:       uuid.NewString(),
		Email:    in.Email,
		Name:     in.FullName,
		Username: in.Username,
		UserType: in.UserType,
	}
	return s.commit(ctx, op, "register", u)
}

// Establish applies an identity that was verified elsewhere, such as an
// account returned by the API's login, through the same ordered transition
// path as Login and Register.
func (s *Store) Establish(ctx context.Context, u *User) (*User, error) {
	if u == nil || u.ID == "" {
		return nil, ErrInvalidCredentials
	}
	op := s.begin()
	record := *u
	return s.commit(ctx, op, "establish", &record)
}

// Logout clears the slot best-effort and leaves the store unauthenticated.
// It never fails.
func (s *Store) Logout(ctx context.Context) {
	op := s.begin()
	if err := s.slot.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear session slot", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if op < s.lastApplied {
		return
	}
	s.lastApplied = op
	s.state = StateUnauthenticated
	s.user = nil
}

func (s *Store) commit(ctx context.Context, op uint64, kind string, u *User) (*User, error) {
	s.mu.Lock()
	if op < s.lastApplied {
		s.mu.Unlock()
		s.logger.Info("discarding superseded session transition", zap.String("op", kind))
		return u, nil
	}
	s.mu.Unlock()

	if err := s.slot.Write(ctx, u); err != nil {
		s.logger.Error("failed to persist session", zap.String("op", kind), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	if op < s.lastApplied {
		// A newer transition finished while this one was persisting. Keep
		// its state and put the slot back the way it left it.
		state, cur := s.state, s.user
		s.mu.Unlock()
		s.logger.Info("discarding superseded session transition", zap.String("op", kind))
		if state == StateAuthenticated && cur != nil {
			_ = s.slot.Write(ctx, cur)
		} else {
			_ = s.slot.Clear(ctx)
		}
		return u, nil
	}
	s.lastApplied = op
	s.state = StateAuthenticated
	s.user = u
	s.mu.Unlock()

	s.logger.Info("session transition applied",
		zap.String("op", kind),
		zap.String("user_id", u.ID),
	)
	return u, nil
}

// Snapshot returns the current session view. The user is copied so callers
// cannot mutate the store's record.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticated && s.user != nil {
		u := *s.user
		return Snapshot{State: StateAuthenticated, User: &u}
	}
	return Snapshot{State: s.state}
}

// CurrentUser returns the authenticated user, or nil.
func (s *Store) CurrentUser() *User {
	snap := s.Snapshot()
	return snap.User
}
