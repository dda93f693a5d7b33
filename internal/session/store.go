// Package session is the single source of truth for who is logged in.
//
// A Store persists the user record and bearer token as a pair, restores them
// on start, and notifies subscribers of every change. Restore is self-healing:
// any half-written, malformed or expired state is cleared and reported as
// logged out. A storage read that fails leaves both storage and the
// in-memory state untouched.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/existflow/kawai/internal/logger"
	"github.com/existflow/kawai/internal/model"
	"github.com/existflow/kawai/internal/token"
)

var (
	// ErrNotLoggedIn is returned by callers that need a session and found none.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrInvalidUser is returned by Login for a user without a phone number.
	ErrInvalidUser = errors.New("user has no phone number")
	// ErrExpired is returned by Login for a token already past its exp.
	ErrExpired = errors.New("token expired")
)

// State is a snapshot of the session.
type State struct {
	Authenticated bool
	User          model.User
	Token         string
}

// Store holds the current session and keeps it in sync with Storage.
type Store struct {
	storage Storage
	policy  token.ExpiryPolicy
	now     func() time.Time
	log     *logger.Logger

	mu    sync.RWMutex
	state State

	// notifyMu orders state swaps and their notifications.
	notifyMu sync.Mutex

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store
type Option func(*Store)

// WithExpiryPolicy sets how tokens without exp are treated
func WithExpiryPolicy(p token.ExpiryPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates a Store in the logged-out state. Call Restore to load.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		policy:  token.ExpiryLenient,
		now:     time.Now,
		log:     logger.Default(),
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login persists user and raw token, then updates the in-memory state.
// On a storage failure the previous state is kept.
func (s *Store) Login(ctx context.Context, user model.User, raw string) error {
	if user.PhoneNumber == "" {
		return ErrInvalidUser
	}
	claims, err := token.Decode(raw)
	if err != nil {
		return err
	}
	if claims.Expired(s.now(), s.policy) {
		return ErrExpired
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	if err := s.storage.Save(ctx, string(data), raw); err != nil {
		s.log.Error("session write failed", logger.F("phone", user.PhoneNumber), logger.F("error", err))
		return err
	}

	s.log.Info("logged in", logger.F("phone", user.PhoneNumber), logger.F("role", user.Role))
	s.set(State{Authenticated: true, User: user, Token: raw})
	return nil
}

// Logout clears the persisted session. Calling it while logged out is a no-op.
// The in-memory state is reset even when storage fails.
func (s *Store) Logout(ctx context.Context) error {
	err := s.storage.Clear(ctx)
	if err != nil {
		s.log.Error("session clear failed", logger.F("error", err))
	}
	if s.set(State{}) {
		s.log.Info("logged out")
	}
	return err
}

// Restore reloads the session from storage. Anything other than a complete,
// decodable, unexpired pair results in the logged-out state and clears storage.
// When storage cannot be read the current state is kept.
func (s *Store) Restore(ctx context.Context) State {
	st, _ := s.restore(ctx)
	return st
}

func (s *Store) restore(ctx context.Context) (State, error) {
	rawUser, rawToken, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn("session read failed, keeping current state", logger.F("error", err))
		return s.Current(), err
	}

	next, reason := s.parse(rawUser, rawToken)
	if reason != "" {
		s.log.Warn("discarding stored session", logger.F("reason", reason))
		if err := s.storage.Clear(ctx); err != nil {
			s.log.Error("session clear failed", logger.F("error", err))
		}
	}
	s.set(next)
	return next, nil
}

// parse returns the stored state, or a reason the stored pair is unusable.
func (s *Store) parse(rawUser, rawToken string) (State, string) {
	if rawUser == "" && rawToken == "" {
		return State{}, ""
	}
	if rawUser == "" || rawToken == "" {
		return State{}, "incomplete session"
	}

	var user model.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return State{}, "malformed user record"
	}
	if user.PhoneNumber == "" {
		return State{}, "user record without phone"
	}

	claims, err := token.Decode(rawToken)
	if err != nil {
		return State{}, "undecodable token"
	}
	if claims.Expired(s.now(), s.policy) {
		return State{}, "token expired"
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	return State{Authenticated: true, User: user, Token: rawToken}, ""
}

// UpdateUser applies fn to a copy of the logged-in user and persists the
// result with the current token. The phone number cannot be cleared.
func (s *Store) UpdateUser(ctx context.Context, fn func(*model.User)) error {
	cur := s.Current()
	if !cur.Authenticated {
		return ErrNotLoggedIn
	}

	user := cur.User
	fn(&user)
	if user.PhoneNumber == "" {
		return ErrInvalidUser
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.storage.Save(ctx, string(data), cur.Token); err != nil {
		s.log.Error("session write failed", logger.F("phone", user.PhoneNumber), logger.F("error", err))
		return err
	}

	s.set(State{Authenticated: true, User: user, Token: cur.Token})
	return nil
}

// Current returns the in-memory state
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the bearer token, or "" when logged out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Subscribe registers fn to be called after every state change.
// Notifications arrive in the order the changes happened. fn must not call
// Login, Logout, Restore or UpdateUser. The returned function unregisters it.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// set swaps the state and notifies subscribers outside the state lock.
func (s *Store) set(next State) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	changed := s.state != next
	s.state = next
	s.mu.Unlock()

	if !changed {
		return false
	}

	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return true
}
