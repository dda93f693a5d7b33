// Package auth turns magic links and admin credentials into sessions.
package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/existflow/kawai/internal/logger"
	"github.com/existflow/kawai/internal/model"
	"github.com/existflow/kawai/internal/session"
	"github.com/existflow/kawai/internal/token"
)

// Landing routes
const (
	RouteHome  = "/"
	RouteAdmin = "/admin"
	RouteUser  = "/dashboard-user"
)

// DefaultFailDelay is how long a failure message stays up before redirecting home.
const DefaultFailDelay = 3 * time.Second

// maxRemembered caps how many processed tokens a Handshake keeps.
const maxRemembered = 256

// ErrMissingToken is returned when a magic link carries no token.
var ErrMissingToken = errors.New("missing token")

// Phase is a handshake state
type Phase int

const (
	Verifying Phase = iota
	Authenticated
	Redirecting
	Failed
)

func (p Phase) String() string {
	switch p {
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	case Redirecting:
		return "redirecting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one handshake.
type Result struct {
	Phase   Phase         // Redirecting or Failed
	Trail   []Phase       // Every phase passed through, in order
	Route   string        // Where to go next
	Delay   time.Duration // Wait before going there; zero on success
	Message string        // User-facing status line
	User    model.User    // Set when authenticated
	Err     error
}

// OK reports whether the handshake logged the user in
func (r Result) OK() bool {
	return r.Phase == Redirecting
}

// LandingRoute returns the route for a role
func LandingRoute(role string) string {
	if role == model.RoleAdmin {
		return RouteAdmin
	}
	return RouteUser
}

// Sessions is the part of the session store the handshake needs
type Sessions interface {
	Login(ctx context.Context, user model.User, raw string) error
}

// Handshake processes magic-link tokens. Each token is processed once; a
// repeated Run with the same token returns the first result.
type Handshake struct {
	sessions  Sessions
	roles     RoleResolver
	failDelay time.Duration
	log       *logger.Logger

	mu    sync.Mutex
	now   func() time.Time
	seen  map[string]seenToken
	order []string // oldest first
}

type seenToken struct {
	res     Result
	expires time.Time // zero when the token has no readable exp
}

// NewHandshake creates a handshake. failDelay <= 0 uses DefaultFailDelay.
func NewHandshake(sessions Sessions, roles RoleResolver, failDelay time.Duration) *Handshake {
	if failDelay <= 0 {
		failDelay = DefaultFailDelay
	}
	if roles == nil {
		roles = ClaimRoles{}
	}
	return &Handshake{
		sessions:  sessions,
		roles:     roles,
		failDelay: failDelay,
		log:       logger.Default().WithFields(logger.F("component", "magic-link")),
		now:       time.Now,
		seen:      make(map[string]seenToken),
	}
}

// Run verifies raw, logs in and returns where to go.
func (h *Handshake) Run(ctx context.Context, raw string) Result {
	raw = strings.TrimSpace(raw)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.prune()
	if seen, ok := h.seen[raw]; ok && raw != "" {
		h.log.Debug("token already processed", logger.F("phase", seen.res.Phase.String()))
		return seen.res
	}

	res := h.run(ctx, raw)
	if raw != "" {
		h.remember(raw, res)
	}
	return res
}

// remember records raw, evicting the oldest token when full.
func (h *Handshake) remember(raw string, res Result) {
	entry := seenToken{res: res}
	if claims, err := token.Decode(raw); err == nil {
		if exp, ok, err := claims.ExpiresAt(); ok && err == nil {
			entry.expires = exp
		}
	}

	if len(h.order) >= maxRemembered {
		delete(h.seen, h.order[0])
		h.order = h.order[1:]
	}
	h.seen[raw] = entry
	h.order = append(h.order, raw)
}

// prune forgets tokens past their exp. Running one again fails as expired anyway.
func (h *Handshake) prune() {
	now := h.now()
	kept := h.order[:0]
	for _, raw := range h.order {
		if e := h.seen[raw]; !e.expires.IsZero() && !now.Before(e.expires) {
			delete(h.seen, raw)
			continue
		}
		kept = append(kept, raw)
	}
	h.order = kept
}

func (h *Handshake) run(ctx context.Context, raw string) Result {
	trail := []Phase{Verifying}

	fail := func(msg string, err error) Result {
		h.log.Warn("magic link rejected", logger.F("reason", msg), logger.F("error", err))
		return Result{
			Phase:   Failed,
			Trail:   append(trail, Failed),
			Route:   RouteHome,
			Delay:   h.failDelay,
			Message: msg,
			Err:     err,
		}
	}

	if raw == "" {
		return fail("Login link has no token.", ErrMissingToken)
	}

	claims, err := token.Decode(raw)
	if err != nil {
		return fail("Login link is invalid.", err)
	}

	phone := claims.Phone()
	if phone == "" {
		return fail("Login link does not identify a phone number.", token.ErrInvalidToken)
	}

	user := model.User{
		Name:        claims.DisplayName(),
		PhoneNumber: phone,
		Role:        h.roles.Resolve(claims),
	}
	if err := h.sessions.Login(ctx, user, raw); err != nil {
		if errors.Is(err, session.ErrExpired) {
			return fail("Login link has expired.", err)
		}
		return fail("Could not save your session.", err)
	}
	trail = append(trail, Authenticated)

	route := LandingRoute(user.Role)
	h.log.Info("magic link accepted", logger.F("phone", phone), logger.F("role", user.Role), logger.F("route", route))

	return Result{
		Phase:   Redirecting,
		Trail:   append(trail, Redirecting),
		Route:   route,
		Message: "Welcome, " + user.Name + "!",
		User:    user,
	}
}

// FromURL extracts the token of a <origin>/auth/magic?token=... link.
// A bare token is returned as is.
func FromURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrMissingToken
	}
	if !strings.Contains(rawURL, "?") && !strings.Contains(rawURL, "/") {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	tok := u.Query().Get("token")
	if tok == "" {
		return "", ErrMissingToken
	}
	return tok, nil
}
