package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kawai/internal/config"
	"github.com/existflow/kawai/internal/model"
	"github.com/existflow/kawai/internal/session"
	"github.com/existflow/kawai/internal/token"
)

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

type countingSessions struct {
	logins int
	last   model.User
	err    error
}

func (c *countingSessions) Login(_ context.Context, u model.User, _ string) error {
	if c.err != nil {
		return c.err
	}
	c.logins++
	c.last = u
	return nil
}

func TestHandshake_DefaultsToUserRole(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	h := NewHandshake(store, ClaimRoles{}, 0)

	res := h.Run(context.Background(), mint(t, jwt.MapClaims{"phone_number": "6281234567890", "name": "Budi"}))
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, []Phase{Verifying, Authenticated, Redirecting}, res.Trail)
	assert.Equal(t, RouteUser, res.Route)
	assert.Equal(t, model.User{Name: "Budi", PhoneNumber: "6281234567890", Role: model.RoleUser}, res.User)

	st := store.Current()
	assert.True(t, st.Authenticated)
	assert.Equal(t, model.RoleUser, st.User.Role)
}

func TestHandshake_ClaimRoleAdmin(t *testing.T) {
	h := NewHandshake(&countingSessions{}, ClaimRoles{}, 0)

	res := h.Run(context.Background(), mint(t, jwt.MapClaims{"phone": "628111", "role": "admin"}))
	require.True(t, res.OK())
	assert.Equal(t, RouteAdmin, res.Route)
	assert.Equal(t, "User", res.User.Name)
}

func TestHandshake_AllowListRoles(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RoleSource = config.RoleSourceAllowList
	cfg.AdminPhones = []string{"6281234567890"}
	roles := RolesFromConfig(cfg)

	h := NewHandshake(&countingSessions{}, roles, 0)

	admin := h.Run(context.Background(), mint(t, jwt.MapClaims{"phone_number": "6281234567890", "name": "Budi"}))
	require.True(t, admin.OK())
	assert.Equal(t, model.RoleAdmin, admin.User.Role)
	assert.Equal(t, RouteAdmin, admin.Route)

	// The role claim is ignored under the allow-list strategy.
	other := h.Run(context.Background(), mint(t, jwt.MapClaims{"phone_number": "628999", "role": "admin"}))
	require.True(t, other.OK())
	assert.Equal(t, model.RoleUser, other.User.Role)
}

func TestRolesFromConfig_DefaultIsClaim(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RoleSource = config.RoleSourceClaim
	assert.IsType(t, ClaimRoles{}, RolesFromConfig(cfg))
}

func TestHandshake_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"missing token", "", ErrMissingToken},
		{"garbage", "not-a-token", token.ErrInvalidToken},
		{"no phone", mint(t, jwt.MapClaims{"name": "Budi"}), token.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &countingSessions{}
			h := NewHandshake(sessions, ClaimRoles{}, 0)

			res := h.Run(context.Background(), tt.raw)
			assert.Equal(t, Failed, res.Phase)
			assert.Equal(t, []Phase{Verifying, Failed}, res.Trail)
			assert.Equal(t, RouteHome, res.Route)
			assert.Equal(t, DefaultFailDelay, res.Delay)
			assert.NotEmpty(t, res.Message)
			assert.ErrorIs(t, res.Err, tt.want)
			assert.Zero(t, sessions.logins)
		})
	}
}

func TestHandshake_ExpiredAndStorageFailure(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	h := NewHandshake(store, ClaimRoles{}, 5*time.Second)

	res := h.Run(context.Background(), mint(t, jwt.MapClaims{"phone": "628", "exp": time.Now().Add(-time.Hour).Unix()}))
	assert.Equal(t, Failed, res.Phase)
	assert.Equal(t, 5*time.Second, res.Delay)
	assert.ErrorIs(t, res.Err, session.ErrExpired)

	broken := NewHandshake(&countingSessions{err: errors.New("disk")}, ClaimRoles{}, 0)
	res = broken.Run(context.Background(), mint(t, jwt.MapClaims{"phone": "628"}))
	assert.Equal(t, Failed, res.Phase)
}

func TestHandshake_SameTokenProcessedOnce(t *testing.T) {
	sessions := &countingSessions{}
	h := NewHandshake(sessions, ClaimRoles{}, 0)
	tok := mint(t, jwt.MapClaims{"phone": "628123"})

	first := h.Run(context.Background(), tok)
	second := h.Run(context.Background(), tok)

	assert.Equal(t, 1, sessions.logins)
	assert.Equal(t, first, second)
}

func TestHandshake_ForgetsExpiredTokens(t *testing.T) {
	sessions := &countingSessions{}
	h := NewHandshake(sessions, ClaimRoles{}, 0)
	now := time.Now()
	h.now = func() time.Time { return now }
	tok := mint(t, jwt.MapClaims{"phone": "628123", "exp": now.Add(time.Hour).Unix()})

	h.Run(context.Background(), tok)
	h.Run(context.Background(), tok)
	require.Equal(t, 1, sessions.logins)

	now = now.Add(2 * time.Hour)
	h.Run(context.Background(), mint(t, jwt.MapClaims{"phone": "628999"}))
	assert.NotContains(t, h.seen, tok)
	assert.Len(t, h.order, 1)
}

func TestHandshake_RemembersBoundedTokens(t *testing.T) {
	sessions := &countingSessions{}
	h := NewHandshake(sessions, ClaimRoles{}, 0)

	first := mint(t, jwt.MapClaims{"phone": "628000"})
	h.Run(context.Background(), first)
	for i := 1; i <= maxRemembered; i++ {
		h.Run(context.Background(), mint(t, jwt.MapClaims{"phone": "628", "n": i}))
	}
	assert.Len(t, h.seen, maxRemembered)
	assert.Len(t, h.order, maxRemembered)
	assert.NotContains(t, h.seen, first)

	h.Run(context.Background(), first)
	assert.Equal(t, maxRemembered+2, sessions.logins)
}

func TestFromURL(t *testing.T) {
	tok, err := FromURL("https://kawai.test/auth/magic?token=abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, err = FromURL("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	_, err = FromURL("https://kawai.test/auth/magic")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = FromURL("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
