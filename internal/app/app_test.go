package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kawai/internal/config"
	"github.com/existflow/kawai/internal/model"
)

func openTemp(t *testing.T, path string) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.APIURL = "http://backend.invalid"

	a, err := OpenAt(context.Background(), cfg, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return raw
}

func TestApp_RequireSessionAndAdmin(t *testing.T) {
	a := openTemp(t, filepath.Join(t.TempDir(), "session.db"))

	_, err := a.RequireSession()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	res := a.Handshake.Run(context.Background(), mint(t, jwt.MapClaims{"phone": "6281234567890"}))
	require.True(t, res.OK())

	st, err := a.RequireSession()
	require.NoError(t, err)
	assert.Equal(t, "6281234567890", st.User.PhoneNumber)

	_, err = a.RequireAdmin()
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestApp_RestoresSessionFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	first := openTemp(t, path)

	admin := model.User{Name: "Admin", PhoneNumber: "6289999999999", Role: model.RoleAdmin}
	require.NoError(t, first.Sessions.Login(context.Background(), admin, mint(t, jwt.MapClaims{"phone": admin.PhoneNumber})))

	second := openTemp(t, path)
	st, err := second.RequireAdmin()
	require.NoError(t, err)
	assert.Equal(t, admin, st.User)
	assert.Equal(t, first.Sessions.Token(), second.Sessions.Token())
}

func TestApp_ServerIsWired(t *testing.T) {
	a := openTemp(t, filepath.Join(t.TempDir(), "session.db"))

	rec := httptest.NewRecorder()
	a.Server().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
