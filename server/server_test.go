package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/auth"
	"github.com/existflow/kawai/internal/config"
	"github.com/existflow/kawai/internal/model"
	"github.com/existflow/kawai/internal/session"
)

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

type fixture struct {
	srv      *Server
	sessions *session.Store
	deleted  []string
	bans     []map[string]string
}

func newFixture(t *testing.T, botNumber string) *fixture {
	t.Helper()
	f := &fixture{}

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/dashboard/notes":
			_, _ = w.Write([]byte(`{"data":[{"_id":{"$oid":"n1"},"content":"read https://go.dev now","type":"mixed"}]}`))
		case r.URL.Path == "/api/dashboard/reminders":
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/notes/"):
			f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/api/notes/"))
			_, _ = w.Write([]byte(`{"status":"success"}`))
		case r.URL.Path == "/api/admin/stats":
			_, _ = w.Write([]byte(`{"stats":{"total_users":3,"active_today":1,"banned_users":0}}`))
		case r.URL.Path == "/api/admin/users":
			_, _ = w.Write([]byte(`{"data":[{"_id":"u1","name":"Budi","phone_number":"628"}]}`))
		case r.URL.Path == "/api/admin/ban":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.bans = append(f.bans, body)
			_, _ = w.Write([]byte(`{"status":"success"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	cfg := config.DefaultConfig()
	cfg.BotNumber = botNumber

	f.sessions = session.NewStore(session.NewMemoryStorage())
	client := api.NewClient(backend.URL, f.sessions)
	f.srv = New(Deps{
		Config:    cfg,
		Sessions:  f.sessions,
		API:       client,
		Handshake: auth.NewHandshake(f.sessions, auth.ClaimRoles{}, cfg.FailDelay),
		Auth:      auth.NewAuthenticator(client, f.sessions),
	})
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T, role string) {
	t.Helper()
	user := model.User{Name: "Budi", PhoneNumber: "6281234567890", Role: role}
	require.NoError(t, f.sessions.Login(context.Background(), user, mint(t, jwt.MapClaims{"phone": user.PhoneNumber})))
}

func TestMagicLink_RedirectsByRole(t *testing.T) {
	f := newFixture(t, "")

	rec := f.do(http.MethodGet, "/auth/magic?token="+mint(t, jwt.MapClaims{"phone_number": "6281234567890", "name": "Budi"}), "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, auth.RouteUser, rec.Header().Get("Location"))
	assert.True(t, f.sessions.Current().Authenticated)

	f2 := newFixture(t, "")
	rec = f2.do(http.MethodGet, "/auth/magic?token="+mint(t, jwt.MapClaims{"phone": "628", "role": "admin"}), "")
	assert.Equal(t, auth.RouteAdmin, rec.Header().Get("Location"))
}

func TestMagicLink_FailureShowsPageThenRefreshes(t *testing.T) {
	f := newFixture(t, "")

	rec := f.do(http.MethodGet, "/auth/magic", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "3; url=/", rec.Header().Get("Refresh"))
	assert.Contains(t, rec.Body.String(), "no token")
	assert.False(t, f.sessions.Current().Authenticated)
}

func TestProtected_RedirectsWhenLoggedOut(t *testing.T) {
	f := newFixture(t, "")

	rec := f.do(http.MethodGet, "/notes", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = f.do(http.MethodDelete, "/notes/n1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestViews_LinksAndDelete(t *testing.T) {
	f := newFixture(t, "")
	f.login(t, model.RoleUser)

	rec := f.do(http.MethodGet, "/links", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var links []model.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &links))
	require.Len(t, links, 1)
	assert.Equal(t, "https://go.dev", links[0].URL)

	rec = f.do(http.MethodDelete, "/links/"+links[0].ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"n1"}, f.deleted)

	rec = f.do(http.MethodDelete, "/notes/undefined", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViews_Summary(t *testing.T) {
	f := newFixture(t, "")
	f.login(t, model.RoleUser)

	rec := f.do(http.MethodGet, "/dashboard-user", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s model.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 1, s.NoteCount)
	assert.Equal(t, 1, s.LinkCount)
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	f := newFixture(t, "")
	f.login(t, model.RoleUser)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/admin", "").Code)

	f.login(t, model.RoleAdmin)
	rec := f.do(http.MethodGet, "/admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp adminResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Stats.TotalUsers)
	require.Len(t, resp.Users, 1)

	rec = f.do(http.MethodPost, "/admin/ban", `{"phone_number":"628","action":"unban"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []map[string]string{{"phone_number": "628", "action": "unban"}}, f.bans)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, "")
	f.login(t, model.RoleUser)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/logout", "").Code)
	assert.False(t, f.sessions.Current().Authenticated)
}

func TestWhatsApp_BlockedWithoutNumber(t *testing.T) {
	rec := newFixture(t, "").do(http.MethodGet, "/wa", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = newFixture(t, "6281234567890").do(http.MethodGet, "/wa", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://wa.me/6281234567890?text="))
}

func TestLanding_ReportsConfigError(t *testing.T) {
	rec := newFixture(t, "").do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp landingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Authenticated)
	assert.NotEmpty(t, resp.ConfigError)
}

func TestRegister_ValidationIsBadRequest(t *testing.T) {
	rec := newFixture(t, "").do(http.MethodPost, "/auth/register", `{"name":"Budi","phone_number":"123","password":"secret"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
