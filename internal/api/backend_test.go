package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeBackend is an in-memory notes backend that answers with a bare array.
type fakeBackend struct {
	mu      sync.Mutex
	notes   []map[string]any
	nextID  int
	deletes []string
	auth    []string
	calls   int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls++
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/dashboard/notes":
		_ = json.NewEncoder(w).Encode(b.notes)

	case r.Method == http.MethodPost && r.URL.Path == "/api/notes":
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.nextID++
		id := fmt.Sprintf("65a1b2c3d4e5f607182930%02d", b.nextID)
		note := map[string]any{
			"_id":        map[string]any{"$oid": id},
			"content":    in["content"],
			"type":       in["type"],
			"user_phone": "6281234567890",
			"created_at": map[string]any{"$date": "2025-01-02T03:04:05Z"},
		}
		b.notes = append(b.notes, note)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": note})

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/notes/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/notes/")
		b.deletes = append(b.deletes, id)
		for i, n := range b.notes {
			if n["_id"].(map[string]any)["$oid"] == id {
				b.notes = append(b.notes[:i], b.notes[i+1:]...)
				_, _ = w.Write([]byte(`{"status":"success"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"error","msg":"Note not found"}`))

	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no route"}`))
	}
}

type staticToken string

func (s staticToken) Token() string { return string(s) }
