// Package app wires config, the session database, the backend client and
// the auth flows into one value shared by the CLI, the TUI and the web server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/existflow/kawai/internal/api"
	"github.com/existflow/kawai/internal/auth"
	"github.com/existflow/kawai/internal/config"
	"github.com/existflow/kawai/internal/db"
	"github.com/existflow/kawai/internal/logger"
	"github.com/existflow/kawai/internal/session"
	"github.com/existflow/kawai/internal/token"
	"github.com/existflow/kawai/server"
)

var (
	// ErrNotLoggedIn is returned by RequireSession without a valid session
	ErrNotLoggedIn = errors.New("not logged in: open the magic link from the WhatsApp bot or run 'kawai auth magic <link>'")
	// ErrNotAdmin is returned by RequireAdmin for non-admin sessions
	ErrNotAdmin = errors.New("admin access required")
)

// App holds the collaborators of one kawai process
type App struct {
	Config    *config.Config
	DB        *db.DB
	Storage   *session.SQLiteStorage
	Sessions  *session.Store
	API       *api.Client
	Handshake *auth.Handshake
	Auth      *auth.Authenticator
}

// Open opens the session database at cfg's default location
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	path, err := config.SessionDBPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(ctx, cfg, path)
}

// OpenAt opens the session database at dbPath and restores the session
func OpenAt(ctx context.Context, cfg *config.Config, dbPath string) (*App, error) {
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	storage, err := session.NewSQLiteStorage(ctx, database)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	sessions := session.NewStore(storage,
		session.WithExpiryPolicy(token.ExpiryPolicy(cfg.ExpiryPolicy)),
		session.WithLogger(logger.Default().WithFields(logger.F("component", "session"))),
	)
	st := sessions.Restore(ctx)
	logger.Debug("Session restored", logger.F("authenticated", st.Authenticated))

	client := api.NewClient(cfg.APIURL, sessions,
		api.WithLogger(logger.Default().WithFields(logger.F("component", "api"))))

	return &App{
		Config:    cfg,
		DB:        database,
		Storage:   storage,
		Sessions:  sessions,
		API:       client,
		Handshake: auth.NewHandshake(sessions, auth.RolesFromConfig(cfg), cfg.FailDelay),
		Auth:      auth.NewAuthenticator(client, sessions),
	}, nil
}

// Close releases the database
func (a *App) Close() error {
	err := a.Storage.Close()
	if cerr := a.DB.Close(); err == nil {
		err = cerr
	}
	return err
}

// RequireSession returns the current session or ErrNotLoggedIn
func (a *App) RequireSession() (session.State, error) {
	st := a.Sessions.Current()
	if !st.Authenticated {
		return st, ErrNotLoggedIn
	}
	return st, nil
}

// RequireAdmin is RequireSession plus a role check
func (a *App) RequireAdmin() (session.State, error) {
	st, err := a.RequireSession()
	if err != nil {
		return st, err
	}
	if !st.User.IsAdmin() {
		return st, ErrNotAdmin
	}
	return st, nil
}

// Server builds the local web server over this app
func (a *App) Server() *server.Server {
	return server.New(server.Deps{
		Config:    a.Config,
		Sessions:  a.Sessions,
		API:       a.API,
		Handshake: a.Handshake,
		Auth:      a.Auth,
		Logger:    logger.Default().WithFields(logger.F("component", "web")),
	})
}

// Serve runs the web server until ctx is done, re-checking the session
// every Config.WatchEvery so logins from other processes show up.
func (a *App) Serve(ctx context.Context, addr string, started func(addr string)) error {
	w := a.Sessions.Watch(ctx, a.Config.WatchEvery)
	defer w.Stop()

	srv := a.Server()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Web server starting", logger.F("addr", addr))
		errCh <- srv.Start(addr)
	}()
	if started != nil {
		started(addr)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("Web server shutting down")
	return srv.Shutdown(shutdownCtx)
}
