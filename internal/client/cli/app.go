package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"

	"github.com/sethvargo/go-retry"

	"github.com/csvdesk/csvdesk/internal/client/api"
	"github.com/csvdesk/csvdesk/internal/client/config"
	"github.com/csvdesk/csvdesk/internal/client/credstore"
	"github.com/csvdesk/csvdesk/internal/client/realtime"
	"github.com/csvdesk/csvdesk/internal/client/session"
	"github.com/csvdesk/csvdesk/internal/logging"

	_ "modernc.org/sqlite"
)

// App ties the client components together for the REPL.
type App struct {
	config  *config.Config
	gateway *api.Gateway
	session *session.Manager
	channel *realtime.Channel
	db      *sql.DB
	log     logging.Logger
	reader  *bufio.Reader
}

// NewApp wires the full client. A broken local database degrades to an
// in-memory session instead of failing startup, so the app always
// comes up.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) *App {
	a := &App{config: cfg, log: log, reader: bufio.NewReader(os.Stdin)}

	store, db := credstore.Open(ctx, cfg.DatabasePath, log)
	a.db = db

	a.gateway = api.New(cfg.ServerURL, store, log,
		api.WithSessionExpiredHandler(a.sessionExpired))
	a.session = session.New(ctx, a.gateway, store, log)
	a.channel = realtime.New(cfg.WebsocketURL, store, log,
		realtime.WithHeartbeatInterval(cfg.HeartbeatInterval),
		realtime.WithBackoff(func() retry.Backoff {
			return retry.NewConstant(cfg.ReconnectDelay)
		}))
	return a
}

// sessionExpired is invoked by the gateway after a failed credential
// recovery. The store is already cleared; only the in-memory state and
// the user notice remain.
func (a *App) sessionExpired() {
	a.session.Expire()
	printlnFn("Session expired, please log in again.")
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close releases the realtime channel and the local database.
func (a *App) Close() {
	a.channel.Close()
	if a.db != nil {
		a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Status == session.StatusAuthenticated
}

func (a *App) isAdmin() bool {
	return a.session.IsAdmin()
}
