package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/csvdesk/csvdesk/internal/client/models"
	"github.com/csvdesk/csvdesk/internal/client/session"
)

// getStatus renders the prompt suffix: username plus connectivity,
// e.g. "(alice online)".
func (a *App) getStatus() string {
	v := a.session.Snapshot()

	s := ""
	if v.User != nil {
		s = v.User.Username + " "
	}
	switch v.Status {
	case session.StatusLoading:
		s += "loading"
	case session.StatusGuest:
		s += "guest"
	case session.StatusAuthenticated:
		if a.channel.State().Connection == models.ConnectionOpen {
			s += "online"
		} else {
			s += "offline"
		}
	default:
		return ""
	}
	return fmt.Sprintf("(%s)", s)
}

// Root restores the persisted session, keeps the realtime channel in
// step with the session state, and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to CSVDesk CLI (type 'help' for commands)")

	if err := a.session.Bootstrap(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}
	if v := a.session.Snapshot(); v.User != nil {
		printlnFn(fmt.Sprintf("Restored session for %s", v.User.Username))
	}

	// The channel runs only while someone is signed in.
	unsubSession := a.session.Subscribe(func(v session.View) {
		if v.Status == session.StatusAuthenticated {
			a.channel.Start(ctx)
		} else {
			a.channel.Close()
		}
	})
	defer unsubSession()
	if a.isLoggedIn() {
		a.channel.Start(ctx)
	}

	unsubEvents := a.channel.Subscribe(func(ev models.UpdateEvent) {
		if ev.Kind == models.KindListChanged {
			a.onListChanged(ctx)
		}
	})
	defer unsubEvents()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
