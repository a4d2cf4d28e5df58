package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/csvdesk/csvdesk/internal/client/routeguard"
)

// guard resolves screen access for the current session and converts
// the decision into a user-facing error.
func (a *App) guard(req routeguard.Requirement) error {
	switch routeguard.Decide(a.session.Snapshot(), req) {
	case routeguard.Allow:
		return nil
	case routeguard.Wait:
		return fmt.Errorf("session is still being restored, try again")
	default:
		return fmt.Errorf("please log in first")
	}
}

// guardAdmin gates an admin command. A signed-in non-admin is quietly
// taken to their own home screen, the file listing, with no error.
func (a *App) guardAdmin(ctx context.Context) bool {
	switch routeguard.Decide(a.session.Snapshot(), routeguard.RequireAdmin) {
	case routeguard.Allow:
		return true
	case routeguard.RedirectHome:
		_ = a.List(ctx)
		return false
	case routeguard.Wait:
		printlnFn("session is still being restored, try again")
		return false
	default:
		printlnFn("please log in first")
		return false
	}
}

// parseID parses a numeric id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
