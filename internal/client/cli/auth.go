package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/csvdesk/csvdesk/internal/client/routeguard"
	"github.com/csvdesk/csvdesk/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped
// in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for a username and password, creates the account and
// signs the new user in. The password byte slice is wiped before
// returning.
func (a *App) Signup(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Signup(ctx, username, string(password)); err != nil {
		printlnFn(fmt.Sprintf("Signup failed: %s", err))
		return err
	}

	a.printLanding()
	return nil
}

// Login prompts for credentials and authenticates. On success the
// landing screen for the user's role is announced; on failure the
// session state is left as it was.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, username, string(password)); err != nil {
		printlnFn(fmt.Sprintf("Login failed: %s", err))
		return err
	}

	a.printLanding()
	return nil
}

// Logout drops the persisted credentials and the in-memory session.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

func (a *App) printLanding() {
	switch routeguard.Home(a.session.Snapshot()) {
	case routeguard.RouteAdmin:
		printlnFn("Welcome! You have administrator access (type 'help' for commands)")
	case routeguard.RouteUser:
		printlnFn("Welcome! (type 'help' for commands)")
	}
}
