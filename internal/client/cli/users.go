package cli

import (
	"context"
	"fmt"
)

// Users lists all accounts. Admin only; anyone else is shown the file
// listing instead.
func (a *App) Users(ctx context.Context) error {
	if !a.guardAdmin(ctx) {
		return nil
	}

	users, err := a.gateway.ListUsers(ctx)
	if err != nil {
		printlnFn(fmt.Sprintf("Listing failed: %s", err))
		return err
	}

	for _, u := range users {
		printlnFn(fmt.Sprintf("%d\t%s\t%s\t%s",
			u.ID, u.Username, u.Role, u.CreatedAt.Format("2006-01-02")))
	}
	return nil
}

// RemoveUser deletes an account. Admin only; anyone else is shown the
// file listing instead.
func (a *App) RemoveUser(ctx context.Context, idArg string) error {
	if !a.guardAdmin(ctx) {
		return nil
	}

	id, err := parseID(idArg)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if err := a.gateway.DeleteUser(ctx, id); err != nil {
		printlnFn(fmt.Sprintf("Delete failed: %s", err))
		return err
	}

	printlnFn("Deleted")
	return nil
}
