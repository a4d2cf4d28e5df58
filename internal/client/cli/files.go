package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/csvdesk/csvdesk/internal/client/models"
	"github.com/csvdesk/csvdesk/internal/client/routeguard"
)

// List prints the CSV files visible to the current user.
func (a *App) List(ctx context.Context) error {
	if err := a.guard(routeguard.RequireAuthenticated); err != nil {
		printlnFn(err.Error())
		return err
	}

	files, err := a.gateway.ListFiles(ctx)
	if err != nil {
		printlnFn(fmt.Sprintf("Listing failed: %s", err))
		return err
	}

	printListing(files)
	return nil
}

func printListing(files []models.FileInfo) {
	if len(files) == 0 {
		printlnFn("No files yet")
		return
	}
	for _, f := range files {
		printlnFn(fmt.Sprintf("%d\t%s\t%d bytes\tby %s\t%s",
			f.ID, f.Name, f.Size, f.UploaderUsername, f.CreatedAt.Format("2006-01-02 15:04")))
	}
}

// onListChanged re-fetches the listing when the server announces a
// change, so the user sees the fresh state without typing 'list'.
func (a *App) onListChanged(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}

	files, err := a.gateway.ListFiles(ctx)
	if err != nil {
		a.log.Warn(ctx, "list refresh failed", "error", err)
		printlnFn("File list changed on the server, run 'list' to refresh")
		return
	}

	printlnFn("File list changed on the server:")
	printListing(files)
}

// Show renders the parsed table of one file.
func (a *App) Show(ctx context.Context, idArg string) error {
	if err := a.guard(routeguard.RequireAuthenticated); err != nil {
		printlnFn(err.Error())
		return err
	}

	id, err := parseID(idArg)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	content, err := a.gateway.FileContent(ctx, id)
	if err != nil {
		printlnFn(fmt.Sprintf("Fetch failed: %s", err))
		return err
	}

	printlnFn(strings.Join(content.Headers, "\t"))
	for _, row := range content.Rows {
		cells := make([]string, len(content.Headers))
		for i, h := range content.Headers {
			cells[i] = row[h]
		}
		printlnFn(strings.Join(cells, "\t"))
	}
	return nil
}

// Get downloads the raw file to a local path.
func (a *App) Get(ctx context.Context, idArg, path string) error {
	if err := a.guard(routeguard.RequireAuthenticated); err != nil {
		printlnFn(err.Error())
		return err
	}

	id, err := parseID(idArg)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		printlnFn(fmt.Sprintf("Cannot create %s: %s", path, err))
		return err
	}
	defer out.Close()

	if err := a.gateway.DownloadFile(ctx, id, out); err != nil {
		printlnFn(fmt.Sprintf("Download failed: %s", err))
		os.Remove(path)
		return err
	}

	printlnFn(fmt.Sprintf("Saved to %s", path))
	return nil
}

// Upload sends a local CSV file to the server. Admin only; anyone else
// is shown the file listing instead.
func (a *App) Upload(ctx context.Context, path string) error {
	if !a.guardAdmin(ctx) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		printlnFn(fmt.Sprintf("Cannot read %s: %s", path, err))
		return err
	}

	info, err := a.gateway.UploadFile(ctx, filepath.Base(path), data)
	if err != nil {
		printlnFn(fmt.Sprintf("Upload failed: %s", err))
		return err
	}

	printlnFn(fmt.Sprintf("Uploaded %s as id %d", info.Name, info.ID))
	return nil
}

// Remove deletes a file on the server. Admin only; anyone else is
// shown the file listing instead.
func (a *App) Remove(ctx context.Context, idArg string) error {
	if !a.guardAdmin(ctx) {
		return nil
	}

	id, err := parseID(idArg)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if err := a.gateway.DeleteFile(ctx, id); err != nil {
		printlnFn(fmt.Sprintf("Delete failed: %s", err))
		return err
	}

	printlnFn("Deleted")
	return nil
}
