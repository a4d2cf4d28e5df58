package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/csvdesk/csvdesk/internal/client/models"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair. The pair is returned, not
// persisted; the session manager decides whether to keep it.
func (g *Gateway) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	var pair models.TokenPair
	err := g.postJSON(ctx, "/api/auth/login", credentialsRequest{Username: username, Password: password}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Signup registers a new account. Registration does not authenticate; the
// caller follows up with Login.
func (g *Gateway) Signup(ctx context.Context, username, password string) error {
	return g.postJSON(ctx, "/api/auth/signup", credentialsRequest{Username: username, Password: password}, nil)
}

// Me fetches the identity of the currently authorized user.
func (g *Gateway) Me(ctx context.Context) (*models.UserRef, error) {
	var user models.UserRef
	if err := g.getJSON(ctx, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListFiles returns all CSV files visible to the user.
func (g *Gateway) ListFiles(ctx context.Context) ([]models.FileInfo, error) {
	var files []models.FileInfo
	if err := g.getJSON(ctx, "/api/files", &files); err != nil {
		return nil, err
	}
	return files, nil
}

// FileContent returns the parsed rows of one CSV file.
func (g *Gateway) FileContent(ctx context.Context, fileID int64) (*models.FileContent, error) {
	var content models.FileContent
	if err := g.getJSON(ctx, fmt.Sprintf("/api/files/%d/content", fileID), &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// DownloadFile streams the raw file body into w.
func (g *Gateway) DownloadFile(ctx context.Context, fileID int64, w io.Writer) error {
	resp, err := g.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, g.url(fmt.Sprintf("/api/files/%d", fileID)), nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	return nil
}

// UploadFile sends a CSV to the admin upload endpoint as a multipart form.
// The content is held in memory so the request can be rebuilt if the
// recovery protocol replays it.
func (g *Gateway) UploadFile(ctx context.Context, name string, content []byte) (*models.FileInfo, error) {
	build := func(ctx context.Context) (*http.Request, error) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(content); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url("/api/admin/files/upload"), &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	}

	resp, err := g.do(ctx, build)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}

	var info models.FileInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &info, nil
}

// DeleteFile removes a file (admin only).
func (g *Gateway) DeleteFile(ctx context.Context, fileID int64) error {
	return g.deleteReq(ctx, fmt.Sprintf("/api/admin/files/%d", fileID))
}

// ListUsers returns all registered accounts (admin only).
func (g *Gateway) ListUsers(ctx context.Context) ([]models.UserAccount, error) {
	var users []models.UserAccount
	if err := g.getJSON(ctx, "/api/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes an account (admin only).
func (g *Gateway) DeleteUser(ctx context.Context, userID int64) error {
	return g.deleteReq(ctx, fmt.Sprintf("/api/admin/users/%d", userID))
}

// ---- JSON plumbing ----

func (g *Gateway) getJSON(ctx context.Context, path string, out any) error {
	resp, err := g.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, g.url(path), nil)
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func (g *Gateway) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := g.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(path), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

func (g *Gateway) deleteReq(ctx context.Context, path string) error {
	resp, err := g.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodDelete, g.url(path), nil)
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
