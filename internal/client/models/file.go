package models

import "time"

// FileInfo describes one CSV file from the listing endpoint.
type FileInfo struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `json:"created_at"`
	UploaderID       int64     `json:"uploader_id"`
	UploaderUsername string    `json:"uploader_username"`
}

// FileContent is the parsed table returned by the content endpoint.
// Rows are keyed by header name; the client renders them as-is.
type FileContent struct {
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}
