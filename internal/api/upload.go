// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
)

// =============================================================================
// UPLOAD
// =============================================================================

// FileInfo is the service's acknowledgment of a stored upload.
type FileInfo struct {
	FileID        string `json:"file_id"`
	OriginalName  string `json:"original_name"`
	FileType      string `json:"file_type"`
	TextAvailable bool   `json:"text_available"`
}

// UploadError is a per-file upload failure. It is never fatal to a
// batch; the pipeline reports it and moves on.
type UploadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *UploadError) Error() string {
	if e.Cause != nil {
		return "upload " + e.Name + ": " + e.Message + ": " + e.Cause.Error()
	}
	return "upload " + e.Name + ": " + e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// Upload sends one file as multipart form data and returns the service's
// acknowledgment.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (*FileInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, &UploadError{Name: name, Message: "failed to build form", Cause: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &UploadError{Name: name, Message: "failed to read file", Cause: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &UploadError{Name: name, Message: "failed to finish form", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/upload", &body)
	if err != nil {
		return nil, &UploadError{Name: name, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		werr := c.wrapTransport(err)
		if errors.Is(werr, context.Canceled) {
			return nil, werr
		}
		return nil, &UploadError{Name: name, Message: "request failed", Cause: werr}
	}
	defer resp.Body.Close()

	var ack struct {
		FileInfo
		Error string `json:"error"`
	}
	if err := decodeResponse(resp, &ack); err != nil {
		if errors.Is(err, ErrLoginRequired) {
			return nil, err
		}
		return nil, &UploadError{Name: name, Message: "bad response", Cause: err}
	}
	if ack.Error != "" {
		return nil, &UploadError{Name: name, Message: ack.Error}
	}
	if ack.FileID == "" {
		return nil, &UploadError{Name: name, Message: "service did not return a file id"}
	}

	return &ack.FileInfo, nil
}
