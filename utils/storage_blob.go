package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gracechapel/churchweb/config"
)

// Vercel Blob REST client. There is no official Go SDK; the store speaks a
// small HTTP API: PUT {base}/{pathname} with a bearer token stores an object
// and returns its public URL, DELETE {base}/delete removes by URL.

var blobHTTPClient = &http.Client{Timeout: 60 * time.Second}

type blobPutResponse struct {
	URL         string `json:"url"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

type blobErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// BlobPut uploads a file server-side to Vercel Blob and returns its public URL.
func BlobPut(ctx context.Context, pathname, contentType string, body io.Reader) (string, error) {
	cfg := config.Get()
	if cfg.BlobToken == "" {
		return "", fmt.Errorf("blob storage not configured")
	}

	endpoint := strings.TrimRight(cfg.BlobBaseURL, "/") + "/" + url.PathEscape(pathname)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.BlobToken)
	req.Header.Set("Content-Type", contentType)
	// Random suffix avoids overwriting an earlier upload with the same name.
	req.Header.Set("x-add-random-suffix", "1")

	resp, err := blobHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob put: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("blob put read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr blobErrorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("blob put failed (%s): %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return "", fmt.Errorf("blob put failed with status %d", resp.StatusCode)
	}

	var out blobPutResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("blob put decode response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("blob put returned empty url")
	}
	return out.URL, nil
}

// BlobDelete removes a stored blob by its public URL.
func BlobDelete(ctx context.Context, blobURL string) error {
	cfg := config.Get()
	if cfg.BlobToken == "" {
		return fmt.Errorf("blob storage not configured")
	}

	payload, err := json.Marshal(map[string][]string{"urls": {blobURL}})
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(cfg.BlobBaseURL, "/") + "/delete"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.BlobToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := blobHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("blob delete: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("blob delete failed with status %d", resp.StatusCode)
	}
	return nil
}
