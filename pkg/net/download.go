package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxDocumentBytes caps the size of any downloaded model document.
const maxDocumentBytes = 32 << 20

var ErrorURLNotFound = errors.New("URL not found")

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads the content at url.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}
	req.Header.Set("User-Agent", clientAgent)

	resp, err := GetHTTPClient().Do(req) //nolint:gosec // URL comes from the operator
	if err != nil {
		return nil, fmt.Errorf("error downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	return readBody(resp, url)
}

func readBody(resp *http.Response, url string) ([]byte, error) {
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrorURLNotFound, url)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading downloaded content: %w", err)
	}
	if len(b) > maxDocumentBytes {
		return nil, fmt.Errorf("downloaded content exceeds %d bytes: %s", maxDocumentBytes, url)
	}
	return b, nil
}
