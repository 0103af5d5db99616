package net

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v83/github"
)

const rateLimitThreshold = 10

// ReleaseClient downloads model documents attached to GitHub releases.
type ReleaseClient struct {
	http *http.Client
	gh   *github.Client
}

// NewReleaseClient returns a client authenticated with token, or anonymous
// when token is empty.
func NewReleaseClient(ctx context.Context, token string) *ReleaseClient {
	hc := GetOAuthClient(ctx, token)
	return &ReleaseClient{
		http: hc,
		gh:   github.NewClient(hc),
	}
}

// WithBaseURL points the client at a different API root, such as GitHub
// Enterprise.
func (c *ReleaseClient) WithBaseURL(base string) error {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid API URL %s: %w", base, err)
	}
	c.gh.BaseURL = u
	return nil
}

// ParseRepo splits an owner/repo reference.
func ParseRepo(s string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/repo", s)
	}
	return owner, repo, nil
}

// DownloadAssets fetches the named assets of the release tagged tag, in the
// order requested.
func (c *ReleaseClient) DownloadAssets(ctx context.Context, owner, repo, tag string, names ...string) ([][]byte, error) {
	rel, resp, err := c.gh.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		return nil, fmt.Errorf("error getting release %s/%s@%s: %w", owner, repo, tag, err)
	}
	checkRateLimit(resp)

	ids := make(map[string]int64, len(rel.Assets))
	for _, a := range rel.Assets {
		ids[a.GetName()] = a.GetID()
	}

	out := make([][]byte, 0, len(names))
	for _, name := range names {
		id, ok := ids[name]
		if !ok {
			return nil, fmt.Errorf("%w: release %s/%s@%s has no asset %s", ErrorURLNotFound, owner, repo, tag, name)
		}

		b, err := c.downloadAsset(ctx, owner, repo, id)
		if err != nil {
			return nil, fmt.Errorf("error downloading asset %s: %w", name, err)
		}
		slog.Debug("downloaded release asset", "repo", owner+"/"+repo, "tag", tag, "asset", name, "bytes", len(b))
		out = append(out, b)
	}

	return out, nil
}

func (c *ReleaseClient) downloadAsset(ctx context.Context, owner, repo string, id int64) ([]byte, error) {
	rc, redirect, err := c.gh.Repositories.DownloadReleaseAsset(ctx, owner, repo, id, c.http)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return Fetch(ctx, redirect)
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading asset %d: %w", id, err)
	}
	if len(b) > maxDocumentBytes {
		return nil, fmt.Errorf("asset %d exceeds %d bytes", id, maxDocumentBytes)
	}
	return b, nil
}

func checkRateLimit(resp *github.Response) {
	if resp == nil {
		return
	}

	if resp.Rate.Remaining > rateLimitThreshold {
		return
	}

	resetAt := resp.Rate.Reset.Time
	wait := time.Until(resetAt)
	if wait <= 0 {
		return
	}

	jitter := time.Duration(rand.IntN(2000)) * time.Millisecond
	total := wait + jitter

	slog.Info("rate limit approaching, waiting",
		"remaining", resp.Rate.Remaining,
		"reset_at", resetAt.Format(time.RFC3339),
		"wait", total.String(),
	)

	time.Sleep(total)
}
