package router

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"volunteerconnect/internal/domain/record"
)

// Path layout of the site's HTML fragments.
const (
	PagesRoot  = "views/pages/"
	HeaderPath = "views/components/header.html"
)

// maxFragmentBytes caps how much of a fragment response is read.
const maxFragmentBytes = 1 << 20

// Fetcher loads a site asset by its root-relative path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// PagePath is the root-relative path of a page's fragment.
func PagePath(segment string) string {
	return PagesRoot + segment + ".html"
}

// HTTPFetcher fetches assets from a web root, the way a browser would.
type HTTPFetcher struct {
	client *http.Client
	root   string
}

// NewHTTPFetcher creates a fetcher rooted at root. A nil client gets a 10s timeout.
func NewHTTPFetcher(client *http.Client, root string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{client: client, root: strings.TrimSuffix(root, "/") + "/"}
}

// Fetch GETs root+path.
// POST: any transport failure or non-2xx status wraps record.ErrNetwork
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) (string, error) {
	url := f.root + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w: %v", path, record.ErrNetwork, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w: %v", path, record.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: %w: status %d", path, record.ErrNetwork, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFragmentBytes))
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w: %v", path, record.ErrNetwork, err)
	}
	return string(body), nil
}

// FSFetcher reads assets from a file system, normally the embedded site.
type FSFetcher struct {
	fsys fs.FS
}

func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

// Fetch reads path from the file system. A missing file is a network error,
// matching what a 404 response would produce.
func (f *FSFetcher) Fetch(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := fs.ReadFile(f.fsys, strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w: %v", path, record.ErrNetwork, err)
	}
	return string(body), nil
}
