// Package local stores media on the local filesystem for development.
package local

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Disk writes objects below root and serves them from baseURL.
type Disk struct {
	root    string
	baseURL string
}

// New returns a Disk rooted at root; relative roots resolve against the working directory.
func New(root, baseURL string) (*Disk, error) {
	if root == "" {
		return nil, errors.New("local storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	return &Disk{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *Disk) abs(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + key))
	if clean == string(filepath.Separator) {
		return "", errors.New("local object key is required")
	}
	return filepath.Join(d.root, clean), nil
}

// Put writes data under key and returns its public URL.
func (d *Disk) Put(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := d.abs(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("local storage mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("local storage write %s: %w", key, err)
	}
	return d.URL(key), nil
}

// URL returns the public URL for key, escaping each path segment.
func (d *Disk) URL(key string) string {
	segments := strings.Split(strings.TrimLeft(filepath.ToSlash(key), "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return d.baseURL + "/" + strings.Join(segments, "/")
}

// Ping checks the root exists and is a directory, creating it when missing.
func (d *Disk) Ping(context.Context) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("local storage root: %w", err)
	}
	return nil
}

// Handler serves stored files; mount it under the path of baseURL.
func (d *Disk) Handler(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(http.Dir(d.root)))
}
