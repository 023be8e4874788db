// Package res loads decoration assets (watermark images, SVG logos) from
// file paths, search directories, data URLs, or HTTP.
package res

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Resource represents a loaded asset
type Resource struct {
	URL      string
	Data     []byte
	MimeType string
}

// IsSVG reports whether the resource is vector art
func (r *Resource) IsSVG() bool {
	return r.MimeType == "image/svg+xml"
}

// Loader resolves and loads resources. Loaded resources are cached for
// the lifetime of the loader.
type Loader struct {
	cache       map[string]*Resource
	cacheLock   sync.RWMutex
	searchPaths []string
	client      *http.Client
}

// NewLoader creates a new resource loader
func NewLoader() *Loader {
	return &Loader{
		cache:  make(map[string]*Resource),
		client: &http.Client{},
	}
}

// AddSearchPath adds a directory to search for local resources
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads a resource from a file path, search path, data URL, or URL
func (l *Loader) Load(urlStr string) (*Resource, error) {
	l.cacheLock.RLock()
	if res, ok := l.cache[urlStr]; ok {
		l.cacheLock.RUnlock()
		return res, nil
	}
	l.cacheLock.RUnlock()

	var res *Resource
	var err error
	switch {
	case strings.HasPrefix(urlStr, "data:"):
		res, err = parseDataURL(urlStr)
	case strings.HasPrefix(urlStr, "http://") || strings.HasPrefix(urlStr, "https://"):
		res, err = l.loadRemote(urlStr)
	default:
		res, err = l.loadLocal(urlStr)
	}
	if err != nil {
		return nil, err
	}

	l.cacheLock.Lock()
	l.cache[urlStr] = res
	l.cacheLock.Unlock()
	return res, nil
}

// parseDataURL parses a data URL (RFC 2397) and returns a Resource
func parseDataURL(u string) (*Resource, error) {
	idx := strings.Index(u, ",")
	if idx < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta := strings.TrimPrefix(u[:idx], "data:")
	payload := u[idx+1:]

	mimeType := "text/plain"
	base64Encoded := false
	for i, part := range strings.Split(meta, ";") {
		if part == "base64" {
			base64Encoded = true
		} else if i == 0 && part != "" {
			mimeType = part
		}
	}

	var data []byte
	var err error
	if base64Encoded {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URL: %w", err)
		}
	} else {
		decoded, err := url.QueryUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to unescape data URL: %w", err)
		}
		data = []byte(decoded)
	}

	return &Resource{URL: u, Data: data, MimeType: mimeType}, nil
}

// loadRemote fetches a resource over HTTP
func (l *Loader) loadRemote(urlStr string) (*Resource, error) {
	resp, err := l.client.Get(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", urlStr, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", urlStr, err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFor(urlStr)
	}
	return &Resource{URL: urlStr, Data: data, MimeType: mimeType}, nil
}

// loadLocal reads a resource from disk, consulting search paths for
// relative names
func (l *Loader) loadLocal(path string) (*Resource, error) {
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		for _, dir := range l.searchPaths {
			candidates = append(candidates, filepath.Join(dir, path))
		}
	}

	var firstErr error
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return &Resource{URL: candidate, Data: data, MimeType: mimeTypeFor(candidate)}, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("failed to load resource %s: %w", path, firstErr)
}

// mimeTypeFor guesses a mime type from the file extension
func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
