package handler

import (
	"bytes"
	"crypto/md5"
	_ "embed"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fasttemplate"
)

//go:embed launcher.html
var launcherTemplate string

// fileCache is a pre-rendered response body with its metadata.
type fileCache struct {
	content     []byte
	gzipped     []byte
	contentType string
	etag        string
}

// LauncherOptions describe the page shown while the hosted application loads.
type LauncherOptions struct {
	URL   string
	Title string
	Icon  []byte
}

// NewLauncherHandler serves the window's start page, which immediately replaces
// itself with the hosted application, plus the icon it references. Every other
// path falls back to the start page.
func NewLauncherHandler(opts LauncherOptions) (http.Handler, error) {
	page, err := renderLauncher(opts)
	if err != nil {
		return nil, err
	}

	cache := map[string]*fileCache{
		"index.html": buildCacheEntry("index.html", page),
	}
	if len(opts.Icon) > 0 {
		cache["icon.png"] = buildCacheEntry("icon.png", opts.Icon)
	}
	index := cache["index.html"]

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlPath := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if urlPath == "" || urlPath == "." {
			urlPath = "index.html"
		}
		cached, ok := cache[urlPath]
		if !ok {
			cached = index
		}
		serveFromCache(w, r, cached)
	}), nil
}

func renderLauncher(opts LauncherOptions) ([]byte, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse launcher url: %w", err)
	}
	urlJSON, err := sonic.MarshalString(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("encode launcher url: %w", err)
	}
	page := fasttemplate.ExecuteString(launcherTemplate, "{{", "}}", map[string]interface{}{
		"url":   html.EscapeString(opts.URL),
		"title": html.EscapeString(opts.Title),
		"host":  html.EscapeString(u.Host),
		// "</" cannot close the script element once escaped.
		"urlJSON": strings.ReplaceAll(urlJSON, "</", `<\/`),
	})
	return []byte(page), nil
}

// gzipMinSize sits below the size of the launcher page with the default title.
const gzipMinSize = 512

func buildCacheEntry(name string, content []byte) *fileCache {
	cached := &fileCache{
		content:     content,
		contentType: getMimeType(name),
		etag:        fmt.Sprintf(`"%x"`, md5.Sum(content)),
	}
	if strings.HasPrefix(cached.contentType, "text/") && len(content) > gzipMinSize {
		var buf bytes.Buffer
		gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err == nil {
			gz.Write(content)
			gz.Close()
			if buf.Len() < len(content) {
				cached.gzipped = buf.Bytes()
			}
		}
	}
	return cached
}

func serveFromCache(w http.ResponseWriter, r *http.Request, cached *fileCache) {
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", cached.etag)
	if r.Header.Get("If-None-Match") == cached.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", cached.contentType)
	w.Header().Set("Vary", "Accept-Encoding")

	body := cached.content
	if cached.gzipped != nil && strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		body = cached.gzipped
	}
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func getMimeType(name string) string {
	switch path.Ext(name) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".png":
		return "image/png"
	case ".ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
