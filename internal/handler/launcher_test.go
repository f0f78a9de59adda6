package handler

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, title string) http.Handler {
	t.Helper()
	h, err := NewLauncherHandler(LauncherOptions{
		URL:   "https://irc.pulina.fi",
		Title: title,
		Icon:  []byte("\x89PNG fake"),
	})
	require.NoError(t, err)
	return h
}

func get(h http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLauncherPage(t *testing.T) {
	h := newTestHandler(t, "The Lounge")

	for _, target := range []string{"/", "/index.html", "/some/deep/link"} {
		t.Run(target, func(t *testing.T) {
			rec := get(h, target, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			body := rec.Body.String()
			assert.Contains(t, body, `location.replace("https://irc.pulina.fi")`)
			assert.Contains(t, body, `<title>The Lounge</title>`)
			assert.Contains(t, body, "Connecting to irc.pulina.fi")
		})
	}
}

func TestLauncherEscapesTitle(t *testing.T) {
	h := newTestHandler(t, `<script>x</script>`)
	body := get(h, "/", nil).Body.String()
	assert.NotContains(t, body, "<script>x</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestLauncherIcon(t *testing.T) {
	rec := get(newTestHandler(t, "t"), "/icon.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG fake", rec.Body.String())
}

func TestLauncherETag(t *testing.T) {
	h := newTestHandler(t, "t")
	etag := get(h, "/", nil).Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec := get(h, "/", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestLauncherGzip(t *testing.T) {
	h := newTestHandler(t, strings.Repeat("The Lounge ", 40))
	rec := get(h, "/", map[string]string{"Accept-Encoding": "gzip"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "location.replace")
}

func TestLauncherGzipDefaultTitle(t *testing.T) {
	h := newTestHandler(t, "The Lounge")
	rec := get(h, "/", map[string]string{"Accept-Encoding": "gzip"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "<title>The Lounge</title>")
}

func TestLauncherRejectsBadURL(t *testing.T) {
	_, err := NewLauncherHandler(LauncherOptions{URL: "://bad"})
	require.Error(t, err)
}
