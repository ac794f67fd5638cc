package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duckworks/imgdex/internal/metadata"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func newTestServer(t *testing.T, dir string) (*Server, *metadata.Generator) {
	t.Helper()
	gen := metadata.New(dir, filepath.Join(dir, "metadata.json"), nil, zerolog.Nop())
	return New(Options{ListenAddr: ":0"}, gen, zerolog.Nop()), gen
}

func getJSON(t *testing.T, ts *httptest.Server, path string) []metadata.Info {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var infos []metadata.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	return infos
}

func TestHandlerReadThroughRefresh(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)

	srv, _ := newTestServer(t, dir)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// No index exists yet; the request itself generates it.
	infos := getJSON(t, ts, "/metadata.json")
	require.Len(t, infos, 1)
	assert.Equal(t, "a.png", infos[0].Filename)

	// A file added after the first request shows up on the next one
	// without waiting for the watcher.
	writePNG(t, filepath.Join(dir, "b.png"), 3, 3)
	infos = getJSON(t, ts, "/metadata.json")
	assert.Len(t, infos, 2)
}

func TestHandlerServesStaticFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)

	srv, _ := newTestServer(t, dir)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/a.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(b))
	assert.NoError(t, err)
}

func TestHandlerMissingFile(t *testing.T) {
	srv, _ := newTestServer(t, t.TempDir())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/nope.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
