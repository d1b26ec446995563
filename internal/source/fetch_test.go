package source_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/diamondstats/internal/source"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "playing-1978.csv", source.FileName(1978))
}

func TestFetchPrefersLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playing-1978.csv")
	require.NoError(t, os.WriteFile(path, []byte("game.key\nBOS197809070\n"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote fetch attempted despite local file")
	}))
	defer srv.Close()

	f := source.NewFetcher(srv.URL, dir, 60, nil)
	rc, err := f.Fetch(context.Background(), 1978)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "game.key\nBOS197809070\n", string(data))
}

func TestFetchRemote(t *testing.T) {
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		io.WriteString(w, "game.key\nNYA197810020\n")
	}))
	defer srv.Close()

	f := source.NewFetcher(srv.URL, "", 60, nil)
	rc, err := f.Fetch(context.Background(), 1978)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "/playing-1978.csv", requested)
	assert.Contains(t, string(data), "NYA197810020")
}

func TestFetchMissingYear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := source.NewFetcher(srv.URL, "", 60, nil)
	_, err := f.Fetch(context.Background(), 1868)
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := source.NewFetcher(srv.URL, "", 60, nil)
	_, err := f.Fetch(context.Background(), 1978)
	require.Error(t, err)
	assert.NotErrorIs(t, err, source.ErrNotFound)
}

func TestFetchNoSourceConfigured(t *testing.T) {
	f := source.NewFetcher("", t.TempDir(), 60, nil)
	_, err := f.Fetch(context.Background(), 1978)
	assert.ErrorIs(t, err, source.ErrNotFound)
}
