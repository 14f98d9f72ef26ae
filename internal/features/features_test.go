package features

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/jask/jaskmap/internal/database"
	"github.com/jask/jaskmap/internal/database/repository"
)

func newLoader(t *testing.T) (*Loader, *repository.FeatureRepo) {
	t.Helper()
	db, err := database.Open(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db))
	repo := repository.NewFeatureRepo(db)
	return &Loader{Repo: repo, Timeout: 2 * time.Second}, repo
}

func TestLoadFromFile(t *testing.T) {
	loader, repo := newLoader(t)
	res, err := loader.Load(context.Background(), filepath.Join("testdata", "features.geojson"))
	require.NoError(t, err)
	require.Equal(t, 4, res.Features)
	require.Equal(t, []string{"cafes", "parks", DefaultLayer}, res.Layers)

	got, err := repo.Query(context.Background(), repository.FeatureQuery{
		Bound: orb.Point{144.9631, -37.8136}.Bound().Pad(0.0001),
		Near:  orb.Point{144.9631, -37.8136},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "cafe-mocha", got[0].ID)
	require.Equal(t, "7", got[1].ID)
	require.Equal(t, map[string]any{"value": "Cafe Mocha"}, got[0].Properties["name"])
}

func TestLoadOverHTTP(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "features.geojson"))
	require.NoError(t, err)
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	loader, _ := newLoader(t)
	loader.Client = srv.Client()
	res, err := loader.Load(context.Background(), srv.URL+"/assets/data/features.geojson")
	require.NoError(t, err)
	require.Equal(t, 4, res.Features)
	require.Equal(t, 1, requests)
}

func TestLoadHTTPErrorIsNotRetried(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	loader, _ := newLoader(t)
	_, err := loader.Load(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrStatus)
	require.Equal(t, 1, requests)
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type": "FeatureCollection", "features": [`), 0o600))
	loader, _ := newLoader(t)
	_, err := loader.Load(context.Background(), "file://"+path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	loader, _ := newLoader(t)
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.geojson"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
