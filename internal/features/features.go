// Package features loads the static feature document shown on the map and
// indexes it for rendered-feature queries.
package features

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/jask/jaskmap/internal/database/repository"
	"github.com/jask/jaskmap/internal/metrics"
)

// DefaultLayer is assigned to features without a "layer" property.
const DefaultLayer = "default"

// maxDocumentSize bounds the feature document read into memory.
const maxDocumentSize = 64 << 20

// ErrStatus is returned when the feature document responds with a non-2xx status.
var ErrStatus = errors.New("features: unexpected status")

// Result summarizes a completed load.
type Result struct {
	Features int
	Layers   []string
}

// Loader fetches the feature document once and replaces the index with it.
// It does not retry.
type Loader struct {
	Client  *http.Client
	Repo    *repository.FeatureRepo
	Timeout time.Duration
	Logger  *slog.Logger
}

// Load fetches location, an http(s) URL or a file path, and indexes it.
func (l *Loader) Load(ctx context.Context, location string) (Result, error) {
	start := time.Now()
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	fc, err := Fetch(ctx, l.Client, location)
	if err != nil {
		return Result{}, err
	}
	indexed := Index(fc)
	if err := l.Repo.ReplaceAll(ctx, indexed); err != nil {
		return Result{}, fmt.Errorf("index features: %w", err)
	}
	layers, err := l.Repo.Layers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list layers: %w", err)
	}
	metrics.FeatureLoadDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if l.Logger != nil {
		l.Logger.Info("features: loaded", "location", location, "features", len(indexed), "layers", len(layers))
	}
	return Result{Features: len(indexed), Layers: layers}, nil
}

// Fetch reads and parses the GeoJSON feature collection at location.
func Fetch(ctx context.Context, client *http.Client, location string) (*geojson.FeatureCollection, error) {
	data, err := read(ctx, client, location)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse features %q: %w", location, err)
	}
	return fc, nil
}

func read(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		data, err := os.ReadFile(strings.TrimPrefix(location, "file://"))
		if err != nil {
			return nil, fmt.Errorf("read features: %w", err)
		}
		return data, nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch features: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch features: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s from %s", ErrStatus, resp.Status, location)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("fetch features: %w", err)
	}
	return data, nil
}

// Index converts a collection into index rows, skipping features without
// geometry.
func Index(fc *geojson.FeatureCollection) []repository.Feature {
	out := make([]repository.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		bound := f.Geometry.Bound()
		out = append(out, repository.Feature{
			ID:         featureID(f, i),
			Layer:      layerOf(f),
			Bound:      bound,
			Center:     bound.Center(),
			Properties: map[string]any(f.Properties),
		})
	}
	return out
}

func featureID(f *geojson.Feature, i int) string {
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return fmt.Sprintf("feature-%d", i)
}

func layerOf(f *geojson.Feature) string {
	if l, ok := f.Properties["layer"].(string); ok && l != "" {
		return l
	}
	return DefaultLayer
}
