package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/jask/jaskmap/core/explore"
	"github.com/jask/jaskmap/core/geo"
	"github.com/jask/jaskmap/internal/database/repository"
)

const (
	tileSize   = 256.0
	cellWidth  = 8.0  // pixels per terminal column
	cellHeight = 16.0 // pixels per terminal row
	maxZoom    = 22.0
	listLimit  = 200
)

// MapView is the terminal stand-in for a map widget. It projects cells to
// degrees with a plain equirectangular scale at the current zoom and
// answers rendered-feature queries from the feature index.
type MapView struct {
	ctx       context.Context
	features  *repository.FeatureRepo
	logger    *slog.Logger
	center    geo.LngLat
	zoom      float64
	width     int
	height    int
	tolerance int
	layers    []string
	position  *geo.LngLat
	moving    bool
}

// NewMapView returns a map view answering feature queries from features.
// tolerance is the click radius in cells.
func NewMapView(ctx context.Context, features *repository.FeatureRepo, tolerance int, logger *slog.Logger) *MapView {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MapView{ctx: ctx, features: features, logger: logger, tolerance: tolerance, width: 80, height: 24}
}

// Center and Zoom report the viewport currently shown.
func (v *MapView) Center() geo.LngLat { return v.center }
func (v *MapView) Zoom() float64      { return v.zoom }

// BeginGesture marks the viewport as user-driven. Until EndGesture,
// SetCenter and SetZoom are ignored so that a route applied for an earlier
// gesture cannot move the map out from under the current one.
func (v *MapView) BeginGesture() { v.moving = true }

// EndGesture hands the viewport back to the store.
func (v *MapView) EndGesture() { v.moving = false }

// Moving reports whether a gesture is in progress.
func (v *MapView) Moving() bool { return v.moving }

// SetCenter moves the map. Non-finite centers, and centers set while a
// gesture is in progress, are ignored.
func (v *MapView) SetCenter(c geo.LngLat) {
	if v.moving {
		v.logger.Debug("map: center held during gesture", "lng", c.Lng, "lat", c.Lat)
		return
	}
	if !c.Finite() {
		v.logger.Warn("map: ignoring non-finite center", "lng", c.Lng, "lat", c.Lat)
		return
	}
	v.center = c
}

// SetZoom changes the zoom level. Non-finite or negative zooms, and zooms
// set while a gesture is in progress, are ignored.
func (v *MapView) SetZoom(z float64) {
	if v.moving {
		v.logger.Debug("map: zoom held during gesture", "zoom", z)
		return
	}
	if math.IsNaN(z) || math.IsInf(z, 0) || z < 0 {
		v.logger.Warn("map: ignoring invalid zoom", "zoom", z)
		return
	}
	v.zoom = math.Min(z, maxZoom)
}

// SetLayerFilter restricts rendering to the given layers. Nil shows every layer.
func (v *MapView) SetLayerFilter(enabled []string) {
	v.layers = slices.Clone(enabled)
}

// SetGeolocation moves the device position marker.
func (v *MapView) SetGeolocation(p geo.LngLat) {
	v.position = &p
}

// Resize sets the canvas size in cells.
func (v *MapView) Resize(width, height int) {
	v.width, v.height = max(width, 1), max(height, 1)
}

// Pan moves the center by whole cells.
func (v *MapView) Pan(dx, dy int) {
	lngPerCol, latPerRow := v.scale()
	v.center = geo.LngLat{
		Lng: wrapLng(v.center.Lng + float64(dx)*lngPerCol),
		Lat: clampLat(v.center.Lat - float64(dy)*latPerRow),
	}
}

// JumpTo recenters on c as a user gesture would.
func (v *MapView) JumpTo(c geo.LngLat) {
	if c.Finite() {
		v.center = c
	}
}

// ZoomBy changes the zoom by dz, clamped to [0, maxZoom].
func (v *MapView) ZoomBy(dz float64) {
	v.zoom = math.Max(0, math.Min(maxZoom, v.zoom+dz))
}

// CenterPoint is the screen point under the crosshair.
func (v *MapView) CenterPoint() geo.ScreenPoint {
	return geo.ScreenPoint{X: v.width / 2, Y: v.height / 2}
}

// Unproject converts a screen point into a geographic position.
func (v *MapView) Unproject(p geo.ScreenPoint) geo.LngLat {
	lngPerCol, latPerRow := v.scale()
	c := v.CenterPoint()
	return geo.LngLat{
		Lng: v.center.Lng + float64(p.X-c.X)*lngPerCol,
		Lat: v.center.Lat - float64(p.Y-c.Y)*latPerRow,
	}
}

// QueryRenderedFeatures returns the features within the click tolerance of
// p, topmost (latest drawn) first. Nested property values are flattened to
// JSON strings.
func (v *MapView) QueryRenderedFeatures(p geo.ScreenPoint) []explore.Feature {
	at := v.Unproject(p)
	lngPerCol, latPerRow := v.scale()
	tol := float64(v.tolerance)
	bound := orb.Bound{
		Min: orb.Point{at.Lng - tol*lngPerCol, at.Lat - tol*latPerRow},
		Max: orb.Point{at.Lng + tol*lngPerCol, at.Lat + tol*latPerRow},
	}
	rows, err := v.features.Query(v.ctx, repository.FeatureQuery{Bound: bound, Layers: v.layers, Topmost: true})
	if err != nil {
		v.logger.Warn("map: feature query failed", "err", err)
		return nil
	}
	out := make([]explore.Feature, 0, len(rows))
	for _, r := range rows {
		out = append(out, explore.Feature{ID: r.ID, Layer: r.Layer, Properties: flatten(r.Properties)})
	}
	return out
}

// VisibleFeature is a feature inside the viewport with its offset from the
// crosshair in cells.
type VisibleFeature struct {
	Feature  repository.Feature
	DX, DY   int
	Distance float64
}

// Visible lists the features inside the viewport, nearest first.
func (v *MapView) Visible() ([]VisibleFeature, error) {
	tl := v.Unproject(geo.ScreenPoint{})
	br := v.Unproject(geo.ScreenPoint{X: v.width, Y: v.height})
	center := orb.Point{v.center.Lng, v.center.Lat}
	rows, err := v.features.Query(v.ctx, repository.FeatureQuery{
		Bound:  orb.Bound{Min: orb.Point{tl.Lng, br.Lat}, Max: orb.Point{br.Lng, tl.Lat}},
		Near:   center,
		Layers: v.layers,
		Limit:  listLimit,
	})
	if err != nil {
		return nil, err
	}
	lngPerCol, latPerRow := v.scale()
	out := make([]VisibleFeature, 0, len(rows))
	for _, r := range rows {
		out = append(out, VisibleFeature{
			Feature:  r,
			DX:       int(math.Round((r.Center.Lon() - v.center.Lng) / lngPerCol)),
			DY:       int(math.Round((v.center.Lat - r.Center.Lat()) / latPerRow)),
			Distance: planar.Distance(center, r.Center),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// View renders the viewport summary and the visible feature list.
func (v *MapView) View(visible []VisibleFeature, height int) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("center "))
	b.WriteString(fmt.Sprintf("%.5f, %.5f", v.center.Lng, v.center.Lat))
	b.WriteString(labelStyle.Render("  zoom "))
	b.WriteString(fmt.Sprintf("%.2f", v.zoom))
	if v.position != nil {
		b.WriteString(labelStyle.Render("  you "))
		b.WriteString(fmt.Sprintf("%.5f, %.5f", v.position.Lng, v.position.Lat))
	}
	b.WriteString("\n")
	if len(visible) == 0 {
		b.WriteString(mutedStyle.Render("no features in view"))
		return b.String()
	}
	for i, f := range visible {
		if height > 0 && i >= height-1 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more", len(visible)-i)))
			break
		}
		marker := "  "
		if f.DX == 0 && f.DY == 0 {
			marker = accentStyle.Render("▸ ")
		}
		b.WriteString(fmt.Sprintf("%s%-28s %-10s %s\n", marker, displayName(f.Feature.Properties), f.Feature.Layer,
			mutedStyle.Render(fmt.Sprintf("%+d,%+d", f.DX, f.DY))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *MapView) scale() (lngPerCol, latPerRow float64) {
	degPerPx := 360 / (tileSize * math.Pow(2, v.zoom))
	return degPerPx * cellWidth, degPerPx * cellHeight
}

func wrapLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}

func clampLat(lat float64) float64 {
	return math.Max(-85, math.Min(85, lat))
}

// flatten exposes nested objects and arrays as JSON strings, the way a
// rendered map reports feature properties.
func flatten(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, val := range props {
		switch val.(type) {
		case map[string]any, []any:
			data, err := json.Marshal(val)
			if err != nil {
				continue
			}
			out[k] = string(data)
		default:
			out[k] = val
		}
	}
	return out
}

func displayName(props map[string]any) string {
	if m, ok := props["name"].(map[string]any); ok {
		if s, ok := m["value"].(string); ok {
			return s
		}
	}
	if s, ok := props["name"].(string); ok {
		return s
	}
	return "(unnamed)"
}
