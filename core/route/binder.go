// Package route binds the URL's viewport parameters to the store and
// writes settled map viewports back into the URL.
package route

import (
	"log/slog"

	"github.com/jask/jaskmap/core/geo"
	"github.com/jask/jaskmap/core/observable"
	"github.com/jask/jaskmap/core/store"
	"github.com/jask/jaskmap/internal/metrics"
)

// ExplorePath is the route the explore screen lives on.
const ExplorePath = "/explore"

// Routes is the navigation surface the binder needs.
type Routes interface {
	ParamMap() observable.Source[Params]
	Navigate(path string, params Params)
}

// Binder derives the desired viewport from route parameters.
type Binder struct {
	routes Routes
	store  store.Dispatcher
	logger *slog.Logger
}

// NewBinder returns a binder between routes and the store behind d.
func NewBinder(routes Routes, d store.Dispatcher, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Binder{routes: routes, store: d, logger: logger}
}

// Start subscribes to parameter changes. Every emission carrying x, y and
// z dispatches SetMapExtent; any other emission is dropped.
func (b *Binder) Start() observable.Subscription {
	return b.routes.ParamMap().Subscribe(func(p Params) {
		extent, ok := ExtentFromParams(p)
		if !ok {
			metrics.RouteEmissionsDropped.Inc()
			b.logger.Debug("route: incomplete extent params ignored", "params", p)
			return
		}
		b.store.Dispatch(store.SetMapExtent{Extent: extent})
	})
}

// OnViewportSettled rewrites the URL to the given viewport.
func (b *Binder) OnViewportSettled(center geo.LngLat, zoom float64) {
	b.routes.Navigate(ExplorePath, ParamsFromViewport(geo.Viewport{Center: center, Zoom: zoom}))
}

// ExtentFromParams parses x, y and z. It reports false unless all three
// are present. Values are parsed with geo.ParseFloat and may be NaN.
func ExtentFromParams(p Params) (geo.Viewport, bool) {
	x, okx := p.Get("x")
	y, oky := p.Get("y")
	z, okz := p.Get("z")
	if !okx || !oky || !okz {
		return geo.Viewport{}, false
	}
	return geo.Viewport{
		Center: geo.LngLat{Lng: geo.ParseFloat(x), Lat: geo.ParseFloat(y)},
		Zoom:   geo.ParseFloat(z),
	}, true
}

// ParamsFromViewport encodes v as x, y and z.
func ParamsFromViewport(v geo.Viewport) Params {
	return Params{
		"x": geo.FormatFloat(v.Center.Lng),
		"y": geo.FormatFloat(v.Center.Lat),
		"z": geo.FormatFloat(v.Zoom),
	}
}
