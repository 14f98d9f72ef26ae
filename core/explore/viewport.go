package explore

import (
	"github.com/jask/jaskmap/core/geo"
	"github.com/jask/jaskmap/core/observable"
	"github.com/jask/jaskmap/core/store"
)

// SettledHandler receives viewports the user has finished moving to.
type SettledHandler interface {
	OnViewportSettled(center geo.LngLat, zoom float64)
}

// ViewportSync exposes the store's desired viewport to the widget and
// forwards settled gestures to the route binder. It never dispatches.
type ViewportSync struct {
	center  observable.Source[geo.LngLat]
	zoom    observable.Source[float64]
	settled SettledHandler
}

// NewViewportSync derives the center and zoom views from src.
func NewViewportSync(src observable.Source[store.State], settled SettledHandler) *ViewportSync {
	return &ViewportSync{
		center:  store.SelectMapCenter(src),
		zoom:    store.SelectMapZoom(src),
		settled: settled,
	}
}

// Center emits the desired center whenever it changes.
func (v *ViewportSync) Center() observable.Source[geo.LngLat] { return v.center }

// Zoom emits the desired zoom whenever it changes.
func (v *ViewportSync) Zoom() observable.Source[float64] { return v.zoom }

// OnMoveSettled reads the widget's own viewport and hands it to the binder.
func (v *ViewportSync) OnMoveSettled(w MapWidget) {
	v.settled.OnViewportSettled(w.Center(), w.Zoom())
}
