package explore

import "github.com/jask/jaskmap/core/geo"

// Feature is a rendered map feature. Property values are opaque; nested
// objects are exposed as JSON-encoded strings.
type Feature struct {
	ID         string
	Layer      string
	Properties map[string]any
}

// MapWidget is the map the explore screen drives.
type MapWidget interface {
	Center() geo.LngLat
	Zoom() float64
	SetCenter(geo.LngLat)
	SetZoom(float64)
	// QueryRenderedFeatures returns the features rendered at p, topmost first.
	QueryRenderedFeatures(p geo.ScreenPoint) []Feature
}

// LayerFilterSetter is implemented by widgets that can hide disabled layers.
type LayerFilterSetter interface {
	SetLayerFilter(enabled []string)
}

// GeolocationMarker is implemented by widgets that can show the device position.
type GeolocationMarker interface {
	SetGeolocation(geo.LngLat)
}

// ClickEvent is a click on the map. LngLat is nil when the click did not
// resolve to a geographic position.
type ClickEvent struct {
	LngLat *geo.LngLat
	Point  geo.ScreenPoint
	Target MapWidget
}

// OverlayHandle is a live overlay. Dismiss may be called more than once.
type OverlayHandle interface {
	Dismiss()
}

// OverlayFactory opens a details overlay showing name.
type OverlayFactory interface {
	Open(name string) OverlayHandle
}
