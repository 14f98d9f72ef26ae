package store

import "github.com/jask/jaskmap/core/geo"

// PoiDetails identifies the point of interest shown in the details overlay.
type PoiDetails struct {
	Name string
}

// Layer is a toggleable group of map features. IDs are opaque.
type Layer struct {
	ID      string
	Name    string
	Enabled bool
}

// ExploreState is the slice of state owned by the explore screen.
type ExploreState struct {
	Extent         geo.Viewport
	SelectedEntity *PoiDetails
	ShowPoiDetails bool
	Layers         []Layer
}

// GeolocationState holds the last known device position, if any.
type GeolocationState struct {
	LastPosition *geo.LngLat
}

// State is the whole application state. Values are treated as immutable:
// the reducer returns a new State and never edits slices in place.
type State struct {
	Explore     ExploreState
	Geolocation GeolocationState
}

// InitialState returns a state centered on extent with no selection.
func InitialState(extent geo.Viewport) State {
	return State{Explore: ExploreState{Extent: extent}}
}
