package store

import "github.com/jask/jaskmap/core/geo"

// Action is an intent submitted to the Store.
type Action interface {
	Type() string
}

const (
	TypeSetMapExtent           = "[Explore] Set Map Extent"
	TypeShowPoiDetails         = "[Explore] Show POI Details"
	TypeHidePoiDetails         = "[Explore] Hide POI Details"
	TypeSetLayers              = "[Explore] Set Layers"
	TypeToggleLayer            = "[Explore] Toggle Layer"
	TypeSetGeolocationPosition = "[Geolocation] Set Position"
)

// SetMapExtent replaces the desired viewport. The extent is stored as
// given, including non-finite values.
type SetMapExtent struct {
	Extent geo.Viewport
}

func (SetMapExtent) Type() string { return TypeSetMapExtent }

// ShowPoiDetails selects an entity and asks for its details to be shown.
type ShowPoiDetails struct {
	Details PoiDetails
}

func (ShowPoiDetails) Type() string { return TypeShowPoiDetails }

// HidePoiDetails hides the details overlay and keeps the selection.
type HidePoiDetails struct{}

func (HidePoiDetails) Type() string { return TypeHidePoiDetails }

// SetLayers replaces the known layers.
type SetLayers struct {
	Layers []Layer
}

func (SetLayers) Type() string { return TypeSetLayers }

// ToggleLayer flips the Enabled flag of the layer with the given ID.
type ToggleLayer struct {
	ID string
}

func (ToggleLayer) Type() string { return TypeToggleLayer }

// SetGeolocationPosition records the device position.
type SetGeolocationPosition struct {
	Position geo.LngLat
}

func (SetGeolocationPosition) Type() string { return TypeSetGeolocationPosition }
