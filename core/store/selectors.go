package store

import (
	"math"
	"slices"
	"sort"

	"github.com/jask/jaskmap/core/geo"
	"github.com/jask/jaskmap/core/observable"
)

// SelectionView combines the selected entity with the visibility flag.
// Entity identity changes on every ShowPoiDetails, so a repeated selection
// of the same name is still a distinct view.
type SelectionView struct {
	Entity      *PoiDetails
	ShowDetails bool
}

// MapExtent returns the desired viewport.
func MapExtent(s State) geo.Viewport { return s.Explore.Extent }

// MapCenter returns the desired center.
func MapCenter(s State) geo.LngLat { return s.Explore.Extent.Center }

// MapZoom returns the desired zoom.
func MapZoom(s State) float64 { return s.Explore.Extent.Zoom }

// SelectedEntityWithShowPoiDetails pairs the selection with its visibility flag.
func SelectedEntityWithShowPoiDetails(s State) SelectionView {
	return SelectionView{Entity: s.Explore.SelectedEntity, ShowDetails: s.Explore.ShowPoiDetails}
}

// LayerButtons returns the layers in display order.
func LayerButtons(s State) []Layer {
	return slices.Clone(s.Explore.Layers)
}

// LayersEnabledFilter returns the sorted IDs of enabled layers. It is nil
// while no layers are known, and empty when every layer is disabled.
func LayersEnabledFilter(s State) []string {
	if len(s.Explore.Layers) == 0 {
		return nil
	}
	ids := []string{}
	for _, l := range s.Explore.Layers {
		if l.Enabled {
			ids = append(ids, l.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// LastPositionLngLat returns the last device position, or nil if unknown.
func LastPositionLngLat(s State) *geo.LngLat { return s.Geolocation.LastPosition }

// SelectMapCenter emits the desired center whenever it changes. A NaN
// coordinate counts as equal to a previous NaN.
func SelectMapCenter(src observable.Source[State]) observable.Source[geo.LngLat] {
	return observable.SelectFunc(src, MapCenter, func(a, b geo.LngLat) bool {
		return sameFloat(a.Lng, b.Lng) && sameFloat(a.Lat, b.Lat)
	})
}

// SelectMapZoom emits the desired zoom whenever it changes.
func SelectMapZoom(src observable.Source[State]) observable.Source[float64] {
	return observable.SelectFunc(src, MapZoom, sameFloat)
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// SelectSelection emits the selection view whenever the entity or its
// visibility changes.
func SelectSelection(src observable.Source[State]) observable.Source[SelectionView] {
	return observable.Select(src, SelectedEntityWithShowPoiDetails)
}

// SelectLayerButtons emits the layer list whenever it changes.
func SelectLayerButtons(src observable.Source[State]) observable.Source[[]Layer] {
	return observable.SelectFunc(src, LayerButtons, slices.Equal[[]Layer, Layer])
}

// SelectLayersEnabledFilter emits the enabled layer IDs whenever they change.
func SelectLayersEnabledFilter(src observable.Source[State]) observable.Source[[]string] {
	return observable.SelectFunc(src, LayersEnabledFilter, sameFilter)
}

func sameFilter(a, b []string) bool {
	return (a == nil) == (b == nil) && slices.Equal(a, b)
}

// SelectLastPosition emits known device positions, skipping the unset state.
func SelectLastPosition(src observable.Source[State]) observable.Source[geo.LngLat] {
	known := observable.Filter(
		observable.Select(src, LastPositionLngLat),
		func(p *geo.LngLat) bool { return p != nil },
	)
	return observable.Map(known, func(p *geo.LngLat) geo.LngLat { return *p })
}
