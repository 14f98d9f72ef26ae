package store

import "slices"

// Reducer computes the next state for an action.
type Reducer func(State, Action) State

// Reduce is the application reducer.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetMapExtent:
		s.Explore.Extent = a.Extent
	case ShowPoiDetails:
		details := a.Details
		s.Explore.SelectedEntity = &details
		s.Explore.ShowPoiDetails = true
	case HidePoiDetails:
		s.Explore.ShowPoiDetails = false
	case SetLayers:
		s.Explore.Layers = slices.Clone(a.Layers)
	case ToggleLayer:
		layers := slices.Clone(s.Explore.Layers)
		for i := range layers {
			if layers[i].ID == a.ID {
				layers[i].Enabled = !layers[i].Enabled
			}
		}
		s.Explore.Layers = layers
	case SetGeolocationPosition:
		pos := a.Position
		s.Geolocation.LastPosition = &pos
	}
	return s
}
