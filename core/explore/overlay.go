package explore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jask/jaskmap/core/store"
	"github.com/jask/jaskmap/internal/metrics"
)

// OverlayState is the state of the details overlay.
type OverlayState int

const (
	OverlayHidden OverlayState = iota
	OverlayShown
)

func (s OverlayState) String() string {
	if s == OverlayShown {
		return "shown"
	}
	return "hidden"
}

var (
	errNoName   = errors.New("feature has no string name property")
	errNullName = errors.New("name is null")
)

// OverlayController owns the single details overlay.
type OverlayController struct {
	factory OverlayFactory
	store   store.Dispatcher
	logger  *slog.Logger
	handle  OverlayHandle
	name    string
}

// NewOverlayController returns a hidden controller that opens overlays
// through factory and dispatches selections to d.
func NewOverlayController(factory OverlayFactory, d store.Dispatcher, logger *slog.Logger) *OverlayController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OverlayController{factory: factory, store: d, logger: logger}
}

// Apply handles one selection emission. The live overlay is always
// dismissed first; a new one opens when details are requested for an entity.
func (c *OverlayController) Apply(v store.SelectionView) {
	c.dismiss()
	if !v.ShowDetails || v.Entity == nil {
		return
	}
	c.handle = c.factory.Open(v.Entity.Name)
	c.name = v.Entity.Name
	metrics.OverlaysOpened.Inc()
	c.logger.Debug("overlay: opened", "name", c.name)
}

// Close dismisses the live overlay, if any.
func (c *OverlayController) Close() {
	c.dismiss()
}

// State reports whether an overlay is live.
func (c *OverlayController) State() OverlayState {
	if c.handle != nil {
		return OverlayShown
	}
	return OverlayHidden
}

// Name returns the entity name of the live overlay.
func (c *OverlayController) Name() string {
	return c.name
}

func (c *OverlayController) dismiss() {
	if c.handle == nil {
		return
	}
	c.handle.Dismiss()
	c.handle = nil
	c.name = ""
	metrics.OverlaysDismissed.Inc()
}

// OnMapClick selects the topmost feature under the click. A feature whose
// name cannot be decoded is logged and ignored.
func (c *OverlayController) OnMapClick(ev ClickEvent) {
	if ev.LngLat == nil || ev.Target == nil {
		return
	}
	features := ev.Target.QueryRenderedFeatures(ev.Point)
	if len(features) == 0 {
		return
	}
	feature := features[0]
	name, err := decodeName(feature)
	if err != nil {
		metrics.FeatureDecodeFailures.Inc()
		c.logger.Warn("could not handle feature", "feature", feature.ID, "layer", feature.Layer, "err", err)
		return
	}
	c.store.Dispatch(store.ShowPoiDetails{Details: store.PoiDetails{Name: name}})
}

// decodeName reads the feature's "name" property, a JSON document of the
// form {"value": ...}. String values are used as is; other values are
// shown in their JSON form and a missing or null value is empty.
func decodeName(f Feature) (string, error) {
	raw, ok := f.Properties["name"].(string)
	if !ok {
		return "", errNoName
	}
	var doc *struct {
		Value any `json:"value"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", fmt.Errorf("decode name %q: %w", raw, err)
	}
	if doc == nil {
		return "", fmt.Errorf("decode name %q: %w", raw, errNullName)
	}
	switch v := doc.Value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("decode name %q: %w", raw, err)
		}
		return string(data), nil
	}
}
