package explore

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/jask/jaskmap/core/route"
	"github.com/jask/jaskmap/core/store"
)

var (
	ErrAlreadyInitialized = errors.New("explore: container already initialized")
	ErrDestroyed          = errors.New("explore: container destroyed")
)

// Options wires a Container to its collaborators.
type Options struct {
	Store    *store.Store
	Routes   route.Routes
	Widget   MapWidget
	Overlays OverlayFactory
	Logger   *slog.Logger
}

// Container is the explore screen. Init establishes its subscriptions and
// Destroy tears them down.
type Container struct {
	store    *store.Store
	widget   MapWidget
	binder   *route.Binder
	viewport *ViewportSync
	overlay  *OverlayController
	subs     SubscriptionSet
	logger   *slog.Logger

	layerButtons []store.Layer
	initialized  bool
	destroyed    bool
}

// NewContainer wires the explore collaborators. Nothing is subscribed
// until Init.
func NewContainer(opts Options) *Container {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	binder := route.NewBinder(opts.Routes, opts.Store, logger)
	return &Container{
		store:    opts.Store,
		widget:   opts.Widget,
		binder:   binder,
		viewport: NewViewportSync(opts.Store, binder),
		overlay:  NewOverlayController(opts.Overlays, opts.Store, logger),
		subs:     SubscriptionSet{logger: logger},
		logger:   logger,
	}
}

// Init subscribes the widget bindings, the layer button projection, the
// selection overlay and the route parameters, in that order.
func (c *Container) Init() error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.initialized {
		return ErrAlreadyInitialized
	}
	c.initialized = true

	if c.widget != nil {
		c.subs.Add(c.viewport.Center().Subscribe(c.widget.SetCenter))
		c.subs.Add(c.viewport.Zoom().Subscribe(c.widget.SetZoom))
		if f, ok := c.widget.(LayerFilterSetter); ok {
			c.subs.Add(store.SelectLayersEnabledFilter(c.store).Subscribe(f.SetLayerFilter))
		}
		if m, ok := c.widget.(GeolocationMarker); ok {
			c.subs.Add(store.SelectLastPosition(c.store).Subscribe(m.SetGeolocation))
		}
	}
	c.subs.Add(store.SelectLayerButtons(c.store).Subscribe(func(l []store.Layer) {
		c.layerButtons = l
	}))
	c.subs.Add(store.SelectSelection(c.store).Subscribe(c.overlay.Apply))
	c.subs.Add(c.binder.Start())

	c.logger.Debug("explore: initialized", "subscriptions", c.subs.Len())
	return nil
}

// Destroy dismisses the open overlay and releases every subscription.
// Calling it again, or before Init, is a no-op.
func (c *Container) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.overlay.Close()
	n := c.subs.ReleaseAll()
	c.logger.Debug("explore: destroyed", "released", n)
}

// OnMapClick handles a click on the map widget.
func (c *Container) OnMapClick(ev ClickEvent) {
	if ev.Target == nil {
		ev.Target = c.widget
	}
	c.overlay.OnMapClick(ev)
}

// OnMapMoveEnd handles the end of a pan or zoom gesture.
func (c *Container) OnMapMoveEnd() {
	if c.widget == nil {
		return
	}
	c.viewport.OnMoveSettled(c.widget)
}

// LayerButtons returns the latest layer buttons, for the layers dialog.
func (c *Container) LayerButtons() []store.Layer {
	return slices.Clone(c.layerButtons)
}

// Overlay returns the details overlay controller.
func (c *Container) Overlay() *OverlayController { return c.overlay }

// Subscriptions returns the number of live subscriptions held.
func (c *Container) Subscriptions() int { return c.subs.Len() }
