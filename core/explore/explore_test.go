package explore

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/jaskmap/core/geo"
	"github.com/jask/jaskmap/core/route"
	"github.com/jask/jaskmap/core/store"
)

type fakeWidget struct {
	center    geo.LngLat
	zoom      float64
	setCenter []geo.LngLat
	setZoom   []float64
	features  []Feature
	filter    []string
	position  *geo.LngLat
	queriedAt []geo.ScreenPoint
}

func (w *fakeWidget) Center() geo.LngLat { return w.center }
func (w *fakeWidget) Zoom() float64      { return w.zoom }
func (w *fakeWidget) SetCenter(c geo.LngLat) {
	w.center = c
	w.setCenter = append(w.setCenter, c)
}
func (w *fakeWidget) SetZoom(z float64) {
	w.zoom = z
	w.setZoom = append(w.setZoom, z)
}
func (w *fakeWidget) QueryRenderedFeatures(p geo.ScreenPoint) []Feature {
	w.queriedAt = append(w.queriedAt, p)
	return w.features
}
func (w *fakeWidget) SetLayerFilter(ids []string) { w.filter = ids }
func (w *fakeWidget) SetGeolocation(p geo.LngLat) { w.position = &p }

type fakeHandle struct {
	name      string
	dismissed int
	factory   *fakeFactory
}

func (h *fakeHandle) Dismiss() {
	h.dismissed++
	h.factory.dismisses++
}

type fakeFactory struct {
	handles   []*fakeHandle
	dismisses int
}

func (f *fakeFactory) Open(name string) OverlayHandle {
	h := &fakeHandle{name: name, factory: f}
	f.handles = append(f.handles, h)
	return h
}

func (f *fakeFactory) creates() int { return len(f.handles) }

func (f *fakeFactory) live() int {
	n := 0
	for _, h := range f.handles {
		if h.dismissed == 0 {
			n++
		}
	}
	return n
}

type fixture struct {
	store     *store.Store
	router    *route.Router
	widget    *fakeWidget
	overlays  *fakeFactory
	container *Container
	logs      *bytes.Buffer
	actions   []store.Action
}

func newFixture(t *testing.T, initialURL string) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	r, err := route.NewRouter(initialURL, logger)
	require.NoError(t, err)
	f := &fixture{
		store:    store.New(store.InitialState(geo.Viewport{Center: geo.LngLat{Lng: 1, Lat: 2}, Zoom: 3}), logger),
		router:   r,
		widget:   &fakeWidget{},
		overlays: &fakeFactory{},
		logs:     logs,
	}
	f.store.Actions().Subscribe(func(a store.Action) { f.actions = append(f.actions, a) })
	f.container = NewContainer(Options{
		Store:    f.store,
		Routes:   r,
		Widget:   f.widget,
		Overlays: f.overlays,
		Logger:   logger,
	})
	require.NoError(t, f.container.Init())
	return f
}

func (f *fixture) warnings() int {
	return strings.Count(f.logs.String(), "level=WARN")
}

func show(name string) store.ShowPoiDetails {
	return store.ShowPoiDetails{Details: store.PoiDetails{Name: name}}
}

func TestInitAppliesRouteViewportToWidget(t *testing.T) {
	f := newFixture(t, "/explore;x=10.5;y=20.25;z=14")
	assert.Equal(t, geo.LngLat{Lng: 10.5, Lat: 20.25}, f.widget.center)
	assert.Equal(t, 14.0, f.widget.zoom)
	assert.Equal(t, store.MapExtent(f.store.State()), geo.Viewport{Center: geo.LngLat{Lng: 10.5, Lat: 20.25}, Zoom: 14})
}

func TestPartialRouteKeepsPriorViewport(t *testing.T) {
	f := newFixture(t, "/explore;x=10.5;y=20.25")
	assert.Empty(t, f.actions)
	assert.Equal(t, geo.LngLat{Lng: 1, Lat: 2}, f.widget.center)
	assert.Equal(t, 3.0, f.widget.zoom)
}

func TestMoveSettledDoesNotRecenterInSameTick(t *testing.T) {
	f := newFixture(t, "/explore;x=10.5;y=20.25;z=14")
	before := len(f.widget.setCenter)

	f.widget.center = geo.LngLat{Lng: 11, Lat: 21}
	f.widget.zoom = 15
	f.container.OnMapMoveEnd()

	assert.Len(t, f.widget.setCenter, before, "widget must not be re-centered by its own event")
	assert.Empty(t, f.actions[1:], "move settled must not dispatch directly")
	assert.True(t, f.router.Pending())

	f.router.Flush()
	assert.Equal(t, "/explore;x=11;y=21;z=15", f.router.URL())
	assert.Equal(t, geo.Viewport{Center: geo.LngLat{Lng: 11, Lat: 21}, Zoom: 15}, store.MapExtent(f.store.State()))
	// The round trip re-applies the widget's own viewport exactly once.
	assert.Equal(t, geo.LngLat{Lng: 11, Lat: 21}, f.widget.center)
	assert.Len(t, f.widget.setCenter, before+1)

	// Settling again at the same place is idempotent for the widget.
	f.container.OnMapMoveEnd()
	f.router.Flush()
	assert.Len(t, f.widget.setCenter, before+1)
	assert.Len(t, f.widget.setZoom, 3)
}

func TestSelectionOpensOneOverlay(t *testing.T) {
	f := newFixture(t, "/explore")
	assert.Equal(t, OverlayHidden, f.container.Overlay().State())

	f.store.Dispatch(show("Cafe Mocha"))
	require.Equal(t, 1, f.overlays.creates())
	assert.Equal(t, "Cafe Mocha", f.overlays.handles[0].name)
	assert.Equal(t, OverlayShown, f.container.Overlay().State())
	assert.Equal(t, "Cafe Mocha", f.container.Overlay().Name())
}

func TestRepeatedSelectionAlwaysRecreatesOverlay(t *testing.T) {
	f := newFixture(t, "/explore")
	f.store.Dispatch(show("Cafe Mocha"))
	f.store.Dispatch(show("Cafe Mocha"))

	assert.Equal(t, 2, f.overlays.creates())
	assert.Equal(t, 1, f.overlays.dismisses)
	assert.Equal(t, 1, f.overlays.handles[0].dismissed)
	assert.Equal(t, 1, f.overlays.live())

	f.container.Destroy()
	assert.Equal(t, 2, f.overlays.dismisses)
}

func TestHideDismissesOverlay(t *testing.T) {
	f := newFixture(t, "/explore")
	f.store.Dispatch(show("A"))
	f.store.Dispatch(store.HidePoiDetails{})
	assert.Equal(t, 0, f.overlays.live())
	assert.Equal(t, OverlayHidden, f.container.Overlay().State())
	assert.Equal(t, 1, f.overlays.creates())
}

func TestAtMostOneLiveOverlay(t *testing.T) {
	f := newFixture(t, "/explore")
	steps := []store.Action{
		show("A"), show("B"), store.HidePoiDetails{}, store.HidePoiDetails{},
		show("C"), store.SetMapExtent{}, show("C"), store.ToggleLayer{ID: "x"},
	}
	for _, a := range steps {
		f.store.Dispatch(a)
		assert.LessOrEqual(t, f.overlays.live(), 1, "after %s", a.Type())
	}
}

func TestApplyWithoutEntityStaysHidden(t *testing.T) {
	overlays := &fakeFactory{}
	c := NewOverlayController(overlays, store.New(store.State{}, nil), nil)
	c.Apply(store.SelectionView{ShowDetails: true})
	c.Apply(store.SelectionView{Entity: &store.PoiDetails{Name: "x"}})
	assert.Equal(t, 0, overlays.creates())
	assert.Equal(t, OverlayHidden, c.State())
}

func TestDestroyDismissesOnceAndStopsDelivery(t *testing.T) {
	f := newFixture(t, "/explore")
	f.store.Dispatch(show("A"))
	require.Equal(t, 1, f.overlays.live())
	centerCalls := len(f.widget.setCenter)

	f.container.Destroy()
	assert.Equal(t, 1, f.overlays.dismisses)
	assert.Equal(t, 0, f.container.Subscriptions())

	f.store.Dispatch(show("B"))
	f.store.Dispatch(store.SetMapExtent{Extent: geo.Viewport{Center: geo.LngLat{Lng: 50, Lat: 50}, Zoom: 5}})
	f.router.Navigate(route.ExplorePath, route.Params{"x": "9", "y": "9", "z": "9"})
	f.router.Flush()

	assert.Equal(t, 1, f.overlays.creates())
	assert.Len(t, f.widget.setCenter, centerCalls)

	f.container.Destroy()
	assert.Equal(t, 1, f.overlays.dismisses)
}

func TestDestroyWithoutOverlayDismissesNothing(t *testing.T) {
	f := newFixture(t, "/explore")
	f.container.Destroy()
	assert.Equal(t, 0, f.overlays.dismisses)
}

func TestDestroyBeforeInitIsSafe(t *testing.T) {
	st := store.New(store.State{}, nil)
	r, err := route.NewRouter("/explore", nil)
	require.NoError(t, err)
	c := NewContainer(Options{Store: st, Routes: r, Overlays: &fakeFactory{}})
	assert.NotPanics(t, c.Destroy)
	assert.ErrorIs(t, c.Init(), ErrDestroyed)
}

func TestInitTwiceFails(t *testing.T) {
	f := newFixture(t, "/explore")
	assert.ErrorIs(t, f.container.Init(), ErrAlreadyInitialized)
}

func TestClickDispatchesDecodedName(t *testing.T) {
	f := newFixture(t, "/explore")
	f.widget.features = []Feature{
		{ID: "1", Properties: map[string]any{"name": `{"value":"Cafe Mocha"}`}},
		{ID: "2", Properties: map[string]any{"name": `{"value":"Under"}`}},
	}
	f.container.OnMapClick(ClickEvent{LngLat: &geo.LngLat{Lng: 1, Lat: 2}, Point: geo.ScreenPoint{X: 4, Y: 5}})

	require.Len(t, f.actions, 1)
	assert.Equal(t, show("Cafe Mocha"), f.actions[0])
	assert.Equal(t, []geo.ScreenPoint{{X: 4, Y: 5}}, f.widget.queriedAt)
	assert.Equal(t, "Cafe Mocha", f.overlays.handles[0].name)
	assert.Equal(t, 0, f.warnings())
}

func TestClickWithMalformedNameLogsWarning(t *testing.T) {
	f := newFixture(t, "/explore")
	f.widget.features = []Feature{{ID: "1", Properties: map[string]any{"name": "not json"}}}
	click := ClickEvent{LngLat: &geo.LngLat{}, Target: f.widget}

	assert.NotPanics(t, func() { f.container.OnMapClick(click) })
	assert.Empty(t, f.actions)
	assert.Equal(t, 1, f.warnings())

	// Later clicks are still handled.
	f.widget.features = []Feature{{ID: "2", Properties: map[string]any{"name": `{"value":"Park"}`}}}
	f.container.OnMapClick(click)
	require.Len(t, f.actions, 1)
	assert.Equal(t, show("Park"), f.actions[0])
}

func TestClickFormatsNonStringValues(t *testing.T) {
	f := newFixture(t, "/explore")
	cases := []struct {
		raw  string
		want string
	}{
		{`{"value":5}`, "5"},
		{`{"value":1.5}`, "1.5"},
		{`{"value":true}`, "true"},
		{`{"value":{"en":"Park"}}`, `{"en":"Park"}`},
		{`{"value":null}`, ""},
		{`{}`, ""},
	}
	for _, tc := range cases {
		f.widget.features = []Feature{{ID: "1", Properties: map[string]any{"name": tc.raw}}}
		f.container.OnMapClick(ClickEvent{LngLat: &geo.LngLat{}})
	}
	require.Len(t, f.actions, len(cases))
	for i, tc := range cases {
		assert.Equal(t, show(tc.want), f.actions[i], tc.raw)
	}
	assert.Equal(t, 0, f.warnings())
}

func TestClickEdgeCasesDispatchNothing(t *testing.T) {
	f := newFixture(t, "/explore")
	f.container.OnMapClick(ClickEvent{LngLat: &geo.LngLat{}})
	assert.Empty(t, f.actions, "no feature hit")

	f.widget.features = []Feature{{ID: "1", Properties: map[string]any{"name": `{"value":"x"}`}}}
	f.container.OnMapClick(ClickEvent{})
	assert.Empty(t, f.actions, "click without a position")
	assert.Empty(t, f.widget.queriedAt)

	for _, props := range []map[string]any{nil, {"name": 42}, {"name": "null"}, {"name": `["a"]`}} {
		f.widget.features = []Feature{{ID: "1", Properties: props}}
		f.container.OnMapClick(ClickEvent{LngLat: &geo.LngLat{}})
	}
	assert.Empty(t, f.actions)
	assert.Equal(t, 4, f.warnings())
}

func TestLayerBindings(t *testing.T) {
	f := newFixture(t, "/explore")
	f.store.Dispatch(store.SetLayers{Layers: []store.Layer{{ID: "cafes", Name: "Cafes", Enabled: true}, {ID: "parks", Name: "Parks"}}})
	assert.Equal(t, []string{"cafes"}, f.widget.filter)
	assert.Len(t, f.container.LayerButtons(), 2)

	f.store.Dispatch(store.ToggleLayer{ID: "parks"})
	assert.Equal(t, []string{"cafes", "parks"}, f.widget.filter)
	assert.True(t, f.container.LayerButtons()[1].Enabled)
}

func TestGeolocationBinding(t *testing.T) {
	f := newFixture(t, "/explore")
	assert.Nil(t, f.widget.position)
	f.store.Dispatch(store.SetGeolocationPosition{Position: geo.LngLat{Lng: 3, Lat: 4}})
	require.NotNil(t, f.widget.position)
	assert.Equal(t, geo.LngLat{Lng: 3, Lat: 4}, *f.widget.position)
}

func TestSubscriptionSetReleasesEachOnce(t *testing.T) {
	st := store.New(store.State{}, nil)
	var set SubscriptionSet
	set.Add(nil)
	a := st.Subscribe(func(store.State) {})
	b := st.Subscribe(func(store.State) {})
	set.Add(a)
	set.Add(b)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 2, set.ReleaseAll())
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.Equal(t, 0, set.ReleaseAll())
}
