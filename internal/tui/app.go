package tui

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/jaskmap/core/explore"
	"github.com/jask/jaskmap/core/geo"
	"github.com/jask/jaskmap/core/route"
	"github.com/jask/jaskmap/core/store"
	"github.com/jask/jaskmap/internal/config"
	"github.com/jask/jaskmap/internal/database/repository"
	"github.com/jask/jaskmap/internal/features"
)

const chromeRows = 3 // header, status, footer

// App hosts the explore screen in a terminal. Each bubbletea message is
// one turn of the event loop; route updates and settle notifications are
// always delivered on a later message.
type App struct {
	ctx       context.Context
	cfg       config.Config
	store     *store.Store
	router    *route.Router
	screen    *explore.Container
	mapView   *MapView
	snackbars *Snackbars
	loader    *features.Loader
	logger    *slog.Logger
	keys      keyMap
	layers    layersDialog

	visible  []VisibleFeature
	jumped   string
	width    int
	height   int
	gesture  int
	flushing bool
	status   string
	failed   bool
}

// Deps are the collaborators an App needs.
type Deps struct {
	Store    *store.Store
	Router   *route.Router
	Features *repository.FeatureRepo
	Loader   *features.Loader
	Logger   *slog.Logger
}

// New builds the explore screen around a terminal map view.
func New(ctx context.Context, cfg config.Config, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mapView := NewMapView(ctx, deps.Features, cfg.Map.ClickTolerancePx, logger)
	snackbars := &Snackbars{}
	screen := explore.NewContainer(explore.Options{
		Store:    deps.Store,
		Routes:   deps.Router,
		Widget:   mapView,
		Overlays: snackbars,
		Logger:   logger,
	})
	return &App{
		ctx:       ctx,
		cfg:       cfg,
		store:     deps.Store,
		router:    deps.Router,
		screen:    screen,
		mapView:   mapView,
		snackbars: snackbars,
		loader:    deps.Loader,
		logger:    logger,
		keys:      defaultKeys(),
		width:     80,
		height:    24,
	}
}

func (a *App) Init() tea.Cmd {
	if err := a.screen.Init(); err != nil {
		return func() tea.Msg { return errMsg{err} }
	}
	if g := a.cfg.Geolocation; g.Enabled {
		a.store.Dispatch(store.SetGeolocationPosition{Position: geo.LngLat{Lng: g.Lng, Lat: g.Lat}})
	}
	a.refresh()
	return tea.Batch(a.loadFeatures(), a.scheduleFlush())
}

func (a *App) loadFeatures() tea.Cmd {
	if a.loader == nil || a.cfg.Features.URL == "" {
		return nil
	}
	location := a.cfg.Features.URL
	return func() tea.Msg {
		res, err := a.loader.Load(a.ctx, location)
		if err != nil {
			return errMsg{fmt.Errorf("load features: %w", err)}
		}
		return featuresLoadedMsg(res)
	}
}

// scheduleFlush applies queued navigations on the next message.
func (a *App) scheduleFlush() tea.Cmd {
	if a.flushing || !a.router.Pending() {
		return nil
	}
	a.flushing = true
	return func() tea.Msg { return flushRouteMsg{} }
}

// settleAfter reports the end of the current gesture once the map has been
// still for the configured delay.
func (a *App) settleAfter() tea.Cmd {
	a.mapView.BeginGesture()
	a.gesture++
	seq := a.gesture
	return tea.Tick(a.cfg.Map.SettleDelay, func(time.Time) tea.Msg { return settleMsg{seq: seq} })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.mapView.Resize(m.Width, max(m.Height-chromeRows, 1))
	case tea.KeyMsg:
		var quit bool
		cmd, quit = a.handleKey(m)
		if quit {
			return a, cmd
		}
	case settleMsg:
		if m.seq == a.gesture {
			a.mapView.EndGesture()
			a.screen.OnMapMoveEnd()
		}
	case flushRouteMsg:
		a.flushing = false
		if n := a.router.Flush(); n > 0 {
			a.logger.Debug("route: flushed", "navigations", n, "url", a.router.URL())
		}
	case featuresLoadedMsg:
		layers := make([]store.Layer, 0, len(m.Layers))
		for _, id := range m.Layers {
			layers = append(layers, store.Layer{ID: id, Name: id, Enabled: true})
		}
		a.store.Dispatch(store.SetLayers{Layers: layers})
		a.setStatus(fmt.Sprintf("loaded %d features in %d layers", m.Features, len(m.Layers)), false)
	case errMsg:
		a.logger.Error("explore: command failed", "err", m.error)
		a.setStatus("error: "+m.Error(), true)
	}
	a.refresh()
	return a, tea.Batch(cmd, a.scheduleFlush())
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Cmd, bool) {
	if m.Type == tea.KeyCtrlC {
		return a.quit(), true
	}
	if a.layers.open {
		if id := a.layers.update(m, a.keys, a.screen.LayerButtons()); id != "" {
			a.store.Dispatch(store.ToggleLayer{ID: id})
		}
		return nil, false
	}
	switch {
	case key.Matches(m, a.keys.Quit):
		return a.quit(), true
	case key.Matches(m, a.keys.Dismiss):
		if _, ok := a.snackbars.Visible(); ok {
			a.store.Dispatch(store.HidePoiDetails{})
		}
	case key.Matches(m, a.keys.Layers):
		a.layers = layersDialog{open: true}
	case key.Matches(m, a.keys.Up):
		a.mapView.Pan(0, -1)
		return a.settleAfter(), false
	case key.Matches(m, a.keys.Down):
		a.mapView.Pan(0, 1)
		return a.settleAfter(), false
	case key.Matches(m, a.keys.Left):
		a.mapView.Pan(-1, 0)
		return a.settleAfter(), false
	case key.Matches(m, a.keys.Right):
		a.mapView.Pan(1, 0)
		return a.settleAfter(), false
	case key.Matches(m, a.keys.ZoomIn):
		a.mapView.ZoomBy(1)
		return a.settleAfter(), false
	case key.Matches(m, a.keys.ZoomOut):
		a.mapView.ZoomBy(-1)
		return a.settleAfter(), false
	case key.Matches(m, a.keys.Next):
		f, ok := a.nextFeature()
		if !ok {
			return nil, false
		}
		a.jumped = f.ID
		a.mapView.JumpTo(geo.LngLat{Lng: f.Center.Lon(), Lat: f.Center.Lat()})
		return a.settleAfter(), false
	case key.Matches(m, a.keys.Click):
		p := a.mapView.CenterPoint()
		at := a.mapView.Unproject(p)
		a.screen.OnMapClick(explore.ClickEvent{LngLat: &at, Point: p})
	}
	return nil, false
}

func (a *App) quit() tea.Cmd {
	a.screen.Destroy()
	return tea.Quit
}

func (a *App) refresh() {
	visible, err := a.mapView.Visible()
	if err != nil {
		a.setStatus("error: "+err.Error(), true)
		return
	}
	a.visible = visible
}

// nextFeature cycles through the visible features in index order,
// starting after the last one jumped to.
func (a *App) nextFeature() (repository.Feature, bool) {
	if len(a.visible) == 0 {
		return repository.Feature{}, false
	}
	ordered := make([]repository.Feature, 0, len(a.visible))
	for _, v := range a.visible {
		ordered = append(ordered, v.Feature)
	}
	slices.SortFunc(ordered, func(x, y repository.Feature) int { return cmp.Compare(x.Seq, y.Seq) })
	i := slices.IndexFunc(ordered, func(f repository.Feature) bool { return f.ID == a.jumped })
	return ordered[(i+1)%len(ordered)], true
}

func (a *App) setStatus(s string, failed bool) {
	a.status, a.failed = s, failed
}

func (a *App) View() string {
	header := headerStyle.Render("explore") + " " + routeStyle.Render(a.router.URL())
	bodyHeight := max(a.height-chromeRows, 1)
	body := lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(a.mapView.View(a.visible, bodyHeight))

	status := statusStyle.Render(a.status)
	if a.failed {
		status = statusErrStyle.Render(a.status)
	}
	view := strings.Join([]string{header, body, status, a.renderFooter()}, "\n")

	if bar := a.snackbars.View(a.width); bar != "" {
		view = renderBottom(view, bar, a.width, a.height, 1)
	}
	if a.layers.open {
		view = renderPopup(view, a.layers.view(a.screen.LayerButtons()), a.width, a.height)
	}
	return view
}

func (a *App) renderFooter() string {
	parts := make([]string, 0, len(a.keys.footer()))
	for _, b := range a.keys.footer() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return footerStyle.Width(max(a.width, 1)).Render(strings.Join(parts, " • "))
}

type featuresLoadedMsg features.Result

type settleMsg struct{ seq int }

type flushRouteMsg struct{}

type errMsg struct{ error }
