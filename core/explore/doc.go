// Package explore coordinates the map exploration screen: it keeps the map
// widget's viewport, the URL and the store consistent, and manages the
// point-of-interest details overlay.
//
// Viewport changes flow in one direction per source of truth. The store
// drives the widget through the center and zoom views of ViewportSync; the
// widget drives the store only by way of the URL, when a gesture settles
// (ViewportSync.OnMoveSettled -> route.Binder -> Router.Flush -> Binder ->
// store). Because the router applies navigations on a later turn of the
// event loop and the views are distinct-until-changed, a settled gesture
// never re-centers the widget from inside its own event.
//
// OverlayController is a two-state machine (hidden, shown). Every selection
// emission dismisses the current overlay before deciding whether to open a
// new one, so at most one overlay is ever live.
//
// Container owns every long-lived subscription and releases them on a
// single teardown path.
package explore
