package route

import (
	"log/slog"
	"sync"

	"github.com/jask/jaskmap/core/observable"
	"github.com/jask/jaskmap/internal/metrics"
)

// Router is the in-process navigation state: the current URL and a stream
// of its parameters. Navigate only records the request; queued navigations
// take effect when the host calls Flush on a later turn of its event loop,
// which keeps a navigation from re-entering the handler that issued it.
type Router struct {
	mu      sync.Mutex
	url     string
	pending []string
	params  *observable.Subject[Params]
	logger  *slog.Logger
}

// NewRouter starts at initialURL.
func NewRouter(initialURL string, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	_, params, err := ParseURL(initialURL)
	if err != nil {
		return nil, err
	}
	return &Router{
		url:    initialURL,
		params: observable.NewBehaviorSubject(params),
		logger: logger,
	}, nil
}

// ParamMap streams the current parameters, replaying the latest to new
// subscribers. Each emission is a private copy.
func (r *Router) ParamMap() observable.Source[Params] {
	return observable.Map[Params, Params](r.params, Params.Clone)
}

// URL returns the current URL.
func (r *Router) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.url
}

// Navigate queues a navigation to path with params.
func (r *Router) Navigate(path string, params Params) {
	target := FormatURL(path, params)
	r.mu.Lock()
	r.pending = append(r.pending, target)
	r.mu.Unlock()
	r.logger.Debug("router: navigation queued", "url", target)
}

// Pending reports whether navigations are waiting for Flush.
func (r *Router) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending) > 0
}

// Flush applies queued navigations in order and returns how many were
// applied. Navigations queued while flushing wait for the next Flush.
func (r *Router) Flush() int {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, target := range batch {
		_, params, err := ParseURL(target)
		if err != nil {
			r.logger.Warn("router: dropping navigation", "url", target, "err", err)
			continue
		}
		r.mu.Lock()
		r.url = target
		r.mu.Unlock()
		metrics.Navigations.Inc()
		r.params.Next(params)
	}
	return len(batch)
}
