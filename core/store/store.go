// Package store is the explicit, observable state container shared by the
// explore screen. Components receive a *Store and mutate it only through
// Dispatch; reads go through the pure projections in selectors.go.
package store

import (
	"log/slog"
	"sync"

	"github.com/jask/jaskmap/core/observable"
	"github.com/jask/jaskmap/internal/metrics"
)

// Dispatcher accepts actions.
type Dispatcher interface {
	Dispatch(Action)
}

// Store holds State and notifies subscribers after every dispatch.
// Subscribers receive the current state on subscribe.
type Store struct {
	mu          sync.Mutex
	queue       []Action
	dispatching bool
	reducer     Reducer
	state       *observable.Subject[State]
	actions     *observable.Subject[Action]
	logger      *slog.Logger
}

// New returns a store seeded with initial and reduced by Reduce.
func New(initial State, logger *slog.Logger) *Store {
	return NewWithReducer(initial, Reduce, logger)
}

// NewWithReducer is New with a custom reducer.
func NewWithReducer(initial State, reducer Reducer, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		reducer: reducer,
		state:   observable.NewBehaviorSubject(initial),
		actions: observable.NewSubject[Action](),
		logger:  logger,
	}
}

// Dispatch reduces a and emits the new state before returning. Actions
// dispatched from inside a subscriber are queued and reduced, in order,
// once the emission in flight has been delivered.
func (s *Store) Dispatch(a Action) {
	if a == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, a)
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.dispatching = false
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		s.apply(next)
	}
}

func (s *Store) apply(a Action) {
	cur, _ := s.state.Value()
	next := s.reducer(cur, a)

	metrics.ActionsDispatched.WithLabelValues(a.Type()).Inc()
	s.logger.Debug("store: dispatch", "type", a.Type())

	s.state.Next(next)
	s.actions.Next(a)
}

// State returns the current state.
func (s *Store) State() State {
	v, _ := s.state.Value()
	return v
}

// Subscribe implements observable.Source.
func (s *Store) Subscribe(fn func(State)) observable.Subscription {
	return s.state.Subscribe(fn)
}

// Actions streams every dispatched action after it has been reduced.
func (s *Store) Actions() observable.Source[Action] {
	return s.actions
}
