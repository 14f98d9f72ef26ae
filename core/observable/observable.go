// Package observable provides the push-based streams the explore core is
// wired with: a multicast Subject with last-value replay, and per-subscriber
// projection operators on top of it.
//
// Delivery is synchronous on the caller's goroutine. A value pushed while
// an emission is still in flight is queued and delivered after it, so
// subscribers always observe values in the order they were pushed.
// Unsubscribing stops delivery immediately, including for values already
// queued.
package observable

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription is a handle on an active subscription.
type Subscription interface {
	ID() string
	Unsubscribe()
	Closed() bool
}

// Source is anything that can be subscribed to.
type Source[T any] interface {
	Subscribe(fn func(T)) Subscription
}

// SourceFunc adapts a plain function to Source.
type SourceFunc[T any] func(fn func(T)) Subscription

func (f SourceFunc[T]) Subscribe(fn func(T)) Subscription { return f(fn) }

type subscription struct {
	id      string
	closed  atomic.Bool
	onClose func()
}

func newSubscription(onClose func()) *subscription {
	return &subscription{id: uuid.NewString(), onClose: onClose}
}

func (s *subscription) ID() string   { return s.id }
func (s *subscription) Closed() bool { return s.closed.Load() }

func (s *subscription) Unsubscribe() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if s.onClose != nil {
		s.onClose()
	}
}

type observer[T any] struct {
	sub   *subscription
	fn    func(T)
	start uint64
}

type pending[T any] struct {
	seq   uint64
	value T
}

// Subject multicasts pushed values to every subscriber. A subject created
// with NewBehaviorSubject, or one that has received at least one value,
// replays its latest value to new subscribers.
type Subject[T any] struct {
	mu        sync.Mutex
	observers []*observer[T]
	value     T
	hasValue  bool
	seq       uint64
	queue     []pending[T]
	emitting  bool
}

// NewSubject returns a subject with no initial value.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// NewBehaviorSubject returns a subject that starts with initial.
func NewBehaviorSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial, hasValue: true}
}

// Value returns the latest pushed value.
func (s *Subject[T]) Value() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.hasValue
}

// Next pushes v to all current subscribers.
func (s *Subject[T]) Next(v T) {
	s.mu.Lock()
	s.seq++
	s.value = v
	s.hasValue = true
	s.queue = append(s.queue, pending[T]{seq: s.seq, value: v})
	if s.emitting {
		s.mu.Unlock()
		return
	}
	s.emitting = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.emitting = false
			s.mu.Unlock()
			return
		}
		item := s.queue[0]
		s.queue = s.queue[1:]
		observers := append([]*observer[T](nil), s.observers...)
		s.mu.Unlock()

		for _, o := range observers {
			if o.sub.Closed() || item.seq <= o.start {
				continue
			}
			o.fn(item.value)
		}
	}
}

// Subscribe registers fn. If the subject holds a value, fn receives it
// before Subscribe returns.
func (s *Subject[T]) Subscribe(fn func(T)) Subscription {
	o := &observer[T]{fn: fn}
	o.sub = newSubscription(func() { s.remove(o) })

	s.mu.Lock()
	o.start = s.seq
	s.observers = append(s.observers, o)
	value, replay := s.value, s.hasValue
	s.mu.Unlock()

	if replay {
		fn(value)
	}
	return o.sub
}

// Observers returns the number of live subscriptions.
func (s *Subject[T]) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

func (s *Subject[T]) remove(o *observer[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.observers {
		if cur == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}
