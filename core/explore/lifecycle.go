package explore

import (
	"log/slog"

	"github.com/jask/jaskmap/core/observable"
)

// SubscriptionSet holds subscriptions until they are released together.
type SubscriptionSet struct {
	subs   []observable.Subscription
	logger *slog.Logger
}

// Add retains sub. A nil subscription is ignored.
func (s *SubscriptionSet) Add(sub observable.Subscription) {
	if sub == nil {
		return
	}
	s.subs = append(s.subs, sub)
}

// Len returns the number of retained subscriptions.
func (s *SubscriptionSet) Len() int { return len(s.subs) }

// ReleaseAll unsubscribes every retained subscription once and forgets
// them. It returns the number released.
func (s *SubscriptionSet) ReleaseAll() int {
	subs := s.subs
	s.subs = nil
	for _, sub := range subs {
		sub.Unsubscribe()
		if s.logger != nil {
			s.logger.Debug("explore: subscription released", "id", sub.ID())
		}
	}
	return len(subs)
}
