package observable

// Select projects every upstream value and emits only when the projection
// differs from the one last delivered to the same subscriber.
func Select[S any, T comparable](src Source[S], project func(S) T) Source[T] {
	return SelectFunc(src, project, func(a, b T) bool { return a == b })
}

// SelectFunc is Select with a caller-supplied equality.
func SelectFunc[S, T any](src Source[S], project func(S) T, equal func(a, b T) bool) Source[T] {
	return SourceFunc[T](func(fn func(T)) Subscription {
		var (
			last   T
			primed bool
		)
		return src.Subscribe(func(v S) {
			next := project(v)
			if primed && equal(last, next) {
				return
			}
			last, primed = next, true
			fn(next)
		})
	})
}

// Map projects every upstream value without suppressing repeats.
func Map[S, T any](src Source[S], project func(S) T) Source[T] {
	return SourceFunc[T](func(fn func(T)) Subscription {
		return src.Subscribe(func(v S) { fn(project(v)) })
	})
}

// Filter forwards only the values keep accepts.
func Filter[T any](src Source[T], keep func(T) bool) Source[T] {
	return SourceFunc[T](func(fn func(T)) Subscription {
		return src.Subscribe(func(v T) {
			if keep(v) {
				fn(v)
			}
		})
	})
}
