// Package cache memoizes transformed result pages. Every backend failure
// surfaces as a Result rather than an error so callers can degrade to a
// miss without losing the reason.
package cache

// Result is the outcome of a cache read: a hit with a value, a miss, or a
// failure carrying the backend error.
type Result[T any] struct {
	value T
	hit   bool
	err   error
}

func Hit[T any](v T) Result[T] {
	return Result[T]{value: v, hit: true}
}

func Miss[T any]() Result[T] {
	return Result[T]{}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{err: err}
}

func (r Result[T]) IsHit() bool {
	return r.hit
}

// IsMiss reports a clean miss. A failed read is neither a hit nor a miss.
func (r Result[T]) IsMiss() bool {
	return !r.hit && r.err == nil
}

func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() error {
	return r.err
}
