// Package degrade implements the "attempt, then fall back" pattern used for
// best-effort steps such as location enrichment and notification delivery.
package degrade

// Result carries either the attempted value or the fallback that replaced it.
type Result[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

// Attempt runs fn. If fn fails, fallback receives the error and supplies the value.
// A panic inside fn is treated as a failure as well, so the caller never unwinds.
func Attempt[T any](fn func() (T, error), fallback func(error) T) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			err := &PanicError{Value: r}
			res = Result[T]{Value: fallback(err), Degraded: true, Err: err}
		}
	}()

	v, err := fn()
	if err != nil {
		return Result[T]{Value: fallback(err), Degraded: true, Err: err}
	}
	return Result[T]{Value: v}
}

// PanicError wraps a recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "panic during attempt"
}
