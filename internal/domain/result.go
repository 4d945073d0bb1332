package domain

// Unit is the value carried by a Result that has nothing to return.
type Unit struct{}

// Result is the outcome of a business operation on an aggregate: either a
// success carrying a value, or a failure carrying a stable message.
//
// Result is for booking-policy outcomes only. Malformed input is rejected
// earlier, by the constructors of the value objects, with an error wrapping
// ErrValidation.
type Result[T any] struct {
	value T
	msg   string
	ok    bool
}

func Success[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

func Failure[T any](message string) Result[T] {
	return Result[T]{msg: message}
}

// OK is a successful Result with no value.
func OK() Result[Unit] { return Success(Unit{}) }

// Fail is a failed Result with no value.
func Fail(message string) Result[Unit] { return Failure[Unit](message) }

func (r Result[T]) IsSuccess() bool { return r.ok }
func (r Result[T]) IsFailure() bool { return !r.ok }

// Value returns the carried value; it is the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Error returns the failure message, or "" on success.
func (r Result[T]) Error() string { return r.msg }

// Err returns nil on success and a *RuleViolation otherwise.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	return &RuleViolation{Message: r.msg}
}
