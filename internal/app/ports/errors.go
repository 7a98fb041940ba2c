package ports

import "errors"

var (
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConcurrentUpdate is returned when an optimistic version check fails.
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// ErrLeaseLost is returned when a queue lease expired and was taken by
// another consumer before the holder acknowledged it.
var ErrLeaseLost = errors.New("queue lease lost")
