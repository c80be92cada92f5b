package insight

import "sync"

// Lazy holds a value that is built on first use and then shared for the rest
// of the process. A failed build is remembered and returned to every caller.
type Lazy[T any] struct {
	once  sync.Once
	build func() (T, error)
	val   T
	err   error
}

func NewLazy[T any](build func() (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

// Get builds the value if needed and returns it.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.build()
	})
	return l.val, l.err
}
