package insight

import (
	"context"
	"errors"
	"fmt"
)

// ErrPanic wraps a panic raised by an extraction backend.
var ErrPanic = errors.New("insight extraction panicked")

// SafeEnrich calls src.Enrich, converting a panic into an error wrapping
// ErrPanic.
func SafeEnrich(ctx context.Context, src Source, path string, kind Kind) (in *Insight, err error) {
	defer func() {
		if r := recover(); r != nil {
			in, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return src.Enrich(ctx, path, kind)
}
