package detect

import (
	"context"
	"errors"
)

// Placeholder is a Detector used when no inference backend is configured.
type Placeholder struct{}

// Detect always fails with a configuration error.
func (Placeholder) Detect(context.Context, []byte, Options) (Result, error) {
	return Result{}, errors.New("detector not configured")
}

var _ Detector = Placeholder{}
