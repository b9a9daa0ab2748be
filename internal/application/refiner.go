package application

import (
	"context"
	"errors"
)

// ErrRefinerDisabled is returned by NoopRefiner.
var ErrRefinerDisabled = errors.New("text refinement not configured")

// Refiner polishes a fully rendered form into its final wording.
type Refiner interface {
	Refine(ctx context.Context, text string) (string, error)
}

type NoopRefiner struct{}

func (n *NoopRefiner) Refine(_ context.Context, _ string) (string, error) {
	return "", ErrRefinerDisabled
}
