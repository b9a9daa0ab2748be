package application

import (
	"context"
	"errors"
)

// ErrSourceClosed is returned by an AudioSource that will deliver nothing more.
var ErrSourceClosed = errors.New("audio source closed")

// AudioSource delivers one captured utterance per call, either raw audio or
// recognized text marked with domain.TextUtterancePrefix.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextUtterance(ctx context.Context) ([]byte, error)
	Name() string
}
