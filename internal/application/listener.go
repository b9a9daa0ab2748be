package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"voice-form/internal/domain"
)

// UtteranceHandler receives each finalized utterance in arrival order.
type UtteranceHandler func(ctx context.Context, text string)

// Listener turns an AudioSource into a stream of recognized utterances.
// Calls to the handler never overlap.
type Listener struct {
	audio  AudioSource
	stt    SpeechToText
	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewListener(audio AudioSource, stt SpeechToText, logger *slog.Logger) *Listener {
	return &Listener{
		audio:  audio,
		stt:    stt,
		logger: logger,
	}
}

// Start begins capturing and invokes onUtterance for every recognized utterance
// until Stop is called, ctx is cancelled, or the source is exhausted.
func (l *Listener) Start(ctx context.Context, onUtterance UtteranceHandler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return nil
	}

	l.logger.Info("starting audio source", "source", l.audio.Name())
	if err := l.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	l.running = true

	go l.loop(loopCtx, onUtterance, l.done)
	return nil
}

// Stop ends listening. Utterances already handled are unaffected.
func (l *Listener) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	l.cancel()
	done := l.done
	l.running = false
	l.mu.Unlock()

	<-done
	if err := l.audio.Stop(); err != nil {
		return fmt.Errorf("stopping audio: %w", err)
	}
	return nil
}

// Done is closed once the capture loop exits.
func (l *Listener) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

func (l *Listener) loop(ctx context.Context, onUtterance UtteranceHandler, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}

		text, err := l.next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrSourceClosed) {
				l.logger.Info("listener stopped", "reason", err)
				return
			}
			l.logger.Error("capturing utterance", "error", err)
			continue
		}
		if text == "" {
			continue
		}

		onUtterance(ctx, text)
	}
}

func (l *Listener) next(ctx context.Context) (string, error) {
	data, err := l.audio.NextUtterance(ctx)
	if err != nil {
		return "", fmt.Errorf("getting audio: %w", err)
	}

	if len(data) == 0 {
		return "", nil
	}

	if text, isText := decodeText(data); isText {
		l.logger.Info("received text utterance", "text", text)
		return strings.TrimSpace(text), nil
	}

	l.logger.Info("received audio", "bytes", len(data))
	text, err := l.stt.Transcribe(ctx, data)
	if err != nil {
		return "", fmt.Errorf("transcribing: %w", err)
	}
	l.logger.Info("transcribed", "text", text)

	return cleanTranscript(text), nil
}

// cleanTranscript drops the sentence punctuation speech-to-text adds after a
// spoken command ("Next.", "Go to damages."). Dictation keeps its punctuation.
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	bare := strings.TrimSpace(strings.TrimRight(text, ".,!?;:"))
	if domain.Classify(bare).Action != domain.ActionDictate {
		return bare
	}
	return text
}

func decodeText(data []byte) (string, bool) {
	if len(data) > len(domain.TextUtterancePrefix) && string(data[:len(domain.TextUtterancePrefix)]) == domain.TextUtterancePrefix {
		return string(data[len(domain.TextUtterancePrefix):]), true
	}
	return "", false
}
