// Package recognizer defines the boundary with the opaque streaming
// speech-recognition capability and its providers.
package recognizer

import (
	"context"
	"errors"
	"fmt"

	"live-caption-service/internal/config"
	"live-caption-service/internal/models"
)

// Error codes reported via Listener.OnError, mirroring the web-speech
// taxonomy the caption pipeline was built against.
const (
	CodeNoSpeech     = "no-speech"
	CodeAborted      = "aborted"
	CodeNetwork      = "network"
	CodeAudioCapture = "audio-capture"
)

// ErrUnavailable reports that no speech recognition capability exists
// for this platform or configuration.
var ErrUnavailable = errors.New("no speech recognition capability available")

// Listener receives the lifecycle and result signals of recognition
// sessions. Signals are delivered serially, never concurrently.
// Implementations must tolerate duplicated and re-reported result
// snapshots.
type Listener interface {
	OnSessionStart()
	OnAudioStart()
	OnSoundStart()
	OnSpeechStart()
	OnSpeechEnd()
	OnSoundEnd()
	OnAudioEnd()
	OnResult(event models.RecognitionEvent)
	OnSessionEnd()
	OnError(code, message string)
	OnNoMatch()
}

// Recognizer is an opaque continuous recognition capability. Start
// begins one session; signals are delivered to the listener until the
// session ends. Sessions self-terminate on silence; callers restart as
// needed.
type Recognizer interface {
	Start(ctx context.Context, l Listener) error
	Close() error
}

// New returns the recognizer for the configured provider. An unknown or
// absent provider yields ErrUnavailable so the session adapter can
// disable itself instead of crashing the capture loop.
func New(ctx context.Context, cfg config.RecognizerConfig) (Recognizer, error) {
	switch cfg.Provider {
	case "mock":
		return NewMock(), nil
	case "google":
		return NewGoogle(ctx, cfg)
	case "", "none":
		return nil, ErrUnavailable
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrUnavailable, cfg.Provider)
	}
}
