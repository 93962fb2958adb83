package caption

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"live-caption-service/internal/models"
	"live-caption-service/internal/observability/logging"
	"live-caption-service/internal/observability/metrics"
	"live-caption-service/internal/service/recognizer"
	"live-caption-service/internal/transcript"
)

// Owner receives the adapter's outbound signals.
type Owner interface {
	// OnUpdated delivers the current displayable caption on every
	// material transcript change.
	OnUpdated(caption string)

	// OnCritical is invoked exactly once, when the platform is judged
	// incapable of speech recognition.
	OnCritical(message string)

	// OnLog receives free-text lifecycle and diagnostic messages.
	// Content is non-contractual.
	OnLog(message string)
}

// RecognizerFactory acquires the external recognition capability.
type RecognizerFactory func(ctx context.Context) (recognizer.Recognizer, error)

// Adapter owns the lifecycle of the opaque recognizer, translates its
// signals into session events, applies the restart policy and drives
// the transcript ledger. It implements recognizer.Listener.
//
// Sessions self-terminate after silence on most engines, so every end
// is treated as transient and answered with a restart until the
// adapter is disabled. Disabling is one-way: it happens when no
// capability exists or when an error arrives before any confirmed
// speech processing.
type Adapter struct {
	ledger  *transcript.Ledger
	owner   Owner
	metrics *metrics.Metrics
	factory RecognizerFactory
	log     zerolog.Logger

	lifecycle *Lifecycle

	mu          sync.Mutex
	ctx         context.Context
	rec         recognizer.Recognizer
	initialized bool
	available   bool
	// speechSeen flips once the engine confirms real audio processing.
	// Some platforms accept a session start but never process audio;
	// an early error without this flag set is the only reliable signal
	// of that.
	speechSeen bool
}

// NewAdapter creates a session adapter driving the given ledger and
// reporting to the given owner. A nil metrics instance selects the
// global default.
func NewAdapter(ledger *transcript.Ledger, owner Owner, m *metrics.Metrics, factory RecognizerFactory) *Adapter {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Adapter{
		ledger:    ledger,
		owner:     owner,
		metrics:   m,
		factory:   factory,
		log:       logging.WithComponent("session-adapter"),
		lifecycle: NewLifecycle(),
	}
}

// Init acquires the recognition capability. Idempotent: a second call
// is a no-op returning the previously computed availability. When the
// platform exposes no capability the adapter disables itself and
// reports the fatal condition.
func (a *Adapter) Init(ctx context.Context) bool {
	a.mu.Lock()
	if a.initialized {
		available := a.available
		a.mu.Unlock()
		return available
	}
	a.initialized = true
	a.ctx = ctx
	a.mu.Unlock()

	rec, err := a.factory(ctx)
	if err != nil {
		a.logf("capability acquisition failed: %v", err)
		a.fatal(recognizer.CodeAudioCapture, err.Error())
		return false
	}

	a.mu.Lock()
	a.rec = rec
	a.available = true
	a.mu.Unlock()

	_ = a.lifecycle.MarkReady()
	a.logf("recognition capability acquired")
	return true
}

// Start checkpoints the ledger and begins a recognition session.
// Returns false when the adapter is unavailable, disabled, already
// listening or the session could not be started.
func (a *Adapter) Start() bool {
	a.mu.Lock()
	rec := a.rec
	ctx := a.ctx
	available := a.available
	a.mu.Unlock()

	if !available || rec == nil || !a.lifecycle.CanStart() {
		return false
	}
	if err := a.lifecycle.MarkListening(); err != nil {
		return false
	}

	a.ledger.Init()
	if err := rec.Start(ctx, a); err != nil {
		a.lifecycle.MarkEnded()
		a.log.Warn().Err(err).Msg("session start failed")
		a.logf("session start failed: %v", err)
		return false
	}
	return true
}

// State reports the adapter's lifecycle state.
func (a *Adapter) State() State {
	return a.lifecycle.State()
}

// Close releases the recognition capability. Further restarts are not
// attempted.
func (a *Adapter) Close() error {
	a.lifecycle.Disable()
	a.mu.Lock()
	rec := a.rec
	a.mu.Unlock()
	if rec == nil {
		return nil
	}
	return rec.Close()
}

// --- recognizer.Listener implementation ---

// OnSessionStart marks a session becoming active.
func (a *Adapter) OnSessionStart() {
	a.metrics.RecordSessionStarted()
	a.logf("session started")
}

// OnAudioStart is logged only.
func (a *Adapter) OnAudioStart() { a.logf("audio capture started") }

// OnSoundStart is logged only.
func (a *Adapter) OnSoundStart() { a.logf("sound detected") }

// OnSpeechStart marks confirmed speech processing.
func (a *Adapter) OnSpeechStart() {
	a.mu.Lock()
	a.speechSeen = true
	a.mu.Unlock()
	a.logf("speech detected")
}

// OnSpeechEnd is logged only.
func (a *Adapter) OnSpeechEnd() { a.logf("speech ended") }

// OnSoundEnd is logged only.
func (a *Adapter) OnSoundEnd() { a.logf("sound ended") }

// OnAudioEnd is logged only.
func (a *Adapter) OnAudioEnd() { a.logf("audio capture ended") }

// OnResult forwards the event to the ledger and emits the caption to
// the owner when the transcript materially changed.
func (a *Adapter) OnResult(event models.RecognitionEvent) {
	if event.ResultIndex <= a.ledger.HighestFinalizedIndex() {
		a.metrics.RecordIndexAnomaly()
	}

	changed := a.ledger.Update(event)
	a.metrics.RecordEventProcessed(changed)
	if !changed {
		return
	}

	caption := a.ledger.CurrentSpeech()
	a.metrics.RecordCaptionEmitted(utf8.RuneCountInString(caption))
	a.owner.OnUpdated(caption)
}

// OnSessionEnd checkpoints the ledger and restarts the recognizer
// unless the adapter was disabled.
func (a *Adapter) OnSessionEnd() {
	a.metrics.RecordSessionEnded()
	a.logf("session ended")

	a.ledger.Init()
	a.lifecycle.MarkEnded()
	if a.lifecycle.IsDisabled() {
		return
	}
	a.restart()
}

// OnError applies the fatal/recoverable taxonomy: an error before any
// confirmed speech processing, other than no-speech or aborted, means
// the platform cannot recognize speech at all. Everything else is
// swallowed; the session end that follows drives the restart.
func (a *Adapter) OnError(code, message string) {
	a.metrics.RecordRecognitionError(code)
	a.logf("recognition error: %s (%s)", message, code)

	a.mu.Lock()
	speechSeen := a.speechSeen
	a.mu.Unlock()

	if speechSeen || code == recognizer.CodeNoSpeech || code == recognizer.CodeAborted {
		return
	}
	a.fatal(code, message)
}

// OnNoMatch is logged only; the subsequent session end drives restart.
func (a *Adapter) OnNoMatch() { a.logf("no recognition match") }

// restart re-invokes the capability after a transient session end.
func (a *Adapter) restart() {
	a.mu.Lock()
	rec := a.rec
	ctx := a.ctx
	a.mu.Unlock()
	if rec == nil {
		return
	}
	if err := a.lifecycle.MarkListening(); err != nil {
		return
	}
	if err := rec.Start(ctx, a); err != nil {
		a.lifecycle.MarkEnded()
		a.log.Warn().Err(err).Msg("session restart failed")
		a.logf("session restart failed: %v", err)
		return
	}
	a.metrics.RecordRestart()
	a.logf("session restarted")
}

// fatal performs the one-way disabled transition and the one-time
// critical notification.
func (a *Adapter) fatal(code, message string) {
	if !a.lifecycle.Disable() {
		return
	}
	a.metrics.RecordFatal()
	a.log.Error().
		Str("code", code).
		Str("message", message).
		Msg("recognition disabled: platform judged incapable")
	a.owner.OnCritical(fmt.Sprintf("speech recognition unavailable: %s (%s)", message, code))
}

func (a *Adapter) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.log.Debug().Msg(msg)
	a.owner.OnLog(msg)
}
