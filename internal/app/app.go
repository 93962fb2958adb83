// Package app wires the service components into one explicit
// application context. All shared state lives here rather than in
// package globals, so tests can build isolated instances.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"live-caption-service/internal/config"
	"live-caption-service/internal/display"
	"live-caption-service/internal/events"
	"live-caption-service/internal/models"
	"live-caption-service/internal/observability/logging"
	"live-caption-service/internal/observability/metrics"
	"live-caption-service/internal/service/caption"
	"live-caption-service/internal/service/recognizer"
	"live-caption-service/internal/sessionlog"
	"live-caption-service/internal/transcript"
)

// Application holds process-wide state for the service. It implements
// caption.Owner, receiving the adapter's caption, critical and log
// signals and fanning them out to the display view, the Kafka topics
// and the durable session log.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Ledger    *transcript.Ledger
	Adapter   *caption.Adapter
	View      *display.View
	Publisher *events.Publisher
	Store     *sessionlog.Store
	Metrics   *metrics.Metrics

	SessionID string

	ctx context.Context

	pmu sync.Mutex
	// Count of history lines already written to the durable store.
	// History is append-only, so persisting the tail is safe.
	persisted int
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Config) *Application {
	logging.Init(logging.Config{Level: cfg.Observability.LogLevel, Format: "json"})

	a := &Application{
		Cfg:       cfg,
		Logger:    logging.WithComponent("application"),
		Metrics:   metrics.DefaultMetrics,
		SessionID: fmt.Sprintf("%s-%d", cfg.Service.Principal, time.Now().UTC().Unix()),
	}

	a.Ledger = transcript.NewLedger(cfg.Caption.MaxCharacters)
	a.View = display.NewView(cfg.Caption.ClearAfter, a.Metrics, a.broadcastCaption)
	a.Publisher = events.New(&events.Config{
		Enabled:      cfg.Kafka.Enabled,
		Brokers:      cfg.Kafka.Brokers,
		TopicCaption: cfg.Kafka.TopicCaption,
		TopicLog:     cfg.Kafka.TopicLog,
		Principal:    cfg.Kafka.Principal,
	})
	a.Adapter = caption.NewAdapter(a.Ledger, a, a.Metrics, func(ctx context.Context) (recognizer.Recognizer, error) {
		return recognizer.New(ctx, cfg.Recognizer)
	})

	a.Logger.Info().
		Str("sessionId", a.SessionID).
		Str("recognizerProvider", cfg.Recognizer.Provider).
		Msg("Live caption application created")
	return a
}

// Start opens the durable session log, acquires the recognition
// capability and begins the first recognition session.
func (a *Application) Start(ctx context.Context) error {
	a.StartupTime = time.Now().UTC()
	a.ctx = ctx

	store, err := sessionlog.Open(ctx, sessionlog.Config{
		Path:          a.Cfg.SessionLog.Path,
		RetentionMode: a.Cfg.SessionLog.RetentionMode,
	}, logging.WithComponent("session-log"))
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	a.Store = store
	if err := a.Store.BeginSession(ctx, a.SessionID, a.Cfg.Service.Principal); err != nil {
		return fmt.Errorf("begin session: %w", err)
	}

	if !a.Adapter.Init(ctx) {
		// Unavailable is survivable: HTTP surfaces keep serving the
		// empty transcript and the fatal notice was already published.
		a.Logger.Warn().Msg("Recognition capability unavailable, captions disabled")
		return nil
	}
	if !a.Adapter.Start() {
		a.Logger.Warn().Msg("Initial recognition session did not start")
	}
	return nil
}

// Shutdown checkpoints the transcript, flushes the remaining finalized
// lines and releases all resources.
func (a *Application) Shutdown() {
	a.Logger.Info().Msg("Live caption service shutting down")

	if err := a.Adapter.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Recognizer close failed")
	}
	a.View.Stop()

	// Fold the last window into history so it reaches the store.
	a.Ledger.Init()
	a.persistFinalized()

	if err := a.Publisher.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Publisher close failed")
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Session log close failed")
		}
	}
}

// --- caption.Owner implementation ---

// OnUpdated pushes a fresh caption to the display view and persists any
// newly archived transcript lines.
func (a *Application) OnUpdated(caption string) {
	a.View.Set(caption)
	a.persistFinalized()
}

// OnCritical publishes the one-time fatal notice.
func (a *Application) OnCritical(message string) {
	a.Logger.Error().Str("message", message).Msg("Recognition fatally unavailable")
	notice := models.FatalNotice{
		EventType: "recognition.fatal",
		SessionID: a.SessionID,
		Message:   message,
		Timestamp: time.Now().UTC().UnixMilli(),
	}
	if err := a.Publisher.PublishLog(a.publishCtx(), a.SessionID, notice); err != nil {
		a.Logger.Warn().Err(err).Msg("Fatal notice publish failed")
	}
}

// OnLog forwards adapter diagnostics to the log topic at debug level.
func (a *Application) OnLog(message string) {
	entry := models.SessionLogEntry{
		EventType: "session.log",
		SessionID: a.SessionID,
		Message:   message,
		Timestamp: time.Now().UTC().UnixMilli(),
	}
	if err := a.Publisher.PublishLog(a.publishCtx(), a.SessionID, entry); err != nil {
		a.Logger.Warn().Err(err).Msg("Session log publish failed")
	}
}

// broadcastCaption is the display view change hook. It fires for both
// updates and inactivity clears, so downstream consumers always see the
// caption exactly as displayed.
func (a *Application) broadcastCaption(caption string) {
	update := models.CaptionUpdate{
		EventType: "caption.updated",
		SessionID: a.SessionID,
		Caption:   caption,
		Timestamp: time.Now().UTC().UnixMilli(),
	}
	if err := a.Publisher.PublishCaption(a.publishCtx(), a.SessionID, update); err != nil {
		a.Logger.Warn().Err(err).Msg("Caption publish failed")
	}
}

// persistFinalized appends history lines the store has not seen yet.
func (a *Application) persistFinalized() {
	if a.Store == nil {
		return
	}
	a.pmu.Lock()
	defer a.pmu.Unlock()
	lines := a.Ledger.HistoryLines()
	for ; a.persisted < len(lines); a.persisted++ {
		if err := a.Store.AppendLine(a.publishCtx(), a.SessionID, lines[a.persisted]); err != nil {
			a.Logger.Warn().Err(err).Msg("Session log append failed")
			return
		}
	}
}

func (a *Application) publishCtx() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}
