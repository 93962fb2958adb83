package recognizer

import (
	"context"
	"sync"
	"time"

	"live-caption-service/internal/models"
)

// SimulatedSession is one scripted recognition session: the sequence of
// result snapshots a real engine would emit between session start and
// its natural end.
type SimulatedSession struct {
	Events []models.RecognitionEvent
}

// DefaultSessions exercise the recognizer quirks the ledger must
// absorb: progressive interims, a re-reported index carrying a longer
// resend of the same utterance, and a spurious empty finalization.
var DefaultSessions = []SimulatedSession{
	{Events: []models.RecognitionEvent{
		{ResultIndex: 0, Results: []models.RecognitionResult{models.InterimResult("こんにち")}},
		{ResultIndex: 0, Results: []models.RecognitionResult{models.InterimResult("こんにちは")}},
		{ResultIndex: 0, Results: []models.RecognitionResult{models.FinalResult("こんにちは")}},
		// Same index again, longer text.
		{ResultIndex: 0, Results: []models.RecognitionResult{models.FinalResult("こんにちはみなさん")}},
	}},
	{Events: []models.RecognitionEvent{
		{ResultIndex: 0, Results: []models.RecognitionResult{models.InterimResult("今日は")}},
		{ResultIndex: 0, Results: []models.RecognitionResult{models.FinalResult("")}},
		{ResultIndex: 0, Results: []models.RecognitionResult{models.FinalResult("今日はいい天気ですね")}},
	}},
	{Events: []models.RecognitionEvent{
		{ResultIndex: 0, Results: []models.RecognitionResult{models.InterimResult("thank")}},
		{ResultIndex: 0, Results: []models.RecognitionResult{models.InterimResult("thank you")}},
		{ResultIndex: 0, Results: []models.RecognitionResult{models.FinalResult("thank you very much")}},
		{ResultIndex: 1, Results: []models.RecognitionResult{
			models.FinalResult("thank you very much"),
			models.InterimResult("see"),
		}},
		{ResultIndex: 1, Results: []models.RecognitionResult{
			models.FinalResult("thank you very much"),
			models.FinalResult("see you tomorrow"),
		}},
	}},
}

// Mock is a scripted recognizer for local runs and tests. Each Start
// delivers the next scripted session asynchronously and serially, then
// signals a natural session end so the caller's restart policy kicks in.
type Mock struct {
	mu       sync.Mutex
	sessions []SimulatedSession
	next     int
	delay    time.Duration
	closed   bool
}

// NewMock creates a mock recognizer cycling through DefaultSessions
// with a realistic inter-event delay.
func NewMock() *Mock {
	return NewMockScripted(DefaultSessions, 300*time.Millisecond)
}

// NewMockScripted creates a mock recognizer with a custom script and
// delivery delay. A zero delay delivers as fast as possible.
func NewMockScripted(sessions []SimulatedSession, delay time.Duration) *Mock {
	return &Mock{sessions: sessions, delay: delay}
}

// Start delivers one scripted session to the listener in a background
// goroutine. Signals within the session are delivered serially.
func (m *Mock) Start(ctx context.Context, l Listener) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrUnavailable
	}
	if len(m.sessions) == 0 {
		m.mu.Unlock()
		return ErrUnavailable
	}
	session := m.sessions[m.next%len(m.sessions)]
	m.next++
	m.mu.Unlock()

	go m.deliver(ctx, session, l)
	return nil
}

func (m *Mock) deliver(ctx context.Context, session SimulatedSession, l Listener) {
	l.OnSessionStart()
	l.OnAudioStart()
	l.OnSoundStart()
	l.OnSpeechStart()

	for _, event := range session.Events {
		if !m.pause(ctx) {
			break
		}
		l.OnResult(event)
	}

	l.OnSpeechEnd()
	l.OnSoundEnd()
	l.OnAudioEnd()
	l.OnSessionEnd()
}

// pause waits the configured delay; false means delivery should stop.
func (m *Mock) pause(ctx context.Context) bool {
	m.mu.Lock()
	closed := m.closed
	delay := m.delay
	m.mu.Unlock()
	if closed {
		return false
	}
	if delay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

// Close stops any in-flight scripted delivery and rejects further
// Start calls.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
