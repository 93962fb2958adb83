// Package transcript reconciles the overlapping, occasionally-duplicated
// event stream of a continuous speech recognizer into a monotonically
// growing, de-duplicated transcript. It serves both the live bounded
// caption and the full exportable session log.
package transcript

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"live-caption-service/internal/models"
)

// DefaultMaxCharacters bounds the displayable caption window.
const DefaultMaxCharacters = 300

// Ledger holds the finalized history of all past sessions, the bounded
// "current speech" window of the active session and its pending interim
// text. One Ledger is created per capture session and reused across
// recognizer restarts; Init marks the restart seam.
//
// Safe for concurrent use: the session adapter mutates it from
// recognition callbacks while the HTTP surfaces read the caption and
// the export log.
//
// The ledger never returns errors or panics on malformed recognizer
// input. Anomalies are absorbed and logged; crashing the capture loop
// over a recognizer quirk would be worse than a briefly odd caption.
type Ledger struct {
	mu sync.Mutex

	maxCharacters int

	finalizedHistory []models.RecognitionResult
	currentWindow    []models.RecognitionResult
	pendingInterim   []models.RecognitionResult

	// Highest results index ever marked final in the active session.
	// Monotonic within a session, reset to -1 by Init.
	highestFinalizedIndex int
}

// NewLedger creates an empty ledger. A non-positive maxCharacters selects
// DefaultMaxCharacters.
func NewLedger(maxCharacters int) *Ledger {
	if maxCharacters <= 0 {
		maxCharacters = DefaultMaxCharacters
	}
	return &Ledger{
		maxCharacters:         maxCharacters,
		highestFinalizedIndex: -1,
	}
}

// Init checkpoints the active session: the current window is folded into
// finalized history, interim text is discarded and the finalization
// counter reset. Called once before each recognition session starts and
// once when a session ends, so no text is lost or duplicated across the
// restart seam. Idempotent when already empty.
func (l *Ledger) Init() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.currentWindow) > 0 {
		l.finalizedHistory = append(l.finalizedHistory, l.currentWindow...)
		l.currentWindow = nil
	}
	l.pendingInterim = nil
	l.highestFinalizedIndex = -1
}

// Update applies one recognition event. It returns true when the event
// produced a material change to the displayable transcript, so callers
// can skip redundant redraws.
func (l *Ledger) Update(event models.RecognitionEvent) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.ResultIndex <= l.highestFinalizedIndex {
		// Recognizers occasionally re-report indexes the ledger already
		// considers finalized. Process the event anyway; the prefix
		// dedup below absorbs repeats.
		log.Warn().
			Int("resultIndex", event.ResultIndex).
			Int("highestFinalizedIndex", l.highestFinalizedIndex).
			Msg("recognition event re-reports a finalized index")
	}

	start := l.highestFinalizedIndex
	if event.ResultIndex > start {
		start = event.ResultIndex
	}
	if start < 0 {
		start = 0
	}

	type item struct {
		text    string
		isFinal bool
	}
	var updated []item
	for i := start; i < len(event.Results); i++ {
		r := event.Results[i]
		if r.IsFinal && i > l.highestFinalizedIndex {
			l.highestFinalizedIndex = i
		}
		// Some recognizers emit spurious empty-string finalizations.
		if text := r.TopTranscript(); text != "" {
			updated = append(updated, item{text: text, isFinal: r.IsFinal})
		}
	}
	if len(updated) == 0 {
		return false
	}

	// Any update supersedes interim text wholesale.
	l.pendingInterim = nil
	for _, it := range updated {
		if it.isFinal {
			l.appendFinal(it.text)
			l.trimCurrentWindow()
		} else {
			l.pendingInterim = append(l.pendingInterim, models.InterimResult(it.text))
		}
	}
	return true
}

// appendFinal absorbs the recognizer behaviour of resending a longer
// version of the last utterance after a session restart: when the last
// window entry is a string prefix of the new transcript it is replaced
// rather than appended.
func (l *Ledger) appendFinal(text string) {
	result := models.FinalResult(text)
	if n := len(l.currentWindow); n > 0 {
		if strings.HasPrefix(text, l.currentWindow[n-1].TopTranscript()) {
			l.currentWindow[n-1] = result
			return
		}
	}
	l.currentWindow = append(l.currentWindow, result)
}

// trimCurrentWindow walks the window from the newest entry backward and,
// once the accumulated character count exceeds the budget, drops every
// entry from the oldest through the boundary entry. Eviction is always
// in whole-entry units; the newest content is preserved verbatim.
func (l *Ledger) trimCurrentWindow() {
	total := 0
	for i := len(l.currentWindow) - 1; i >= 0; i-- {
		total += utf8.RuneCountInString(l.currentWindow[i].TopTranscript())
		if total > l.maxCharacters {
			// Copy survivors to a fresh slice so evicted entries do not
			// pin the old backing array for the session lifetime.
			keep := l.currentWindow[i+1:]
			fresh := make([]models.RecognitionResult, len(keep))
			copy(fresh, keep)
			l.currentWindow = fresh
			return
		}
	}
}

// CurrentSpeech returns the live caption: each window entry normalized
// to end with terminal punctuation, followed by the provisional interim
// text unmodified.
func (l *Ledger) CurrentSpeech() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	for _, r := range l.currentWindow {
		b.WriteString(NormalizeTerminal(r.TopTranscript()))
	}
	for _, r := range l.pendingInterim {
		b.WriteString(r.TopTranscript())
	}
	return b.String()
}

// WholeLog returns the exportable transcript: one punctuation-normalized
// line (with trailing line break) per entry across finalized history,
// the current window and pending interim text, in chronological order.
// Interim text is included so an export taken mid-sentence is not lossy.
func (l *Ledger) WholeLog() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]string, 0, len(l.finalizedHistory)+len(l.currentWindow)+len(l.pendingInterim))
	for _, seq := range [][]models.RecognitionResult{l.finalizedHistory, l.currentWindow, l.pendingInterim} {
		for _, r := range seq {
			lines = append(lines, NormalizeTerminal(r.TopTranscript())+"\n")
		}
	}
	return lines
}

// HistoryLines returns the punctuation-normalized lines already folded
// into finalized history. Unlike the current window these never change
// again, which makes them safe to persist incrementally.
func (l *Ledger) HistoryLines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	lines := make([]string, 0, len(l.finalizedHistory))
	for _, r := range l.finalizedHistory {
		lines = append(lines, NormalizeTerminal(r.TopTranscript()))
	}
	return lines
}

// HighestFinalizedIndex reports the finalization counter of the active
// session, -1 when nothing has been finalized since the last Init.
func (l *Ledger) HighestFinalizedIndex() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.highestFinalizedIndex
}
