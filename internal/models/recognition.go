// Package models defines the recognition event shapes consumed by the
// transcript ledger and the outbound caption event payloads.
package models

// RecognitionAlternative is one ranked hypothesis for a recognized span.
// Only the top alternative is consumed downstream.
type RecognitionAlternative struct {
	Transcript string `json:"transcript"`
}

// RecognitionResult is one recognized segment, tagged final or interim.
// Immutable once received from the recognizer.
type RecognitionResult struct {
	IsFinal      bool
	Alternatives []RecognitionAlternative
}

// TopTranscript returns the transcript of the highest-ranked alternative,
// or "" when the recognizer emitted no alternatives for this segment.
func (r RecognitionResult) TopTranscript() string {
	if len(r.Alternatives) == 0 {
		return ""
	}
	return r.Alternatives[0].Transcript
}

// RecognitionEvent is the snapshot a recognizer emits on every update.
// Results is a growing sequence indexed from 0 for the lifetime of one
// recognition session; ResultIndex marks the lowest index changed since
// the previous event.
type RecognitionEvent struct {
	ResultIndex int
	Results     []RecognitionResult
}

// FinalResult builds a final result with a single alternative.
func FinalResult(transcript string) RecognitionResult {
	return RecognitionResult{
		IsFinal:      true,
		Alternatives: []RecognitionAlternative{{Transcript: transcript}},
	}
}

// InterimResult builds a non-final result with a single alternative.
func InterimResult(transcript string) RecognitionResult {
	return RecognitionResult{
		Alternatives: []RecognitionAlternative{{Transcript: transcript}},
	}
}
