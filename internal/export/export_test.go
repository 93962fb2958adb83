package export

import (
	"strings"
	"testing"
	"time"
)

func TestWriteTranscript(t *testing.T) {
	var sb strings.Builder
	lines, err := WriteTranscript(&sb, []string{"こんにちは。\n", "げんきですか。\n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines != 2 {
		t.Errorf("lines = %d, want 2", lines)
	}
	if got := sb.String(); got != "こんにちは。\nげんきですか。\n" {
		t.Errorf("written = %q, content must be verbatim", got)
	}
}

func TestWriteTranscriptEmpty(t *testing.T) {
	var sb strings.Builder
	lines, err := WriteTranscript(&sb, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines != 0 {
		t.Errorf("lines = %d, want 0", lines)
	}
	if sb.Len() != 0 {
		t.Errorf("wrote %q for empty transcript", sb.String())
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := Filename(ts); got != "transcript-20250314-092653.txt" {
		t.Errorf("Filename() = %q", got)
	}
}
