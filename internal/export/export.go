// Package export serializes the accumulated transcript for download.
package export

import (
	"fmt"
	"io"
	"time"
)

// WriteTranscript writes the accumulated transcript lines verbatim and
// returns the number of lines written.
func WriteTranscript(w io.Writer, lines []string) (int, error) {
	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return 0, err
		}
	}
	return len(lines), nil
}

// Filename returns a timestamped download name for a transcript export.
func Filename(now time.Time) string {
	return fmt.Sprintf("transcript-%s.txt", now.Format("20060102-150405"))
}
