package recognizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"live-caption-service/internal/config"
	"live-caption-service/internal/models"
)

// 100ms of LINEAR16 mono audio at 16kHz.
const audioChunkBytes = 3200

// Google implements Recognizer on Google Cloud Speech-to-Text
// streaming recognition. Audio is pumped from the configured PCM
// source; responses are rebuilt into growing result snapshots for the
// transcript ledger.
//
// Requires GOOGLE_APPLICATION_CREDENTIALS to be set.
type Google struct {
	client *speech.Client
	cfg    config.RecognizerConfig
	audio  io.Reader

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// NewGoogle creates a Google streaming recognizer reading PCM audio
// from cfg.AudioPath ("-" for stdin).
func NewGoogle(ctx context.Context, cfg config.RecognizerConfig) (*Google, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}

	var audio io.Reader = os.Stdin
	if cfg.AudioPath != "" && cfg.AudioPath != "-" {
		f, err := os.Open(cfg.AudioPath)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("open audio source: %w", err)
		}
		audio = f
	}

	return &Google{client: client, cfg: cfg, audio: audio}, nil
}

// Start opens one streaming recognition session, sends the streaming
// config and begins pumping audio and receiving results in background
// goroutines. Result and lifecycle signals are delivered serially from
// the receive loop.
func (g *Google) Start(ctx context.Context, l Listener) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrUnavailable
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.mu.Unlock()

	stream, err := g.client.StreamingRecognize(sessionCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("open streaming recognize: %w", err)
	}

	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: int32(g.cfg.SampleRateHz),
					LanguageCode:    g.cfg.LanguageCode,
				},
				InterimResults: g.cfg.InterimResults,
			},
		},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("send streaming config: %w", err)
	}

	go g.pump(stream)
	go g.listen(stream, l)
	return nil
}

// pump copies audio chunks from the PCM source into the stream until
// the source drains or the stream is torn down.
func (g *Google) pump(stream speechpb.Speech_StreamingRecognizeClient) {
	buf := make([]byte, audioChunkBytes)
	for {
		n, err := g.audio.Read(buf)
		if n > 0 {
			sendErr := stream.Send(&speechpb.StreamingRecognizeRequest{
				StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
					AudioContent: buf[:n],
				},
			})
			if sendErr != nil {
				return
			}
		}
		if err != nil {
			_ = stream.CloseSend()
			return
		}
	}
}

// listen receives streaming responses and delivers listener signals.
// Errors are followed by a session-end signal, matching the engine
// behaviour the restart policy is built on.
func (g *Google) listen(stream speechpb.Speech_StreamingRecognizeClient, l Listener) {
	l.OnSessionStart()
	l.OnAudioStart()

	var finalized []models.RecognitionResult
	speechSeen := false
	for {
		resp, err := stream.Recv()
		if err != nil {
			if speechSeen {
				l.OnSpeechEnd()
				l.OnSoundEnd()
			}
			l.OnAudioEnd()
			if !errors.Is(err, io.EOF) {
				l.OnError(mapErrorCode(err), err.Error())
			}
			l.OnSessionEnd()
			return
		}
		if len(resp.Results) == 0 {
			continue
		}
		if !speechSeen {
			speechSeen = true
			l.OnSoundStart()
			l.OnSpeechStart()
		}

		event, nextFinalized := snapshotEvent(finalized, resp.Results)
		finalized = nextFinalized
		l.OnResult(event)
	}
}

// snapshotEvent rebuilds the growing result snapshot the ledger
// consumes: segments finalized earlier in the session, then the
// results of this response. The event's index points at the first
// slot this response may have changed.
func snapshotEvent(finalized []models.RecognitionResult, results []*speechpb.StreamingRecognitionResult) (models.RecognitionEvent, []models.RecognitionResult) {
	event := models.RecognitionEvent{
		ResultIndex: len(finalized),
		Results:     append([]models.RecognitionResult{}, finalized...),
	}
	for _, r := range results {
		conv := convertResult(r)
		event.Results = append(event.Results, conv)
		if r.IsFinal {
			finalized = append(finalized, conv)
		}
	}
	return event, finalized
}

func convertResult(r *speechpb.StreamingRecognitionResult) models.RecognitionResult {
	out := models.RecognitionResult{IsFinal: r.IsFinal}
	for _, alt := range r.Alternatives {
		out.Alternatives = append(out.Alternatives, models.RecognitionAlternative{
			Transcript: alt.Transcript,
		})
	}
	return out
}

// mapErrorCode folds gRPC status codes into the error taxonomy the
// session adapter's fatal/recoverable policy understands.
func mapErrorCode(err error) string {
	switch status.Code(err) {
	case codes.Canceled:
		return CodeAborted
	case codes.OutOfRange:
		return CodeNoSpeech
	case codes.PermissionDenied, codes.Unauthenticated, codes.InvalidArgument:
		return CodeAudioCapture
	default:
		return CodeNetwork
	}
}

// Close tears down the active session and releases the client.
func (g *Google) Close() error {
	g.mu.Lock()
	g.closed = true
	cancel := g.cancel
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer, ok := g.audio.(io.Closer); ok && g.audio != os.Stdin {
		_ = closer.Close()
	}
	return g.client.Close()
}
