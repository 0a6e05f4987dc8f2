package stt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// stubProvider returns canned transcriptions.
type stubProvider struct {
	mu   sync.Mutex
	text string
	err  error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Transcribe(_ context.Context, _ *TranscribeRequest) (*TranscribeResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &TranscribeResponse{Text: p.text, IsFinal: true}, nil
}

func (p *stubProvider) Health(context.Context) error { return nil }

func (p *stubProvider) Capabilities() ProviderCapabilities {
	return ProviderCapabilities{SupportedLanguages: []string{"en"}}
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for recognizer callback")
		return ""
	}
}

func TestRecognizerForegroundSingleShot(t *testing.T) {
	provider := &stubProvider{text: "set a timer for 5 minutes"}
	r := NewRecognizer(RecognizerConfig{Mode: ModeForeground}, provider, zerolog.Nop())

	results := make(chan string, 1)
	ended := make(chan string, 1)
	r.OnResult(func(text string) { results <- text })
	r.OnEnd(func() { ended <- "end" })

	r.Start()
	if !r.Listening() {
		t.Fatal("not listening after Start")
	}

	r.Feed([]byte("audio"))
	if got := waitFor(t, results); got != "set a timer for 5 minutes" {
		t.Errorf("result = %q", got)
	}
	waitFor(t, ended)

	if r.State() != StateIdle {
		t.Errorf("state = %v after single-shot result, want idle", r.State())
	}
}

func TestRecognizerWakeStaysListening(t *testing.T) {
	provider := &stubProvider{text: "background chatter"}
	r := NewRecognizer(RecognizerConfig{Mode: ModeWake}, provider, zerolog.Nop())

	results := make(chan string, 2)
	r.OnResult(func(text string) { results <- text })

	r.Start()
	r.Feed([]byte("one"))
	waitFor(t, results)

	if !r.Listening() {
		t.Fatal("wake recognizer went idle after a result")
	}
	r.Feed([]byte("two"))
	waitFor(t, results)
}

func TestRecognizerStopIdempotent(t *testing.T) {
	provider := &stubProvider{text: "x"}
	r := NewRecognizer(RecognizerConfig{Mode: ModeWake}, provider, zerolog.Nop())

	var ends int
	var mu sync.Mutex
	r.OnEnd(func() {
		mu.Lock()
		ends++
		mu.Unlock()
	})

	r.Stop() // stopping idle is a no-op
	r.Start()
	r.Stop()
	r.Stop()
	r.Stop()

	mu.Lock()
	defer mu.Unlock()
	if ends != 1 {
		t.Errorf("onEnd fired %d times, want 1", ends)
	}
	if r.State() != StateIdle {
		t.Errorf("state = %v, want idle", r.State())
	}
}

func TestRecognizerDropsStaleResults(t *testing.T) {
	block := make(chan struct{})
	provider := &blockingProvider{release: block}
	r := NewRecognizer(RecognizerConfig{Mode: ModeWake}, provider, zerolog.Nop())

	results := make(chan string, 1)
	r.OnResult(func(text string) { results <- text })

	r.Start()
	r.Feed([]byte("audio"))
	r.Stop()
	close(block)

	select {
	case got := <-results:
		t.Errorf("stale result %q delivered after Stop", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRecognizerFeedIgnoredWhenIdle(t *testing.T) {
	provider := &stubProvider{text: "x"}
	r := NewRecognizer(RecognizerConfig{Mode: ModeForeground}, provider, zerolog.Nop())

	results := make(chan string, 1)
	r.OnResult(func(text string) { results <- text })

	r.Feed([]byte("audio"))
	select {
	case <-results:
		t.Error("idle recognizer delivered a result")
	case <-time.After(200 * time.Millisecond):
	}
}

// blockingProvider parks every Transcribe until release closes.
type blockingProvider struct {
	release chan struct{}
}

func (p *blockingProvider) Name() string { return "blocking" }

func (p *blockingProvider) Transcribe(_ context.Context, _ *TranscribeRequest) (*TranscribeResponse, error) {
	<-p.release
	return &TranscribeResponse{Text: "late", IsFinal: true}, nil
}

func (p *blockingProvider) Health(context.Context) error { return nil }

func (p *blockingProvider) Capabilities() ProviderCapabilities {
	return ProviderCapabilities{}
}
