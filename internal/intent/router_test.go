package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

// scriptedRemote stands in for the chat-completions client.
type scriptedRemote struct {
	configured bool
	result     Result
	err        error
	calls      int
}

func (r *scriptedRemote) Configured() bool { return r.configured }

func (r *scriptedRemote) Interpret(context.Context, string) (Result, error) {
	r.calls++
	if r.err != nil {
		return Result{}, r.err
	}
	return r.result, nil
}

func newTestRouter(remote remoteInterpreter) *Router {
	r := NewRouter(nil, NewLocal(nil), zerolog.Nop())
	r.remote = remote
	return r
}

func TestRouterPrefersRemote(t *testing.T) {
	remote := &scriptedRemote{
		configured: true,
		result:     Result{Intent: IntentRemote, Message: "Affirmative, Commander.", Source: "remote"},
	}
	r := newTestRouter(remote)

	got := r.Interpret(context.Background(), "what do you think about mars")
	if got.Source != "remote" {
		t.Fatalf("source = %q, want remote", got.Source)
	}
	if remote.calls != 1 {
		t.Errorf("remote calls = %d, want 1", remote.calls)
	}
}

func TestRouterFallsBackOnRemoteFailure(t *testing.T) {
	remote := &scriptedRemote{configured: true, err: errors.New("offline")}
	r := newTestRouter(remote)

	got := r.Interpret(context.Background(), "hello there")
	if got.Source != "local" {
		t.Fatalf("source = %q, want local", got.Source)
	}
	if got.Intent != IntentGreeting {
		t.Errorf("intent = %v, want greeting", got.Intent)
	}
}

func TestRouterSkipsUnconfiguredRemote(t *testing.T) {
	remote := &scriptedRemote{configured: false}
	r := newTestRouter(remote)

	got := r.Interpret(context.Background(), "what's the date today")
	if got.Source != "local" {
		t.Fatalf("source = %q, want local", got.Source)
	}
	if remote.calls != 0 {
		t.Errorf("remote calls = %d, want 0", remote.calls)
	}
}

func TestRouterTimerStaysLocal(t *testing.T) {
	remote := &scriptedRemote{
		configured: true,
		result:     Result{Intent: IntentRemote, Message: "chatty answer", Source: "remote"},
	}
	r := newTestRouter(remote)

	got := r.Interpret(context.Background(), "set a timer for 10 minutes")
	if got.Intent != IntentTimer {
		t.Fatalf("intent = %v, want timer", got.Intent)
	}
	if got.Timer == nil || got.Timer.Seconds != 600 {
		t.Fatalf("timer = %+v, want 600 seconds", got.Timer)
	}
	if remote.calls != 0 {
		t.Errorf("timer command reached the remote interpreter")
	}
}

func TestRouterNilRemote(t *testing.T) {
	r := NewRouter(nil, NewLocal(nil), zerolog.Nop())

	got := r.Interpret(context.Background(), "help")
	if got.Intent != IntentHelp {
		t.Fatalf("intent = %v, want help", got.Intent)
	}
}
