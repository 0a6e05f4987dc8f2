package gateway

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The components behind gated message types are nil here on purpose:
// reaching one before auth passes would panic the test.
func newAuthTestServer(token string) *Server {
	return NewServer(ServerConfig{Addr: ":0", AuthToken: token}, nil, nil, nil, nil, nil, zerolog.Nop())
}

func newTestClient() *client {
	return &client{send: make(chan []byte, sendBuffer), done: make(chan struct{})}
}

// receive decodes the next queued outbound message, failing if none is
// pending.
func receive(t *testing.T, c *client) map[string]any {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	default:
		t.Fatal("no message queued")
		return nil
	}
}

func TestAuthAcceptsMatchingToken(t *testing.T) {
	s := newAuthTestServer("s3cret")
	c := newTestClient()

	s.dispatch(c, []byte(`{"type":"auth","token":"s3cret"}`))

	assert.True(t, c.authed)
	msg := receive(t, c)
	assert.Equal(t, "auth", msg["type"])
	assert.Equal(t, true, msg["ok"])
}

func TestAuthRejectsWrongToken(t *testing.T) {
	s := newAuthTestServer("s3cret")
	c := newTestClient()

	s.dispatch(c, []byte(`{"type":"auth","token":"nope"}`))

	assert.False(t, c.authed)
	msg := receive(t, c)
	assert.Equal(t, false, msg["ok"])
}

func TestVoiceGatedUntilAuth(t *testing.T) {
	s := newAuthTestServer("s3cret")
	c := newTestClient()

	s.dispatch(c, []byte(`{"type":"control.listen"}`))
	msg := receive(t, c)
	assert.Equal(t, "error", msg["type"])

	s.dispatch(c, []byte(`{"type":"audio.chunk","data":"AAAA"}`))
	select {
	case <-c.send:
		t.Fatal("audio.chunk produced a reply while unauthenticated")
	default:
	}
}

// Shutdown may race a session's read loop queueing replies; queueing
// onto a live channel must stay safe while the client is torn down.
func TestShutdownSafeMidDispatch(t *testing.T) {
	s := newAuthTestServer("")
	c := newTestClient()
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	writes := make(chan struct{})
	go func() {
		defer close(writes)
		for i := 0; i < 500; i++ {
			s.sendTo(c, StateMessage{Type: "state", State: "idle"})
		}
	}()

	s.Shutdown()
	<-writes

	s.mu.Lock()
	_, present := s.clients[c]
	s.mu.Unlock()
	assert.False(t, present)

	select {
	case <-c.done:
	default:
		t.Fatal("done not signalled by Shutdown")
	}
}

func TestBroadcastEvictsSlowConsumer(t *testing.T) {
	s := newAuthTestServer("")
	c := newTestClient()
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	for i := 0; i < sendBuffer; i++ {
		c.send <- []byte("backlog")
	}
	s.broadcast(StateMessage{Type: "state", State: "idle"})

	s.mu.Lock()
	_, present := s.clients[c]
	s.mu.Unlock()
	assert.False(t, present)

	// The read loop may still queue a reply after eviction.
	s.sendTo(c, StateMessage{Type: "state", State: "idle"})
}

func TestNoTokenConfiguredTrustsSession(t *testing.T) {
	s := newAuthTestServer("")
	c := newTestClient()

	s.dispatch(c, []byte(`{"type":"auth","token":""}`))

	assert.True(t, c.authed)
	assert.Equal(t, true, receive(t, c)["ok"])
}
