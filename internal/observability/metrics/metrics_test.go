package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	kind  string
	name  string
	value float64
	tags  map[string]string
}

type recordingSink struct {
	mu   sync.Mutex
	seen []recorded
}

func (s *recordingSink) Count(name string, value int64, tags map[string]string) {
	s.add(recorded{"count", name, float64(value), tags})
}

func (s *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	s.add(recorded{"gauge", name, value, tags})
}

func (s *recordingSink) Timing(name string, d time.Duration, tags map[string]string) {
	s.add(recorded{"timing", name, float64(d), tags})
}

func (s *recordingSink) add(r recorded) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, r)
}

func (s *recordingSink) names() []string {
	out := make([]string, 0, len(s.seen))
	for _, r := range s.seen {
		out = append(out, r.name)
	}
	return out
}

type tokenErr struct{}

func (tokenErr) Error() string { return "token" }

func TestEmitTokenRenewal_Redirect(t *testing.T) {
	sink := &recordingSink{}

	EmitTokenRenewal(sink, TokenRenewal{
		Trigger:  "tick",
		Result:   ResultRedirect,
		Duration: 20 * time.Millisecond,
		Err:      tokenErr{},
	})

	assert.Equal(t, []string{"token.renewal", "token.redirect", "token.renewal.duration"}, sink.names())
	assert.Equal(t, "metrics_tokenerr", sink.seen[0].tags["error_class"])
	assert.Equal(t, "redirect", sink.seen[1].tags["result"])
}

func TestEmitTokenRenewal_SuccessWithoutDuration(t *testing.T) {
	sink := &recordingSink{}
	EmitTokenRenewal(sink, TokenRenewal{Trigger: "startup", Result: ResultSuccess})

	require.Len(t, sink.seen, 1)
	assert.Equal(t, map[string]string{"trigger": "startup", "result": "success"}, sink.seen[0].tags)
}

func TestEmitPresence(t *testing.T) {
	sink := &recordingSink{}
	EmitPresence(sink, Presence{Events: 12, Present: 3, Duration: time.Millisecond})

	assert.Equal(t, []string{"presence.reconcile", "presence.events", "presence.present", "presence.duration"}, sink.names())
	assert.InDelta(t, 3, sink.seen[2].value, 0)

	failing := &recordingSink{}
	EmitPresence(failing, Presence{Err: errors.New("graph down")})
	assert.Equal(t, []string{"presence.reconcile"}, failing.names())
	assert.Equal(t, "error", failing.seen[0].tags["result"])
}

func TestEmitGraphRequest(t *testing.T) {
	sink := &recordingSink{}
	EmitGraphRequest(sink, GraphRequest{Operation: "list_items", Status: 503})
	EmitGraphRequest(sink, GraphRequest{Operation: "me", Status: 0})

	require.Len(t, sink.seen, 2)
	assert.Equal(t, "5xx", sink.seen[0].tags["status"])
	assert.Equal(t, "transport_error", sink.seen[1].tags["status"])
}

func TestNilSinkIsSafe(t *testing.T) {
	EmitTokenRenewal(nil, TokenRenewal{})
	EmitPresence(nil, Presence{})
	EmitGraphRequest(nil, GraphRequest{})
	assert.Nil(t, CloneTags(nil))
}
