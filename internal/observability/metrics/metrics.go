// Package metrics wraps the statsd sink with the service's metric names and tags.
package metrics

import (
	"time"

	obserrors "github.com/target/totem-api/internal/observability/errors"
	"github.com/target/totem-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultNoop     = "noop"
	ResultRedirect = "redirect"
)

// TokenRenewal captures one pass of the token renewal loop.
type TokenRenewal struct {
	Trigger  string // "tick", "startup", "on_demand"
	Result   string
	Duration time.Duration
	Err      error
}

// EmitTokenRenewal records token.renewal and, when a redirect was started,
// token.redirect.
func EmitTokenRenewal(sink statsd.Sink, in TokenRenewal) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"trigger": in.Trigger,
		"result":  in.Result,
	}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("token.renewal", 1, tags)
	if in.Result == ResultRedirect {
		sink.Count("token.redirect", 1, CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("token.renewal.duration", in.Duration, CloneTags(tags))
	}
}

// Presence captures one present-visitors computation.
type Presence struct {
	Events   int
	Present  int
	Duration time.Duration
	Err      error
}

// EmitPresence records the size of the event window and the resulting roster.
func EmitPresence(sink statsd.Sink, in Presence) {
	if sink == nil {
		return
	}

	result := ResultSuccess
	tags := map[string]string{}
	if in.Err != nil {
		result = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	tags["result"] = result

	sink.Count("presence.reconcile", 1, tags)
	if in.Err == nil {
		sink.Gauge("presence.events", float64(in.Events), nil)
		sink.Gauge("presence.present", float64(in.Present), nil)
	}
	if in.Duration > 0 {
		sink.Timing("presence.duration", in.Duration, CloneTags(tags))
	}
}

// GraphRequest captures a single outbound Graph call.
type GraphRequest struct {
	Operation string
	Status    int
	Duration  time.Duration
}

// EmitGraphRequest records graph.request tagged by operation and status class.
func EmitGraphRequest(sink statsd.Sink, in GraphRequest) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"operation": in.Operation,
		"status":    statusClass(in.Status),
	}
	sink.Count("graph.request", 1, tags)
	if in.Duration > 0 {
		sink.Timing("graph.request.duration", in.Duration, CloneTags(tags))
	}
}

func statusClass(status int) string {
	switch {
	case status <= 0:
		return "transport_error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
