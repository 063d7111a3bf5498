// Package report forwards command failures to an external error-reporting
// sink and hands back a correlation id the user can quote later.
package report

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap/zapcore"
)

// Breadcrumb is one entry of the diagnostic trail collected during an
// invocation.
type Breadcrumb struct {
	Category string
	Type     string
	Message  string
	Data     map[string]string
	Time     time.Time
}

// Event is a single failure submitted to a Reporter.
type Event struct {
	Err         error
	Message     string
	User        string
	Tags        map[string]string
	Breadcrumbs []Breadcrumb
}

// Reporter accepts failure events and returns an id that identifies the event
// in the sink.
type Reporter interface {
	Report(ctx context.Context, ev Event) (string, error)
}

// FeedbackSink is implemented by reporters that accept free-text feedback
// attached to a previously issued id.
type FeedbackSink interface {
	Feedback(ctx context.Context, id, user, message string) error
}

// ErrUnknownID is returned for feedback on an id that was never issued, has
// been evicted, or was already used.
var ErrUnknownID = errors.New("unknown or expired report id")

// MarshalLogObject lets breadcrumbs be logged as structured zap objects.
func (b Breadcrumb) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("category", b.Category)
	enc.AddString("type", b.Type)
	enc.AddString("message", b.Message)
	enc.AddTime("time", b.Time)
	if len(b.Data) > 0 {
		return enc.AddReflected("data", b.Data)
	}
	return nil
}

type breadcrumbs []Breadcrumb

func (bs breadcrumbs) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, b := range bs {
		if err := enc.AppendObject(b); err != nil {
			return err
		}
	}
	return nil
}
