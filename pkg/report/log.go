package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogReporter writes failure events and feedback to a zap logger. It is the
// fallback sink when no webhook is configured.
type LogReporter struct {
	log     *zap.Logger
	tracker *Tracker
}

// NewLogReporter returns a reporter logging to log and remembering issued ids
// in tracker. tracker may be nil.
func NewLogReporter(log *zap.Logger, tracker *Tracker) *LogReporter {
	return &LogReporter{log: log.Named("report"), tracker: tracker}
}

func (r *LogReporter) Report(_ context.Context, ev Event) (string, error) {
	id := uuid.NewString()
	fields := []zap.Field{
		zap.String("id", id),
		zap.String("user", ev.User),
		zap.Error(ev.Err),
	}
	for k, v := range ev.Tags {
		fields = append(fields, zap.String("tag."+k, v))
	}
	fields = append(fields, zap.Array("breadcrumbs", breadcrumbs(ev.Breadcrumbs)))
	r.log.Error(ev.Message, fields...)

	if r.tracker != nil {
		r.tracker.Add(id)
	}
	return id, nil
}

func (r *LogReporter) Feedback(_ context.Context, id, user, message string) error {
	if r.tracker != nil && !r.tracker.Consume(id) {
		return fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	r.log.Info("feedback received", zap.String("id", id), zap.String("user", user), zap.String("message", message))
	return nil
}
