// Package middleware holds cross-cutting wrappers for command actions.
package middleware

import (
	"time"

	"github.com/keshon/slashkit/pkg/cmd"
	"go.uber.org/zap"
)

// WithCommandLogger logs every executed action with its outcome and timing.
func WithCommandLogger() cmd.Middleware {
	return func(next cmd.Handler) cmd.Handler {
		return func(c *cmd.Context) error {
			start := time.Now()
			err := next(c)

			fields := []zap.Field{
				zap.String("guild", c.Event.GuildID),
				zap.String("channel", c.Event.ChannelID),
				zap.Bool("structured", c.Event.Structured),
				zap.Duration("took", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, zap.NamedError("failure", err))
			}
			c.Logger().Info("command executed", fields...)
			return err
		}
	}
}
