// Package checks holds reusable gates for command nodes. Every check is
// silent: a failed check makes the dispatcher drop the invocation without a
// reply.
package checks

import (
	"context"
	"slices"

	"github.com/keshon/slashkit/pkg/cmd"
)

// GuildOnly passes for invocations inside a guild.
func GuildOnly() cmd.Check {
	return func(_ context.Context, ev *cmd.Event) bool {
		return ev.GuildID != "" && !ev.Private
	}
}

// UserIn passes when the invoking user is one of ids. Empty ids are ignored,
// so UserIn(cfg.DeveloperID) with no developer configured denies everyone.
func UserIn(ids ...string) cmd.Check {
	allowed := slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == "" })
	return func(_ context.Context, ev *cmd.Event) bool {
		return ev.UserID != "" && slices.Contains(allowed, ev.UserID)
	}
}
