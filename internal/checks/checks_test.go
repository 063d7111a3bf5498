package checks

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/internal/logger"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type perms struct {
	bits int64
	err  error
}

func (p perms) MemberPermissions(context.Context) (int64, error) { return p.bits, p.err }

func TestGuildOnly(t *testing.T) {
	ctx := context.Background()
	guild := &cmd.Event{GuildID: "1", ChannelID: "2", UserID: "3"}
	dm := &cmd.Event{ChannelID: "2", UserID: "3", Private: true}

	assert.True(t, GuildOnly()(ctx, guild))
	assert.False(t, GuildOnly()(ctx, dm))
}

func TestUserIn(t *testing.T) {
	ctx := context.Background()
	assert.True(t, UserIn("3", "4")(ctx, &cmd.Event{UserID: "3"}))
	assert.False(t, UserIn("4")(ctx, &cmd.Event{UserID: "3"}))
	assert.False(t, UserIn("")(ctx, &cmd.Event{}))
}

func TestHasAnyPermission(t *testing.T) {
	check := HasAnyPermission(discordgo.PermissionManageMessages, discordgo.PermissionBanMembers)

	tests := []struct {
		name string
		ev   *cmd.Event
		want bool
	}{
		{name: "has one", ev: &cmd.Event{GuildID: "1", Data: perms{bits: discordgo.PermissionBanMembers}}, want: true},
		{name: "administrator", ev: &cmd.Event{GuildID: "1", Data: perms{bits: discordgo.PermissionAdministrator}}, want: true},
		{name: "missing", ev: &cmd.Event{GuildID: "1", Data: perms{bits: discordgo.PermissionSendMessages}}},
		{name: "lookup failed", ev: &cmd.Event{GuildID: "1", Data: perms{err: errors.New("gone")}}},
		{name: "no guild", ev: &cmd.Event{Private: true, Data: perms{bits: discordgo.PermissionAdministrator}}},
		{name: "no payload", ev: &cmd.Event{GuildID: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := logger.TestContext()
			assert.Equal(t, tt.want, check(ctx, tt.ev))
		})
	}
}

func TestHasAnyPermissionLogsMissing(t *testing.T) {
	ctx, logs := logger.TestContext()
	ok := HasAnyPermission(discordgo.PermissionManageRoles)(ctx, &cmd.Event{GuildID: "1", Data: perms{}})
	assert.False(t, ok)

	entries := logs.FilterMessage("missing permission").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Manage Roles", entries[0].ContextMap()["required"])
}

func TestDescribePermissions(t *testing.T) {
	assert.Equal(t, "Kick Members, 0x1000000000000000", DescribePermissions(discordgo.PermissionKickMembers, 1<<60))
}
