package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/internal/logger"
	"github.com/keshon/slashkit/pkg/cmd"
	"go.uber.org/zap"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionKickMembers:            "Kick Members",
	discordgo.PermissionBanMembers:             "Ban Members",
	discordgo.PermissionAdministrator:          "Administrator",
	discordgo.PermissionManageChannels:         "Manage Channels",
	discordgo.PermissionManageGuild:            "Manage Server",
	discordgo.PermissionViewAuditLogs:          "View Audit Logs",
	discordgo.PermissionViewChannel:            "View Channel",
	discordgo.PermissionSendMessages:           "Send Messages",
	discordgo.PermissionManageMessages:         "Manage Messages",
	discordgo.PermissionMentionEveryone:        "Mention Everyone",
	discordgo.PermissionManageThreads:          "Manage Threads",
	discordgo.PermissionManageNicknames:        "Manage Nicknames",
	discordgo.PermissionManageRoles:            "Manage Roles",
	discordgo.PermissionManageWebhooks:         "Manage Webhooks",
	discordgo.PermissionManageEvents:           "Manage Events",
	discordgo.PermissionModerateMembers:        "Moderate Members",
	discordgo.PermissionVoiceMuteMembers:       "Mute Members",
	discordgo.PermissionVoiceMoveMembers:       "Move Members",
	discordgo.PermissionUseApplicationCommands: "Use Application Commands",
}

// PermissionHolder is implemented by adapter payloads (cmd.Event.Data) that
// can tell which channel permissions the invoking member has.
type PermissionHolder interface {
	MemberPermissions(ctx context.Context) (int64, error)
}

// HasAnyPermission passes when the invoking member holds at least one of
// perms in the invocation channel. Administrators always pass. Invocations
// outside a guild, or whose payload cannot answer, are denied.
func HasAnyPermission(perms ...int64) cmd.Check {
	return func(ctx context.Context, ev *cmd.Event) bool {
		holder, ok := ev.Data.(PermissionHolder)
		if !ok || ev.GuildID == "" {
			return false
		}

		memberPerms, err := holder.MemberPermissions(ctx)
		if err != nil {
			logger.FromContext(ctx).Warn("failed to get member permissions",
				zap.String("user", ev.UserID), zap.String("channel", ev.ChannelID), zap.Error(err))
			return false
		}
		if memberPerms&discordgo.PermissionAdministrator != 0 {
			return true
		}
		for _, p := range perms {
			if memberPerms&p != 0 {
				return true
			}
		}

		logger.FromContext(ctx).Debug("missing permission",
			zap.String("user", ev.UserID),
			zap.String("command", ev.Path.String()),
			zap.String("required", DescribePermissions(perms...)))
		return false
	}
}

// DescribePermissions renders perms as a readable list.
func DescribePermissions(perms ...int64) string {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		name := PermissionNames[p]
		if name == "" {
			name = fmt.Sprintf("0x%x", p)
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
