package converter

import (
	"context"
	"regexp"

	"github.com/bwmarrin/discordgo"
)

var (
	snowflake      = regexp.MustCompile(`^\d{15,21}$`)
	userMention    = regexp.MustCompile(`^<@!?(\d{15,21})>$`)
	channelMention = regexp.MustCompile(`^<#(\d{15,21})>$`)
	roleMention    = regexp.MustCompile(`^<@&(\d{15,21})>$`)
)

// mentionID extracts the id from a mention or a bare snowflake.
func mentionID(re *regexp.Regexp, token string) (string, bool) {
	if m := re.FindStringSubmatch(token); m != nil {
		return m[1], true
	}
	if snowflake.MatchString(token) {
		return token, true
	}
	return "", false
}

// User accepts a user mention or id and resolves it through the scope's Lookup.
func User() Converter[*discordgo.User] {
	return Single("user", discordgo.ApplicationCommandOptionUser,
		func(ctx context.Context, sc Scope, token string) (*discordgo.User, error) {
			id, ok := mentionID(userMention, token)
			if !ok {
				return nil, Reject("`%s` is not a user mention or id", token)
			}
			if sc.Lookup == nil {
				return nil, ErrNoLookup
			}
			u, err := sc.Lookup.User(ctx, id)
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, Reject("unknown user `%s`", id)
			}
			return u, nil
		})
}

// Channel accepts a channel mention or id and resolves it through the scope's
// Lookup.
func Channel() Converter[*discordgo.Channel] {
	return Single("channel", discordgo.ApplicationCommandOptionChannel,
		func(ctx context.Context, sc Scope, token string) (*discordgo.Channel, error) {
			id, ok := mentionID(channelMention, token)
			if !ok {
				return nil, Reject("`%s` is not a channel mention or id", token)
			}
			if sc.Lookup == nil {
				return nil, ErrNoLookup
			}
			c, err := sc.Lookup.Channel(ctx, id)
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, Reject("unknown channel `%s`", id)
			}
			return c, nil
		})
}

// Role accepts a role mention or id in the invoking guild.
func Role() Converter[*discordgo.Role] {
	return Single("role", discordgo.ApplicationCommandOptionRole,
		func(ctx context.Context, sc Scope, token string) (*discordgo.Role, error) {
			id, ok := mentionID(roleMention, token)
			if !ok {
				return nil, Reject("`%s` is not a role mention or id", token)
			}
			if sc.GuildID == "" {
				return nil, Reject("roles can only be used inside a server")
			}
			if sc.Lookup == nil {
				return nil, ErrNoLookup
			}
			r, err := sc.Lookup.Role(ctx, sc.GuildID, id)
			if err != nil {
				return nil, err
			}
			if r == nil {
				return nil, Reject("unknown role `%s`", id)
			}
			return r, nil
		})
}
