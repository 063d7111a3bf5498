package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/internal/checks"
	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/keshon/slashkit/pkg/converter"
)

func toolsCommand() (*cmd.Node, error) {
	root := cmd.New("tools", "Small utilities").Extension("tools")

	builders := []struct {
		name, description string
		subs              []*cmd.Node
	}{
		{"time", "Work with durations", []*cmd.Node{humanizeCommand(), secondsCommand()}},
		{"numbers", "Integer helpers", []*cmd.Node{sumCommand(), clampCommand()}},
		{"lookup", "Inspect server entities", []*cmd.Node{lookupUserCommand(), lookupChannelCommand(), lookupRoleCommand()}},
	}

	for _, b := range builders {
		var subErr error
		_, err := root.Group(b.name, b.description, func(g *cmd.Group) {
			for _, sub := range b.subs {
				if subErr == nil {
					subErr = g.SubCommand(sub)
				}
			}
		})
		if err != nil {
			return nil, err
		}
		if subErr != nil {
			return nil, subErr
		}
	}
	return root, nil
}

// --- time ---

type durationArgs struct {
	duration *args.Arg[time.Duration]
}

func newDurationArgs(s *args.Set) *durationArgs {
	return &durationArgs{
		duration: args.Add(s, "duration", "A duration like `1d 2h30m`", converter.Required(converter.Duration())),
	}
}

func humanizeCommand() *cmd.Node {
	return cmd.Handle(cmd.New("humanize", "Spell out a duration"), newDurationArgs, func(c *cmd.Context, a *durationArgs) error {
		text := converter.HumanizeDuration(a.duration.Value())
		if text == "" {
			text = "less than a second"
		}
		return c.Reply(text)
	})
}

func secondsCommand() *cmd.Node {
	return cmd.Handle(cmd.New("seconds", "Convert a duration to seconds"), newDurationArgs, func(c *cmd.Context, a *durationArgs) error {
		return c.Reply(fmt.Sprintf("%d seconds", a.duration.Value()/time.Second))
	})
}

// --- numbers ---

type sumArgs struct {
	values *args.Arg[[]int64]
}

func sumCommand() *cmd.Node {
	factory := func(s *args.Set) *sumArgs {
		return &sumArgs{values: args.Add(s, "values", "Integers separated by spaces", converter.Required(converter.IntList()))}
	}
	return cmd.Handle(cmd.New("sum", "Add integers together"), factory, func(c *cmd.Context, a *sumArgs) error {
		var (
			total int64
			terms []string
		)
		for _, v := range a.values.Value() {
			total += v
			terms = append(terms, strconv.FormatInt(v, 10))
		}
		return c.Reply(fmt.Sprintf("%s = **%d**", strings.Join(terms, " + "), total))
	})
}

type clampArgs struct {
	value *args.Arg[int64]
	lo    *args.Arg[int64]
	hi    *args.Arg[int64]
}

func clampCommand() *cmd.Node {
	factory := func(s *args.Set) *clampArgs {
		return &clampArgs{
			value: args.Add(s, "value", "The number to clamp", converter.Required(converter.Int())),
			lo:    args.Add(s, "min", "Lower bound, 0 when omitted", converter.Defaulting(converter.Int(), 0)),
			hi:    args.Add(s, "max", "Upper bound, 100 when omitted", converter.Defaulting(converter.Int(), 100)),
		}
	}
	return cmd.Handle(cmd.New("clamp", "Limit a number to a range"), factory, func(c *cmd.Context, a *clampArgs) error {
		lo, hi := a.lo.Value(), a.hi.Value()
		if lo > hi {
			return c.Reply(fmt.Sprintf("The minimum (%d) must not exceed the maximum (%d).", lo, hi))
		}
		return c.Reply(fmt.Sprintf("**%d**", max(lo, min(a.value.Value(), hi))))
	})
}

// --- lookup ---

func moderatorsOnly() cmd.Check {
	return checks.HasAnyPermission(discordgo.PermissionModerateMembers, discordgo.PermissionManageMessages)
}

type userArgs struct {
	user *args.Arg[*discordgo.User]
}

func lookupUserCommand() *cmd.Node {
	factory := func(s *args.Set) *userArgs {
		return &userArgs{user: args.Add(s, "user", "The user to inspect", converter.Required(converter.User()))}
	}
	n := cmd.New("user", "Show information about a user").Check(moderatorsOnly())
	return cmd.Handle(n, factory, func(c *cmd.Context, a *userArgs) error {
		u := a.user.Value()
		msg := fmt.Sprintf("**%s** (`%s`)", u.Username, u.ID)
		if u.Bot {
			msg += " [bot]"
		}
		if created, err := discordgo.SnowflakeTimestamp(u.ID); err == nil {
			msg += fmt.Sprintf("\nCreated <t:%d:R>", created.Unix())
		}
		return c.Reply(msg)
	})
}

var channelKinds = map[discordgo.ChannelType]string{
	discordgo.ChannelTypeGuildText:          "text channel",
	discordgo.ChannelTypeDM:                 "direct message",
	discordgo.ChannelTypeGuildVoice:         "voice channel",
	discordgo.ChannelTypeGuildCategory:      "category",
	discordgo.ChannelTypeGuildNews:          "announcement channel",
	discordgo.ChannelTypeGuildPublicThread:  "thread",
	discordgo.ChannelTypeGuildPrivateThread: "private thread",
	discordgo.ChannelTypeGuildForum:         "forum",
}

type channelArgs struct {
	channel *args.Arg[*discordgo.Channel]
}

func lookupChannelCommand() *cmd.Node {
	factory := func(s *args.Set) *channelArgs {
		return &channelArgs{channel: args.Add(s, "channel", "The channel to inspect", converter.Required(converter.Channel()))}
	}
	n := cmd.New("channel", "Show information about a channel").Check(moderatorsOnly())
	return cmd.Handle(n, factory, func(c *cmd.Context, a *channelArgs) error {
		ch := a.channel.Value()
		kind, ok := channelKinds[ch.Type]
		if !ok {
			kind = "channel"
		}
		return c.Reply(fmt.Sprintf("**#%s** (`%s`), %s", ch.Name, ch.ID, kind))
	})
}

type roleArgs struct {
	role *args.Arg[*discordgo.Role]
}

func lookupRoleCommand() *cmd.Node {
	factory := func(s *args.Set) *roleArgs {
		return &roleArgs{role: args.Add(s, "role", "The role to inspect", converter.Required(converter.Role()))}
	}
	n := cmd.New("role", "Show information about a role").Check(moderatorsOnly())
	return cmd.Handle(n, factory, func(c *cmd.Context, a *roleArgs) error {
		r := a.role.Value()
		return c.Reply(fmt.Sprintf("**@%s** (`%s`), color #%06x, position %d", r.Name, r.ID, r.Color, r.Position))
	})
}
