package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/cmd"
)

// Payload is stored in cmd.Event.Data for events coming from Discord.
// Exactly one of Interaction and Message is set.
type Payload struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Message     *discordgo.MessageCreate
}

// MemberPermissions returns the invoking member's permissions in the
// invocation channel. Interactions carry them precomputed.
func (p *Payload) MemberPermissions(_ context.Context) (int64, error) {
	if p.Interaction != nil && p.Interaction.Member != nil {
		return p.Interaction.Member.Permissions, nil
	}
	if p.Message == nil || p.Session == nil {
		return 0, fmt.Errorf("no member to check")
	}
	return p.Session.UserChannelPermissions(p.Message.Author.ID, p.Message.ChannelID)
}

// Latency returns the gateway heartbeat latency.
func (p *Payload) Latency() time.Duration {
	if p.Session == nil {
		return 0
	}
	return p.Session.HeartbeatLatency()
}

// EventFromInteraction translates an application command interaction into a
// structured event. Subcommand group and subcommand options become the path;
// the remaining options become named values.
func EventFromInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) (*cmd.Event, error) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil, fmt.Errorf("unsupported interaction type %v", i.Type)
	}
	data := i.ApplicationCommandData()

	ev := &cmd.Event{
		Path:       cmd.Path{Command: data.Name},
		Options:    make(map[string]any),
		Structured: true,
		GuildID:    i.GuildID,
		ChannelID:  i.ChannelID,
		UserID:     interactionUserID(i.Interaction),
		Private:    i.GuildID == "",
		Data:       &Payload{Session: s, Interaction: i},
	}

	opts := data.Options
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup {
		ev.Path.Group = opts[0].Name
		opts = opts[0].Options
	}
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		ev.Path.SubCommand = opts[0].Name
		opts = opts[0].Options
	}
	if ev.Path.Group != "" && ev.Path.SubCommand == "" {
		return nil, fmt.Errorf("group %q invoked without a subcommand", ev.Path.Group)
	}

	for _, o := range opts {
		ev.Options[o.Name] = o.Value
	}
	return ev, nil
}

// EventFromMessage translates a prefixed chat message into a token-stream
// event. ok is false when the message is not addressed to a known command.
func EventFromMessage(reg *cmd.Registry, s *discordgo.Session, m *discordgo.MessageCreate, prefix string) (ev *cmd.Event, ok bool, err error) {
	if m.Author == nil || m.Author.Bot || prefix == "" || !strings.HasPrefix(m.Content, prefix) {
		return nil, false, nil
	}

	tokens, err := args.Tokenize(strings.TrimPrefix(m.Content, prefix))
	if err != nil {
		return nil, false, err
	}
	path, rest, ok := reg.ResolveTokens(tokens)
	if !ok {
		return nil, false, nil
	}

	return &cmd.Event{
		Path:      path,
		Tokens:    rest,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		Private:   m.GuildID == "",
		Data:      &Payload{Session: s, Message: m},
	}, true, nil
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
