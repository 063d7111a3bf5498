package discord

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/keshon/slashkit/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func noop(*cmd.Context) error { return nil }

type echoArgs struct {
	text  *args.Arg[string]
	times *args.Arg[int64]
}

func newEchoArgs(s *args.Set) *echoArgs {
	return &echoArgs{
		text:  args.Add(s, "text", "What to echo", converter.Required(converter.String())),
		times: args.Add(s, "times", "", converter.Defaulting(converter.Int(), 1)),
	}
}

func testRegistry(t *testing.T) *cmd.Registry {
	t.Helper()
	reg := cmd.NewRegistry()

	echo := cmd.Handle(cmd.New("echo", "Echo text back"), newEchoArgs, func(*cmd.Context, *echoArgs) error { return nil })
	require.NoError(t, reg.Register(echo))

	tools := cmd.New("tools", "Utilities")
	_, err := tools.Group("time", "Time helpers", func(g *cmd.Group) {
		require.NoError(t, g.SubCommand(cmd.New("now", "Current time").Action(noop)))
	})
	require.NoError(t, err)
	require.NoError(t, reg.Register(tools))

	dev := cmd.New("debug", "Developer tools").Guild("42")
	require.NoError(t, dev.SubCommand(cmd.New("state", "Dump state").Action(noop)))
	require.NoError(t, reg.Register(dev))
	return reg
}

func TestDefinition(t *testing.T) {
	reg := testRegistry(t)

	echo := Definition(reg.Get("echo"))
	assert.Equal(t, discordgo.ChatApplicationCommand, echo.Type)
	require.Len(t, echo.Options, 2)
	assert.Equal(t, "text", echo.Options[0].Name)
	assert.True(t, echo.Options[0].Required)
	assert.Equal(t, discordgo.ApplicationCommandOptionString, echo.Options[0].Type)
	assert.False(t, echo.Options[1].Required)
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, echo.Options[1].Type)
	assert.NotEmpty(t, echo.Options[1].Description, "signature stands in for a missing description")

	tools := Definition(reg.Get("tools"))
	require.Len(t, tools.Options, 1)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommandGroup, tools.Options[0].Type)
	require.Len(t, tools.Options[0].Options, 1)
	assert.Equal(t, "now", tools.Options[0].Options[0].Name)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, tools.Options[0].Options[0].Type)

	debug := Definition(reg.Get("debug"))
	assert.Equal(t, "42", debug.GuildID)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, debug.Options[0].Type)
}

func TestArgumentOptionsRequiredFirst(t *testing.T) {
	opts := argumentOptions([]args.Option{
		{Name: "a", Description: "a", Type: discordgo.ApplicationCommandOptionString, Policy: converter.PolicyOptional},
		{Name: "b", Description: "b", Type: discordgo.ApplicationCommandOptionString, Policy: converter.PolicyRequired},
	})
	assert.False(t, opts[0].Required)
	assert.False(t, opts[1].Required)
}

func TestDefinitionsScopes(t *testing.T) {
	scopes := Definitions(testRegistry(t))
	require.Len(t, scopes, 2)
	assert.Len(t, scopes[GlobalScope], 2)
	require.Len(t, scopes["42"], 1)
	assert.Equal(t, "debug", scopes["42"][0].Name)

	empty := Definitions(cmd.NewRegistry())
	assert.Contains(t, empty, GlobalScope, "global scope is always published so stale commands get cleared")
}

func TestHashCommands(t *testing.T) {
	reg := testRegistry(t)
	a := hashCommands([]*discordgo.ApplicationCommand{Definition(reg.Get("echo"))})
	b := hashCommands([]*discordgo.ApplicationCommand{Definition(reg.Get("echo"))})
	assert.Equal(t, a, b)

	changed := Definition(reg.Get("echo"))
	changed.Description = "Something else"
	assert.NotEqual(t, a, hashCommands([]*discordgo.ApplicationCommand{changed}))

	swapped := Definition(reg.Get("echo"))
	swapped.Options[0], swapped.Options[1] = swapped.Options[1], swapped.Options[0]
	assert.NotEqual(t, a, hashCommands([]*discordgo.ApplicationCommand{swapped}))
}

type fakeOverwriter struct {
	mu     sync.Mutex
	calls  map[string]int
	failOn string
}

func (f *fakeOverwriter) ApplicationCommandBulkOverwrite(_ string, guildID string, cmds []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if guildID == f.failOn {
		return nil, errors.New("boom")
	}
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[guildID]++
	return cmds, nil
}

func TestSyncerSkipsUnchangedScopes(t *testing.T) {
	dir := t.TempDir()
	reg := testRegistry(t)
	client := &fakeOverwriter{failOn: "none"}
	s := NewSyncer(client, dir, zap.NewNop())

	n, err := s.Sync(context.Background(), "app", reg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(dir, "global.json"))
	assert.FileExists(t, filepath.Join(dir, "42.json"))

	n, err = s.Sync(context.Background(), "app", reg)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, client.calls[GlobalScope])
	assert.Equal(t, 1, client.calls["42"])

	require.NoError(t, os.Remove(filepath.Join(dir, "42.json")))
	n, err = s.Sync(context.Background(), "app", reg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, client.calls["42"])
}

func TestSyncerForce(t *testing.T) {
	dir := t.TempDir()
	reg := testRegistry(t)
	client := &fakeOverwriter{failOn: "none"}

	_, err := NewSyncer(client, dir, zap.NewNop()).Sync(context.Background(), "app", reg)
	require.NoError(t, err)

	forced := NewSyncer(client, dir, zap.NewNop())
	forced.Force = true
	n, err := forced.Sync(context.Background(), "app", reg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, client.calls[GlobalScope])
}

func TestSyncerFailureKeepsCache(t *testing.T) {
	dir := t.TempDir()
	client := &fakeOverwriter{failOn: "42"}
	s := NewSyncer(client, dir, zap.NewNop())

	_, err := s.Sync(context.Background(), "app", testRegistry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guild 42")
	assert.NoFileExists(t, filepath.Join(dir, "42.json"))
}

func TestEventFromInteraction(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1"}, Permissions: discordgo.PermissionManageMessages},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "tools",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Type: discordgo.ApplicationCommandOptionSubCommandGroup,
				Name: "time",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{{
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Name: "humanize",
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "seconds", Value: float64(90)},
					},
				}},
			}},
		},
	}}

	ev, err := EventFromInteraction(nil, i)
	require.NoError(t, err)
	assert.Equal(t, cmd.Path{Command: "tools", Group: "time", SubCommand: "humanize"}, ev.Path)
	assert.True(t, ev.Structured)
	assert.False(t, ev.Private)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, float64(90), ev.Options["seconds"])

	payload, ok := ev.Data.(*Payload)
	require.True(t, ok)
	perms, err := payload.MemberPermissions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(discordgo.PermissionManageMessages), perms)
}

func TestEventFromInteractionDirectMessage(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		User: &discordgo.User{ID: "u2"},
		Data: discordgo.ApplicationCommandInteractionData{Name: "ping"},
	}}
	ev, err := EventFromInteraction(nil, i)
	require.NoError(t, err)
	assert.True(t, ev.Private)
	assert.Equal(t, "u2", ev.UserID)
	assert.Equal(t, "ping", ev.Path.String())
}

func TestEventFromInteractionRejectsComponents(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{Type: discordgo.InteractionMessageComponent}}
	_, err := EventFromInteraction(nil, i)
	assert.Error(t, err)
}

func message(content string, bot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Bot: bot},
	}}
}

func TestEventFromMessage(t *testing.T) {
	reg := testRegistry(t)

	ev, ok, err := EventFromMessage(reg, nil, message(`!echo "hello world" 3`, false), "!")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "echo", ev.Path.String())
	assert.Equal(t, []string{"hello world", "3"}, ev.Tokens)
	assert.False(t, ev.Structured)

	ev, ok, err = EventFromMessage(reg, nil, message("!TOOLS time now", false), "!")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cmd.Path{Command: "tools", Group: "time", SubCommand: "now"}, ev.Path)
	assert.Empty(t, ev.Tokens)

	for _, m := range []*discordgo.MessageCreate{
		message("echo hi", false),
		message("!echo hi", true),
		message("!unknown", false),
		message("!tools time", false),
	} {
		_, ok, err := EventFromMessage(reg, nil, m, "!")
		assert.NoError(t, err, m.Content)
		assert.False(t, ok, m.Content)
	}

	_, _, err = EventFromMessage(reg, nil, message(`!echo "open`, false), "!")
	var perr *args.ParseError
	assert.ErrorAs(t, err, &perr)
}

type fakeInteractionClient struct {
	responses []*discordgo.InteractionResponse
	edits     []string
}

func (f *fakeInteractionClient) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeInteractionClient) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, *edit.Content)
	return &discordgo.Message{}, nil
}

func TestInteractionResponder(t *testing.T) {
	client := &fakeInteractionClient{}
	r := NewInteractionResponder(client, &discordgo.Interaction{ID: "i1"})
	ctx := context.Background()

	require.NoError(t, r.Ack(ctx, false, ""))
	require.NoError(t, r.Edit(ctx, "done"))
	require.Len(t, client.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, client.responses[0].Type)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, client.responses[0].Data.Flags)
	assert.Equal(t, []string{"done"}, client.edits)

	client = &fakeInteractionClient{}
	r = NewInteractionResponder(client, &discordgo.Interaction{ID: "i2"})
	require.NoError(t, r.Ack(ctx, true, "hi"))
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, client.responses[0].Type)
	assert.Equal(t, "hi", client.responses[0].Data.Content)
	assert.Zero(t, client.responses[0].Data.Flags)
}

type fakeMessageClient struct {
	typing int
	sent   []string
	edited []string
}

func (f *fakeMessageClient) ChannelMessageSendReply(channelID, content string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: "r1", ChannelID: channelID, Content: content}, nil
}

func (f *fakeMessageClient) ChannelMessageEdit(channelID, messageID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edited = append(f.edited, messageID+":"+content)
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (f *fakeMessageClient) ChannelTyping(string, ...discordgo.RequestOption) error {
	f.typing++
	return nil
}

func TestMessageResponder(t *testing.T) {
	client := &fakeMessageClient{}
	r := NewMessageResponder(client, message("!echo hi", false).Message)
	ctx := context.Background()

	require.NoError(t, r.Ack(ctx, false, ""))
	assert.Equal(t, 1, client.typing)

	require.NoError(t, r.Edit(ctx, "first"))
	require.NoError(t, r.Edit(ctx, "second"))
	assert.Equal(t, []string{"first"}, client.sent)
	assert.Equal(t, []string{"r1:second"}, client.edited)
}
