package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// InteractionClient is the part of *discordgo.Session used to answer
// interactions.
type InteractionClient interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// InteractionResponder answers a slash command interaction.
type InteractionResponder struct {
	client      InteractionClient
	interaction *discordgo.Interaction
}

func NewInteractionResponder(client InteractionClient, i *discordgo.Interaction) *InteractionResponder {
	return &InteractionResponder{client: client, interaction: i}
}

// Ack responds to the interaction. Empty content defers the reply so Edit can
// fill it in later. Silent acknowledgments are ephemeral.
func (r *InteractionResponder) Ack(ctx context.Context, public bool, content string) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}
	if content == "" {
		resp.Type = discordgo.InteractionResponseDeferredChannelMessageWithSource
	}
	if !public {
		resp.Data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.client.InteractionRespond(r.interaction, resp, discordgo.WithContext(ctx))
}

func (r *InteractionResponder) Edit(ctx context.Context, content string) error {
	_, err := r.client.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{Content: &content}, discordgo.WithContext(ctx))
	return err
}

// MessageClient is the part of *discordgo.Session used to answer prefix
// commands.
type MessageClient interface {
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
}

// MessageResponder answers a prefix command by replying to the message and
// editing that reply afterwards. Visibility is ignored since chat messages
// cannot be ephemeral.
type MessageResponder struct {
	client MessageClient
	msg    *discordgo.Message
	reply  *discordgo.Message
}

func NewMessageResponder(client MessageClient, m *discordgo.Message) *MessageResponder {
	return &MessageResponder{client: client, msg: m}
}

// Ack shows a typing indicator for empty content, otherwise replies.
func (r *MessageResponder) Ack(ctx context.Context, _ bool, content string) error {
	if content == "" {
		return r.client.ChannelTyping(r.msg.ChannelID, discordgo.WithContext(ctx))
	}
	return r.send(ctx, content)
}

// Edit replaces the earlier reply, or sends the first one after a deferred
// acknowledgment.
func (r *MessageResponder) Edit(ctx context.Context, content string) error {
	if r.reply == nil {
		return r.send(ctx, content)
	}
	m, err := r.client.ChannelMessageEdit(r.reply.ChannelID, r.reply.ID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("edit reply: %w", err)
	}
	r.reply = m
	return nil
}

func (r *MessageResponder) send(ctx context.Context, content string) error {
	m, err := r.client.ChannelMessageSendReply(r.msg.ChannelID, content, r.msg.Reference(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	r.reply = m
	return nil
}
