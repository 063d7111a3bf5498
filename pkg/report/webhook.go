package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/keshon/slashkit/pkg/retrylimit"
	"go.uber.org/zap"
)

// Discord rejects message content longer than this.
const maxContent = 2000

// WebhookClient is the part of *discordgo.Session the webhook reporter uses.
type WebhookClient interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// WebhookReporter posts failure events and feedback to a Discord webhook.
type WebhookReporter struct {
	client  WebhookClient
	id      string
	token   string
	tracker *Tracker
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
	log     *zap.Logger
}

// NewWebhookReporter returns a reporter posting to the webhook identified by
// id and token.
func NewWebhookReporter(client WebhookClient, id, token string, tracker *Tracker, log *zap.Logger) *WebhookReporter {
	cfg := retrylimit.DefaultConfig()
	cfg.Logger = log
	return &WebhookReporter{
		client:  client,
		id:      id,
		token:   token,
		tracker: tracker,
		limiter: retrylimit.NewAdaptiveLimiter(1, 1, 5, 1, 0.5),
		retry:   cfg,
		log:     log.Named("report"),
	}
}

func (r *WebhookReporter) Report(ctx context.Context, ev Event) (string, error) {
	id := uuid.NewString()
	if err := r.post(ctx, formatEvent(id, ev)); err != nil {
		return "", fmt.Errorf("post error report: %w", err)
	}
	if r.tracker != nil {
		r.tracker.Add(id)
	}
	r.log.Debug("error report posted", zap.String("id", id))
	return id, nil
}

func (r *WebhookReporter) Feedback(ctx context.Context, id, user, message string) error {
	if r.tracker != nil && !r.tracker.Consume(id) {
		return fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	content := fmt.Sprintf("**Feedback** for `%s` from <@%s>:\n%s", id, user, message)
	if err := r.post(ctx, content); err != nil {
		return fmt.Errorf("post feedback: %w", err)
	}
	return nil
}

func (r *WebhookReporter) post(ctx context.Context, content string) error {
	params := &discordgo.WebhookParams{
		Content:         truncate(content, maxContent),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	return retrylimit.Do(ctx, r.limiter, r.retry, func() error {
		_, err := r.client.WebhookExecute(r.id, r.token, false, params, discordgo.WithContext(ctx))
		return err
	})
}

func formatEvent(id string, ev Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", ev.Message)
	fmt.Fprintf(&b, "id: `%s`\n", id)
	if ev.User != "" {
		fmt.Fprintf(&b, "user: `%s`\n", ev.User)
	}

	keys := make([]string, 0, len(ev.Tags))
	for k := range ev.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: `%s`\n", k, ev.Tags[k])
	}

	if ev.Err != nil {
		fmt.Fprintf(&b, "```\n%s\n```\n", ev.Err.Error())
	}
	for _, crumb := range ev.Breadcrumbs {
		fmt.Fprintf(&b, "- %s [%s] %s\n", crumb.Time.UTC().Format("15:04:05"), crumb.Category, crumb.Message)
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
