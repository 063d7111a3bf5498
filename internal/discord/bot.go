package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/internal/config"
	"github.com/keshon/slashkit/internal/logger"
	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/keshon/slashkit/pkg/jobmgr"
	"go.uber.org/zap"
)

// Bot connects a dispatcher to a Discord gateway session.
type Bot struct {
	cfg        *config.Config
	dispatcher *cmd.Dispatcher
	log        *zap.Logger

	session *discordgo.Session
	jobs    *jobmgr.Manager

	mu     sync.Mutex
	ctx    context.Context
	appID  string
	synced bool
}

// New wires dispatcher to s. The session should not be open yet.
func New(cfg *config.Config, s *discordgo.Session, dispatcher *cmd.Dispatcher, jobs *jobmgr.Manager, log *zap.Logger) *Bot {
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	return &Bot{cfg: cfg, session: s, dispatcher: dispatcher, jobs: jobs, log: log}
}

// Run opens the gateway connection and serves commands until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	s := b.session

	b.mu.Lock()
	b.ctx = logger.ContextWithLogger(ctx, b.log)
	b.mu.Unlock()

	s.AddHandler(b.onReady)
	s.AddHandler(b.onInteractionCreate)
	s.AddHandler(b.onMessageCreate)

	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer s.Close()

	<-ctx.Done()
	b.log.Info("shutdown signal received, closing session")
	return nil
}

func (b *Bot) baseContext() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil {
		return logger.ContextWithLogger(context.Background(), b.log)
	}
	return b.ctx
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("discord bot is running", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))

	if !b.cfg.SyncCommands {
		b.log.Info("command sync skipped")
		return
	}

	// Ready fires again after every reconnect; the tree only needs one sync.
	b.mu.Lock()
	b.appID = r.User.ID
	first := !b.synced
	b.synced = true
	b.mu.Unlock()

	if first {
		if err := b.Resync(false); err != nil {
			b.log.Warn("command sync not started", zap.Error(err))
		}
	}
}

// SyncJob is the job name command syncs run under.
const SyncJob = "sync-commands"

// Resync publishes the command tree in the background. The job outlives the
// caller and stops with the bot. With force set, cached hashes are ignored and
// every scope is overwritten.
func (b *Bot) Resync(force bool) error {
	b.mu.Lock()
	appID := b.appID
	b.mu.Unlock()
	if appID == "" {
		return errors.New("bot is not connected yet")
	}

	return b.jobs.StartAsync(b.baseContext(), SyncJob, func(ctx context.Context) error {
		syncer := NewSyncer(b.session, b.cfg.CommandCache, b.log)
		syncer.Force = force
		n, err := syncer.Sync(ctx, appID, b.dispatcher.Registry())
		if err != nil {
			return fmt.Errorf("command sync: %w", err)
		}
		b.log.Info("command sync finished", zap.Int("updated_scopes", n), zap.Bool("forced", force))
		return nil
	})
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		b.log.Debug("ignoring interaction", zap.Int("type", int(i.Type)))
		return
	}

	ev, err := EventFromInteraction(s, i)
	if err != nil {
		b.log.Warn("malformed interaction", zap.Error(err))
		return
	}
	b.dispatch(ev, NewInteractionResponder(s, i.Interaction))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State != nil && s.State.User != nil && m.Author != nil && m.Author.ID == s.State.User.ID {
		return
	}

	ev, ok, err := EventFromMessage(b.dispatcher.Registry(), s, m, b.cfg.Prefix)
	if err != nil {
		var perr *args.ParseError
		if errors.As(err, &perr) {
			resp := NewMessageResponder(s, m.Message)
			if rerr := resp.Ack(b.baseContext(), true, perr.Reason); rerr != nil {
				b.log.Warn("failed to send tokenizer error", zap.Error(rerr))
			}
		}
		return
	}
	if !ok {
		return
	}
	b.dispatch(ev, NewMessageResponder(s, m.Message))
}

func (b *Bot) dispatch(ev *cmd.Event, resp cmd.Responder) {
	state, err := b.dispatcher.Call(b.baseContext(), ev, resp)
	if err != nil {
		b.log.Debug("command finished", zap.Stringer("state", state), zap.String("path", ev.Path.String()), zap.Error(err))
	}
}
