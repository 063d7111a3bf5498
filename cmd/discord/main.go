package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/internal/command"
	"github.com/keshon/slashkit/internal/config"
	"github.com/keshon/slashkit/internal/discord"
	"github.com/keshon/slashkit/internal/logger"
	"github.com/keshon/slashkit/internal/middleware"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/keshon/slashkit/pkg/jobmgr"
	"github.com/keshon/slashkit/pkg/report"
	"go.uber.org/zap"
)

// failureSink is what the bot needs from an error reporter.
type failureSink interface {
	report.Reporter
	report.FeedbackSink
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting discord bot")
	if err := run(ctx, cfg, log); err != nil {
		log.Error("discord bot error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("discord bot exited cleanly")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	tracker, err := report.NewTracker(cfg.FeedbackCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create report tracker: %w", err)
	}

	var sink failureSink
	if cfg.WebhookConfigured() {
		sink = report.NewWebhookReporter(session, cfg.ErrorWebhookID, cfg.ErrorWebhookToken, tracker, log)
		log.Info("reporting failures to webhook", zap.String("webhook", cfg.ErrorWebhookID))
	} else {
		sink = report.NewLogReporter(log, tracker)
	}

	jobs := jobmgr.NewManager(log)
	var bot *discord.Bot

	deps := command.Deps{
		DeveloperID: cfg.DeveloperID,
		DevGuildID:  cfg.DevGuildID,
		Tracker:     tracker,
		Jobs:        jobs,
		Started:     time.Now(),
	}
	if cfg.SyncCommands {
		deps.Resync = func(force bool) error { return bot.Resync(force) }
	}
	opts := []cmd.Option{
		cmd.WithLogger(log),
		cmd.WithLookup(discord.NewStateLookup(session)),
		cmd.WithMiddleware(middleware.WithCommandLogger()),
	}
	if cfg.ReportErrors {
		deps.Feedback = sink
		opts = append(opts, cmd.WithReporter(sink), cmd.WithFeedback(command.FeedbackCommand))
	}

	reg := cmd.NewRegistry()
	if err := command.Register(reg, deps); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	log.Info("commands registered", zap.Int("roots", len(reg.All())))

	bot = discord.New(cfg, session, cmd.NewDispatcher(reg, opts...), jobs, log)
	return bot.Run(ctx)
}
