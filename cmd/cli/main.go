// Command cli dispatches bot commands locally against a terminal, without a
// Discord connection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/keshon/slashkit/internal/command"
	"github.com/keshon/slashkit/internal/logger"
	"github.com/keshon/slashkit/internal/middleware"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/keshon/slashkit/pkg/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "slashkit",
	Short: "Run and inspect bot commands locally",
	Long: `Run bot commands against the terminal instead of Discord.

Arguments after the command path are parsed exactly like a prefix
message. Use --option to supply named values the way a slash
command interaction does.`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("developer", "", "user id treated as the bot developer")
}

// app is the command tree and dispatcher shared by the subcommands.
type app struct {
	registry   *cmd.Registry
	dispatcher *cmd.Dispatcher
	log        *zap.Logger
}

func newApp(c *cobra.Command) (*app, error) {
	level, _ := c.Flags().GetString("log-level")
	developer, _ := c.Flags().GetString("developer")

	log, err := logger.New(level, "")
	if err != nil {
		return nil, err
	}

	tracker, err := report.NewTracker(0)
	if err != nil {
		return nil, err
	}
	reporter := report.NewLogReporter(log, tracker)

	reg := cmd.NewRegistry()
	if err := command.Register(reg, command.Deps{
		DeveloperID: developer,
		Feedback:    reporter,
		Tracker:     tracker,
		Started:     time.Now(),
	}); err != nil {
		return nil, err
	}

	d := cmd.NewDispatcher(reg,
		cmd.WithLogger(log),
		cmd.WithReporter(reporter),
		cmd.WithFeedback(command.FeedbackCommand),
		cmd.WithMiddleware(middleware.WithCommandLogger()),
	)
	return &app{registry: reg, dispatcher: d, log: log}, nil
}
