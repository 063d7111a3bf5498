package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/keshon/slashkit/internal/logger"
	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <command> [group] [subcommand] [arguments...]",
	Short: "Dispatch one command",
	Example: `  slashkit run roll 2d6+3 sneak attack
  slashkit run tools numbers clamp 150
  slashkit run tools time humanize --option duration="1d 2h"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(c *cobra.Command, argv []string) error {
		a, err := newApp(c)
		if err != nil {
			return err
		}
		defer a.log.Sync()

		ev, err := buildEvent(c, a.registry, argv)
		if err != nil {
			return err
		}

		ctx := logger.ContextWithLogger(c.Context(), a.log)
		state, err := a.dispatcher.Call(ctx, ev, &terminal{w: c.OutOrStdout()})
		var perr *args.ParseError
		switch {
		case state == cmd.StateAborted:
			return errors.New("command checks failed")
		case errors.As(err, &perr):
			return nil
		case err != nil:
			return fmt.Errorf("%s: %w", state, err)
		}
		return nil
	},
}

func init() {
	addEventFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addEventFlags(c *cobra.Command) {
	c.Flags().StringArrayP("option", "o", nil, "structured option as name=value (repeatable)")
	c.Flags().String("guild", "cli-guild", "guild id of the invocation, empty for a direct message")
	c.Flags().String("channel", "cli-channel", "channel id of the invocation")
	c.Flags().String("user", "cli-user", "user id of the invocation")
}

func buildEvent(c *cobra.Command, reg *cmd.Registry, argv []string) (*cmd.Event, error) {
	guild, _ := c.Flags().GetString("guild")
	channel, _ := c.Flags().GetString("channel")
	user, _ := c.Flags().GetString("user")
	options, _ := c.Flags().GetStringArray("option")

	path, rest, ok := reg.ResolveTokens(argv)
	if !ok {
		return nil, fmt.Errorf("no callable command at %q", strings.Join(argv, " "))
	}

	ev := &cmd.Event{
		Path:      path,
		GuildID:   guild,
		ChannelID: channel,
		UserID:    user,
		Private:   guild == "",
	}
	if len(options) == 0 {
		ev.Tokens = rest
		return ev, nil
	}

	if len(rest) > 0 {
		return nil, fmt.Errorf("positional arguments %q cannot be mixed with --option", strings.Join(rest, " "))
	}
	ev.Structured = true
	ev.Options = make(map[string]any, len(options))
	for _, o := range options {
		name, value, found := strings.Cut(o, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("option %q is not name=value", o)
		}
		ev.Options[name] = value
	}
	return ev, nil
}

// terminal prints responses. Deferred acknowledgments print nothing.
type terminal struct {
	w io.Writer
}

func (t *terminal) Ack(_ context.Context, _ bool, content string) error {
	if content == "" {
		return nil
	}
	_, err := fmt.Fprintln(t.w, content)
	return err
}

func (t *terminal) Edit(_ context.Context, content string) error {
	_, err := fmt.Fprintln(t.w, content)
	return err
}
