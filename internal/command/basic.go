package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/keshon/slashkit/internal/checks"
	"github.com/keshon/slashkit/internal/docs"
	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/keshon/slashkit/pkg/converter"
	"github.com/keshon/slashkit/pkg/jobmgr"
	"github.com/keshon/slashkit/pkg/report"
)

// latencySource is implemented by adapter payloads connected to a gateway.
type latencySource interface {
	Latency() time.Duration
}

func pingCommand(d Deps) *cmd.Node {
	return cmd.New("ping", "Check bot latency").
		Extension("core").
		Action(func(c *cmd.Context) error {
			msg := "🏓 Pong!"
			if src, ok := c.Event.Data.(latencySource); ok {
				msg += fmt.Sprintf(" %dms.", src.Latency().Milliseconds())
			}
			if up := converter.HumanizeDuration(time.Since(d.Started)); up != "" {
				msg += " Up for " + up + "."
			}
			return c.Reply(msg)
		})
}

type rollArgs struct {
	formula *args.Arg[Formula]
	label   *args.Arg[string]
}

func newRollArgs(s *args.Set) *rollArgs {
	return &rollArgs{
		formula: args.Add(s, "formula", "Supports `2d6+1d4*2-3` and similar math", converter.Required(Dice())),
		label:   args.Add(s, "label", "What the roll is for", converter.Defaulting(converter.Words(), "")),
	}
}

func rollCommand(d Deps) *cmd.Node {
	n := cmd.New("roll", "Roll dice like `2d20+1d6-2`").
		Extension("fun").
		Acknowledge(true, true)
	return cmd.Handle(n, newRollArgs, func(c *cmd.Context, a *rollArgs) error {
		f := a.formula.Value()
		r, err := f.Roll(d.Intn)
		if errors.Is(err, ErrDivisionByZero) {
			return c.Reply("Division by zero is forbidden. Even in games.")
		}
		if err != nil {
			return err
		}

		title := "🎲 Dice Roll"
		if label := a.label.Value(); label != "" {
			title += ": " + label
		}
		return c.Reply(fmt.Sprintf("**%s**\n**User Input**: `%s`\n**Calculation**: %s\n**Result**: **%d**",
			title, f.Text, r.Detail, r.Total))
	})
}

type feedbackArgs struct {
	id      *args.Arg[string]
	message *args.Arg[string]
}

func newFeedbackArgs(s *args.Set) *feedbackArgs {
	return &feedbackArgs{
		id:      args.Add(s, "id", "The error id you were given", converter.Required(converter.String())),
		message: args.Add(s, "message", "What you were doing when it happened", converter.Required(converter.Words())),
	}
}

func feedbackCommand(sink report.FeedbackSink) *cmd.Node {
	n := cmd.New(FeedbackCommand, "Tell the staff what happened before an error").Extension("core")
	return cmd.Handle(n, newFeedbackArgs, func(c *cmd.Context, a *feedbackArgs) error {
		id := a.id.Value()
		err := sink.Feedback(c.Context(), id, c.Event.UserID, a.message.Value())
		if errors.Is(err, report.ErrUnknownID) {
			return c.Reply(fmt.Sprintf("I don't know error `%s`. It may have expired or already received feedback.", id))
		}
		if err != nil {
			return fmt.Errorf("forward feedback: %w", err)
		}
		return c.Reply(fmt.Sprintf("Thanks! Your feedback on `%s` was forwarded to the staff.", id))
	})
}

func maintenanceCommand(reg *cmd.Registry, d Deps) (*cmd.Node, error) {
	root := cmd.New("maintenance", "Bot maintenance commands").
		Extension("core").
		Guild(d.DevGuildID).
		Check(checks.UserIn(d.DeveloperID), checks.GuildOnly())

	status := cmd.New("status", "Show runtime statistics").Action(func(c *cmd.Context) error {
		roots := reg.All()
		callable := 0
		for _, r := range roots {
			callable += len(docs.Leaves(r))
		}
		uptime := converter.HumanizeDuration(time.Since(d.Started))
		if uptime == "" {
			uptime = "less than a second"
		}

		msg := fmt.Sprintf("**Uptime**: %s\n**Commands**: %d roots, %d callable", uptime, len(roots), callable)
		if d.Tracker != nil {
			msg += fmt.Sprintf("\n**Tracked reports**: %d", d.Tracker.Len())
		}
		if d.Jobs != nil {
			msg += "\n**Jobs**: " + d.Jobs.Status()
		}
		return c.Reply(msg)
	})
	if err := root.SubCommand(status); err != nil {
		return nil, err
	}

	if d.Resync == nil {
		return root, nil
	}
	resync := cmd.Handle(cmd.New("resync", "Republish slash commands to Discord"), newResyncArgs, func(c *cmd.Context, a *resyncArgs) error {
		err := d.Resync(a.force.Value())
		if errors.Is(err, jobmgr.ErrRunning) {
			return c.Reply("A command sync is already running.")
		}
		if err != nil {
			return err
		}
		return c.Reply("Command sync started.")
	})
	if err := root.SubCommand(resync); err != nil {
		return nil, err
	}
	return root, nil
}

type resyncArgs struct {
	force *args.Arg[bool]
}

func newResyncArgs(s *args.Set) *resyncArgs {
	return &resyncArgs{
		force: args.Add(s, "force", "Ignore cached hashes and overwrite every scope", converter.Defaulting(converter.Bool(), false)),
	}
}
