// Package command holds the bot's built-in commands.
package command

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/keshon/slashkit/pkg/jobmgr"
	"github.com/keshon/slashkit/pkg/report"
)

// FeedbackCommand is the name the dispatcher should advertise in failure
// messages when feedback is enabled.
const FeedbackCommand = "feedback"

// Deps carries what the built-in commands need from the running process.
type Deps struct {
	DeveloperID string
	DevGuildID  string

	// Feedback receives /feedback messages. Nil leaves the command out.
	Feedback report.FeedbackSink
	Tracker  *report.Tracker

	// Jobs lists background work in maintenance status.
	Jobs *jobmgr.Manager
	// Resync republishes the command tree. Nil leaves out maintenance resync.
	Resync func(force bool) error

	Started time.Time
	// Intn returns a number in [0, n). Defaults to math/rand/v2.
	Intn func(n int) int
}

// Register adds every built-in command to reg.
func Register(reg *cmd.Registry, d Deps) error {
	if d.Started.IsZero() {
		d.Started = time.Now()
	}
	if d.Intn == nil {
		d.Intn = rand.IntN
	}

	maintenance, err := maintenanceCommand(reg, d)
	if err != nil {
		return err
	}
	tools, err := toolsCommand()
	if err != nil {
		return err
	}

	roots := []*cmd.Node{
		pingCommand(d),
		rollCommand(d),
		helpCommand(reg),
		maintenance,
		tools,
	}
	if d.Feedback != nil {
		roots = append(roots, feedbackCommand(d.Feedback))
	}

	for _, n := range roots {
		if err := reg.Register(n); err != nil {
			return fmt.Errorf("register %s: %w", n.Name(), err)
		}
	}
	return nil
}
