package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/keshon/slashkit/pkg/args"
)

// InvalidCommandError reports a structural problem in a command definition.
type InvalidCommandError struct {
	Command string
	Reason  string
}

func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid command %q: %s", e.Command, e.Reason)
}

// RegistrationError reports a child that could not be attached to its parent.
// Err holds the validation failure, if that was the cause.
type RegistrationError struct {
	Parent string
	Child  string
	Reason string
	Err    error
}

func (e *RegistrationError) Error() string {
	msg := fmt.Sprintf("cannot register %q under %q: %s", e.Child, e.Parent, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ResolutionError means an event named a path that is not in the tree.
type ResolutionError struct {
	Path   Path
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve command %q: %s", e.Path.String(), e.Reason)
}

// PanicError wraps a value recovered from a panicking action or converter.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Validate checks the node and everything below it. It is called whenever a
// node is attached to a parent or registered as a root.
func (n *Node) Validate() error {
	invalid := func(format string, a ...any) error {
		return &InvalidCommandError{Command: n.FullName(), Reason: fmt.Sprintf(format, a...)}
	}

	hasChildren := len(n.subcommands) > 0 || len(n.groups) > 0

	switch {
	case n.name == "":
		return invalid("no command name given")
	case n.description == "":
		return invalid("no command description given")
	case n.action == nil && !hasChildren:
		return invalid("no command action or subcommands/groups given")
	case n.action != nil && hasChildren:
		return invalid("a command with subcommands or groups may not have an action")
	case n.parent != nil && hasChildren:
		return invalid("subcommands may not hold subcommands or groups")
	case n.parent != nil && n.guildID != "":
		return invalid("subcommands may not be limited to a guild, set it on the root command instead")
	case len(n.groups) > 0 && len(n.subcommands) > 0:
		return invalid("a command may hold groups or subcommands, not both")
	case len(n.groups) > MaxChildren:
		return invalid("more than %d groups", MaxChildren)
	case len(n.subcommands) > MaxChildren:
		return invalid("more than %d subcommands", MaxChildren)
	}

	if n.declare != nil {
		s := args.NewSet()
		n.declare(s)
		if err := s.Err(); err != nil {
			return invalid("bad arguments: %v", err)
		}
	}

	if err := validateSiblings(n.subcommands); err != nil {
		return invalid("%v", err)
	}
	for _, sub := range n.subcommands {
		if err := sub.Validate(); err != nil {
			return err
		}
	}
	for _, g := range n.Groups() {
		if err := g.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Group) validate() error {
	invalid := func(reason string) error {
		return &InvalidCommandError{Command: g.fullName(), Reason: reason}
	}
	switch {
	case g.name == "":
		return invalid("no group name given")
	case g.description == "":
		return invalid("no group description given")
	case len(g.subcommands) == 0:
		return invalid("group has no subcommands")
	case len(g.subcommands) > MaxChildren:
		return invalid(fmt.Sprintf("more than %d subcommands", MaxChildren))
	}
	if err := validateSiblings(g.subcommands); err != nil {
		return invalid(err.Error())
	}
	for _, sub := range g.subcommands {
		if err := sub.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateSiblings(nodes []*Node) error {
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if _, dup := seen[n.name]; dup {
			return fmt.Errorf("duplicate subcommand %q", n.name)
		}
		seen[n.name] = struct{}{}
	}
	return nil
}
