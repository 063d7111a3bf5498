package command

import (
	"fmt"
	"strings"

	"github.com/keshon/slashkit/internal/docs"
	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/keshon/slashkit/pkg/converter"
)

type helpArgs struct {
	command *args.Arg[string]
}

func newHelpArgs(s *args.Set) *helpArgs {
	return &helpArgs{
		command: args.Add(s, "command", "Show the details of one command", converter.Optional(converter.Words())),
	}
}

func helpCommand(reg *cmd.Registry) *cmd.Node {
	n := cmd.New("help", "Get a list of available commands").Extension("core")
	return cmd.Handle(n, newHelpArgs, func(c *cmd.Context, a *helpArgs) error {
		if !a.command.Present() {
			return c.Reply(overview(reg))
		}

		tokens := strings.Fields(strings.TrimPrefix(a.command.Value(), "/"))
		if len(tokens) == 0 {
			return c.Reply(overview(reg))
		}
		root := reg.Get(tokens[0])
		if root == nil {
			return c.Reply(fmt.Sprintf("Unknown command `%s`.", tokens[0]))
		}
		if path, _, ok := reg.ResolveTokens(tokens); ok {
			if node, err := reg.Resolve(path); err == nil {
				return c.Reply(describe(node))
			}
		}
		return c.Reply(describe(root))
	})
}

// overview lists every callable command, grouped by the category of the
// extension that owns it.
func overview(reg *cmd.Registry) string {
	var sb strings.Builder
	for i, section := range docs.Sections(reg) {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "**%s**\n", section.Category.Title)
		for _, n := range section.Commands {
			fmt.Fprintf(&sb, "`%s` - %s\n", docs.Usage(n), n.Description())
		}
	}
	return sb.String()
}

// describe renders a callable node with its arguments, or the commands
// below a node that only groups others.
func describe(n *cmd.Node) string {
	var sb strings.Builder
	if !n.Callable() {
		fmt.Fprintf(&sb, "**/%s** - %s\n", n.FullName(), n.Description())
		for _, leaf := range docs.Leaves(n) {
			fmt.Fprintf(&sb, "`%s` - %s\n", docs.Usage(leaf), leaf.Description())
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "`%s`\n%s\n", docs.Usage(n), n.Description())
	for _, o := range n.Options() {
		kind := "optional"
		if o.Required() {
			kind = "required"
		}
		fmt.Fprintf(&sb, "- `%s` (%s, %s)", o.Name, o.Signature, kind)
		if o.Description != "" {
			sb.WriteString(": " + o.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
