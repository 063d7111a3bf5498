// Package cmd provides the command tree and its dispatcher. A root Node either
// runs an action itself or routes to subcommands, possibly arranged in named
// groups. How events arrive and how replies leave (Discord slash, prefix
// messages, a terminal) is defined by adapters that build an Event and a
// Responder and hand them to a Dispatcher.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/slashkit/pkg/args"
	"go.uber.org/zap"
)

// MaxChildren is the platform ceiling on subcommands and on groups per node.
const MaxChildren = 10

// Check gates a node. Returning false aborts the invocation silently.
type Check func(ctx context.Context, ev *Event) bool

// Node is one invocable unit in the command tree.
type Node struct {
	name        string
	description string
	extension   string
	guildID     string
	autoAck     bool
	public      bool

	checks  []Check
	declare func(*args.Set) any
	action  func(c *Context, parsed any) error

	subcommands []*Node
	groups      map[string]*Group
	groupOrder  []string

	parent *Node
	group  *Group
}

// New starts a node. Auto-acknowledgment is on and silent by default.
func New(name, description string) *Node {
	return &Node{
		name:        strings.ToLower(name),
		description: description,
		autoAck:     true,
		groups:      make(map[string]*Group),
	}
}

// Extension names the module that owns the node. It is reported with failures.
func (n *Node) Extension(name string) *Node {
	n.extension = name
	return n
}

// Guild restricts a root node to one guild.
func (n *Node) Guild(id string) *Node {
	n.guildID = id
	return n
}

// Acknowledge configures whether the invocation is acknowledged as soon as it
// passes its checks, and whether that acknowledgment is visible to everyone.
func (n *Node) Acknowledge(auto, public bool) *Node {
	n.autoAck = auto
	n.public = public
	return n
}

// Check appends checks. They run after every ancestor's checks.
func (n *Node) Check(checks ...Check) *Node {
	n.checks = append(n.checks, checks...)
	return n
}

// Action sets a body that takes no arguments.
func (n *Node) Action(fn func(c *Context) error) *Node {
	n.declare = nil
	n.action = func(c *Context, _ any) error { return fn(c) }
	return n
}

// Handle sets a body together with the factory declaring its arguments. The
// factory runs once per invocation and fn only sees the populated result.
func Handle[T any](n *Node, factory func(*args.Set) T, fn func(c *Context, a T) error) *Node {
	n.declare = func(s *args.Set) any { return factory(s) }
	n.action = func(c *Context, parsed any) error { return fn(c, parsed.(T)) }
	return n
}

func (n *Node) Name() string { return n.name }
func (n *Node) Description() string { return n.description }
func (n *Node) GuildID() string { return n.guildID }
func (n *Node) Public() bool { return n.public }
func (n *Node) AutoAck() bool { return n.autoAck }
func (n *Node) Parent() *Node { return n.parent }

// Owner returns the group holding the node, or nil.
func (n *Node) Owner() *Group { return n.group }

// Callable reports whether the node has an action.
func (n *Node) Callable() bool { return n.action != nil }

// Root walks up to the top-level node.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// ExtensionName returns the extension of the root node.
func (n *Node) ExtensionName() string { return n.Root().extension }

// FullName joins the path of the node with spaces, e.g. "tools time humanize".
func (n *Node) FullName() string {
	parts := []string{n.name}
	if n.group != nil {
		parts = append([]string{n.group.name}, parts...)
	}
	if n.parent != nil {
		parts = append([]string{n.parent.FullName()}, parts...)
	}
	return strings.Join(parts, " ")
}

// SubCommands returns the direct subcommands.
func (n *Node) SubCommands() []*Node { return n.subcommands }

// Groups returns the groups in registration order.
func (n *Node) Groups() []*Group {
	out := make([]*Group, 0, len(n.groupOrder))
	for _, name := range n.groupOrder {
		out = append(out, n.groups[name])
	}
	return out
}

// Options returns the argument declarations of the node, or nil.
func (n *Node) Options() []args.Option {
	if n.declare == nil {
		return nil
	}
	s := args.NewSet()
	n.declare(s)
	return s.Options()
}

// SubCommand attaches sub to n. A rejected registration is logged, returned,
// and leaves n unchanged.
func (n *Node) SubCommand(sub *Node) error {
	var reason string
	switch {
	case sub == nil:
		reason = "subcommand is nil"
	case n.parent != nil:
		reason = "subcommands cannot be nested inside subcommands"
	case len(n.groups) > 0:
		reason = "node already has groups"
	case len(n.subcommands) >= MaxChildren:
		reason = fmt.Sprintf("node already has %d subcommands", MaxChildren)
	case findNode(n.subcommands, sub.name) != nil:
		reason = fmt.Sprintf("duplicate subcommand %q", sub.name)
	}
	if reason != "" {
		return n.reject(childName(sub), reason, nil)
	}

	sub.parent = n
	if err := sub.Validate(); err != nil {
		sub.parent = nil
		return n.reject(sub.name, "subcommand is invalid", err)
	}
	n.subcommands = append(n.subcommands, sub)
	return nil
}

// Group attaches a named group to a root node. build fills in the group's
// subcommands before it is validated; a failing group is not attached.
func (n *Node) Group(name, description string, build func(g *Group)) (*Group, error) {
	name = strings.ToLower(name)

	var reason string
	switch {
	case n.parent != nil:
		reason = "only root commands can hold groups"
	case len(n.subcommands) > 0:
		reason = "node already has subcommands"
	case len(n.groups) >= MaxChildren:
		reason = fmt.Sprintf("node already has %d groups", MaxChildren)
	default:
		if _, dup := n.groups[name]; dup {
			reason = fmt.Sprintf("duplicate group %q", name)
		}
	}
	if reason != "" {
		return nil, n.reject(name, reason, nil)
	}

	g := &Group{name: name, description: description, parent: n}
	if build != nil {
		build(g)
	}
	if err := g.validate(); err != nil {
		return nil, n.reject(name, "group is invalid", err)
	}
	n.groups[name] = g
	n.groupOrder = append(n.groupOrder, name)
	return g, nil
}

func (n *Node) reject(child, reason string, cause error) error {
	err := &RegistrationError{Parent: n.FullName(), Child: child, Reason: reason, Err: cause}
	zap.L().Warn("command registration rejected",
		zap.String("parent", err.Parent),
		zap.String("child", child),
		zap.Error(err),
	)
	return err
}

// lineage lists the node and its ancestors, root first.
func (n *Node) lineage() []*Node {
	var out []*Node
	for cur := n; cur != nil; cur = cur.parent {
		out = append([]*Node{cur}, out...)
	}
	return out
}

func findNode(nodes []*Node, name string) *Node {
	for _, n := range nodes {
		if n.name == name {
			return n
		}
	}
	return nil
}

func childName(n *Node) string {
	if n == nil {
		return ""
	}
	return n.name
}

// Group is a named set of subcommands one level below a root node.
type Group struct {
	name        string
	description string
	parent      *Node
	subcommands []*Node
}

func (g *Group) Name() string { return g.name }
func (g *Group) Description() string { return g.description }
func (g *Group) Parent() *Node { return g.parent }
func (g *Group) SubCommands() []*Node { return g.subcommands }
func (g *Group) fullName() string { return g.parent.FullName() + " " + g.name }
func (g *Group) find(name string) *Node { return findNode(g.subcommands, name) }

// SubCommand attaches sub to the group under the same rules as
// Node.SubCommand.
func (g *Group) SubCommand(sub *Node) error {
	var reason string
	switch {
	case sub == nil:
		reason = "subcommand is nil"
	case len(g.subcommands) >= MaxChildren:
		reason = fmt.Sprintf("group already has %d subcommands", MaxChildren)
	case g.find(sub.name) != nil:
		reason = fmt.Sprintf("duplicate subcommand %q", sub.name)
	}
	if reason != "" {
		return g.reject(childName(sub), reason, nil)
	}

	sub.parent, sub.group = g.parent, g
	if err := sub.Validate(); err != nil {
		sub.parent, sub.group = nil, nil
		return g.reject(sub.name, "subcommand is invalid", err)
	}
	g.subcommands = append(g.subcommands, sub)
	return nil
}

func (g *Group) reject(child, reason string, cause error) error {
	err := &RegistrationError{Parent: g.fullName(), Child: child, Reason: reason, Err: cause}
	zap.L().Warn("command registration rejected",
		zap.String("parent", err.Parent),
		zap.String("child", child),
		zap.Error(err),
	)
	return err
}
