package cmd

import (
	"fmt"
	"sort"
	"strings"
)

// Registry stores validated root commands by name. It does not perform
// dispatch; a Dispatcher resolves events against it.
type Registry struct {
	roots map[string]*Node
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{roots: make(map[string]*Node)}
}

// Register validates a root command and adds it.
func (r *Registry) Register(n *Node) error {
	if n == nil {
		return fmt.Errorf("register: nil command")
	}
	if n.parent != nil {
		return &InvalidCommandError{Command: n.FullName(), Reason: "only root commands can be registered"}
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if _, dup := r.roots[n.name]; dup {
		return &InvalidCommandError{Command: n.name, Reason: "a command with this name is already registered"}
	}
	r.roots[n.name] = n
	return nil
}

// Get returns the root command with the given name, or nil.
func (r *Registry) Get(name string) *Node {
	return r.roots[strings.ToLower(name)]
}

// All returns all registered roots, sorted by name.
func (r *Registry) All() []*Node {
	list := make([]*Node, 0, len(r.roots))
	for _, n := range r.roots {
		list = append(list, n)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].name < list[j].name
	})
	return list
}

// Resolve finds the node an event path names: the root itself, a subcommand
// directly under it, or a subcommand inside one of its groups. Names match
// case-insensitively.
func (r *Registry) Resolve(p Path) (*Node, error) {
	p.Command = strings.ToLower(p.Command)
	p.Group = strings.ToLower(p.Group)
	p.SubCommand = strings.ToLower(p.SubCommand)

	root := r.roots[p.Command]
	if root == nil {
		return nil, &ResolutionError{Path: p, Reason: "unknown command"}
	}

	var target *Node
	switch {
	case p.Group != "":
		g := root.groups[p.Group]
		if g == nil {
			return nil, &ResolutionError{Path: p, Reason: fmt.Sprintf("unknown group %q", p.Group)}
		}
		target = g.find(p.SubCommand)
	case p.SubCommand != "":
		target = findNode(root.subcommands, p.SubCommand)
	default:
		target = root
	}

	if target == nil {
		return nil, &ResolutionError{Path: p, Reason: fmt.Sprintf("unknown subcommand %q", p.SubCommand)}
	}
	if !target.Callable() {
		return nil, &ResolutionError{Path: p, Reason: "command has no action"}
	}
	return target, nil
}

// ResolveTokens maps the leading tokens of a free-text invocation onto a
// path and returns the tokens left for the argument parser. ok is false
// when the tokens do not reach a callable node.
func (r *Registry) ResolveTokens(tokens []string) (p Path, rest []string, ok bool) {
	if len(tokens) == 0 {
		return Path{}, nil, false
	}
	root := r.Get(tokens[0])
	if root == nil {
		return Path{Command: strings.ToLower(tokens[0])}, tokens[1:], false
	}
	p.Command, rest = root.name, tokens[1:]

	switch {
	case len(root.groups) > 0:
		if len(rest) < 2 {
			return p, rest, false
		}
		g := root.groups[strings.ToLower(rest[0])]
		if g == nil {
			return p, rest, false
		}
		sub := g.find(strings.ToLower(rest[1]))
		if sub == nil {
			return p, rest, false
		}
		p.Group, p.SubCommand = g.name, sub.name
		return p, rest[2:], true
	case len(root.subcommands) > 0:
		if len(rest) == 0 {
			return p, rest, false
		}
		sub := findNode(root.subcommands, strings.ToLower(rest[0]))
		if sub == nil {
			return p, rest, false
		}
		p.SubCommand = sub.name
		return p, rest[1:], true
	}
	return p, rest, root.Callable()
}
