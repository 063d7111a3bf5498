// Package args declares command arguments and parses invocations into them.
//
// A command author supplies a factory that declares arguments on a fresh Set
// and returns a struct of typed handles:
//
//	type rollArgs struct {
//		Formula *args.Arg[string]
//		Times   *args.Arg[int64]
//	}
//
//	func newRollArgs(s *args.Set) *rollArgs {
//		return &rollArgs{
//			Formula: args.Add(s, "formula", "Dice to roll", converter.Required(converter.Words())),
//			Times:   args.Add(s, "times", "How often", converter.Defaulting(converter.Int(), 1)),
//		}
//	}
//
// Parse runs the factory once per invocation and only hands the struct back
// after every argument has been settled, so handles are never read half-parsed.
package args

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/pkg/converter"
)

// ParseError is a recoverable failure shown verbatim to the invoking user.
type ParseError struct {
	Argument string
	Reason   string
}

func (e *ParseError) Error() string { return e.Reason }

// Option describes a declared argument for publishing and help output.
type Option struct {
	Name        string
	Description string
	Type        discordgo.ApplicationCommandOptionType
	Signature   string
	Policy      converter.Policy
}

// Required reports whether the platform should insist on the option.
func (o Option) Required() bool { return o.Policy == converter.PolicyRequired }

// binding is the type-erased view the parser has of an Arg.
type binding interface {
	option() Option
	consume(ctx context.Context, sc converter.Scope, tokens []string) (int, error)
	coerce(ctx context.Context, sc converter.Scope, value any, ok bool) error
}

// Set is an ordered collection of named arguments.
type Set struct {
	bindings []binding
	names    map[string]struct{}
	err      error
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{names: make(map[string]struct{})}
}

// Options lists the declarations in order.
func (s *Set) Options() []Option {
	out := make([]Option, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b.option())
	}
	return out
}

// Err returns the first declaration error, such as a duplicate name.
func (s *Set) Err() error { return s.err }

// Len returns the number of declared arguments.
func (s *Set) Len() int { return len(s.bindings) }

// Arg is a typed handle on one declared argument.
type Arg[T any] struct {
	name        string
	description string
	spec        converter.Spec[T]
	value       T
	present     bool
}

// Add declares an argument on s and returns its handle. Declaration order is
// parse order.
func Add[T any](s *Set, name, description string, spec converter.Spec[T]) *Arg[T] {
	a := &Arg[T]{name: name, description: description, spec: spec}
	if spec.Policy == converter.PolicyDefaulting {
		a.value = spec.Default
	}
	switch {
	case name == "":
		s.fail(fmt.Errorf("argument name must not be empty"))
	case spec.Converter == nil:
		s.fail(fmt.Errorf("argument %q has no converter", name))
	default:
		if _, dup := s.names[name]; dup {
			s.fail(fmt.Errorf("duplicate argument name %q", name))
		}
	}
	s.names[name] = struct{}{}
	s.bindings = append(s.bindings, a)
	return a
}

func (s *Set) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Name returns the declared name.
func (a *Arg[T]) Name() string { return a.name }

// Value returns the parsed value, the default for a defaulting argument that
// matched nothing, or the zero value for an unset optional argument.
func (a *Arg[T]) Value() T { return a.value }

// Present reports whether the value came from user input.
func (a *Arg[T]) Present() bool { return a.present }

func (a *Arg[T]) option() Option {
	o := Option{
		Name:        a.name,
		Description: a.description,
		Policy:      a.spec.Policy,
	}
	if a.spec.Converter != nil {
		o.Type = a.spec.Converter.OptionType()
		o.Signature = a.spec.Converter.Signature()
	}
	return o
}

func (a *Arg[T]) consume(ctx context.Context, sc converter.Scope, tokens []string) (int, error) {
	r, err := a.spec.Converter.Parse(ctx, sc, tokens)
	if err != nil {
		return 0, fmt.Errorf("argument %q: %w", a.name, err)
	}
	if r.Status == converter.StatusConsumed && (r.Count > len(tokens) || r.Count < 0) {
		return 0, fmt.Errorf("argument %q: converter reported consuming %d of %d tokens", a.name, r.Count, len(tokens))
	}
	return a.settle(r, tokens)
}

func (a *Arg[T]) coerce(ctx context.Context, sc converter.Scope, value any, ok bool) error {
	if !ok {
		_, err := a.settle(converter.NoMatch[T](), nil)
		return err
	}
	r, err := a.spec.Converter.Coerce(ctx, sc, value)
	if err != nil {
		return fmt.Errorf("argument %q: %w", a.name, err)
	}
	_, err = a.settle(r, []string{fmt.Sprint(value)})
	return err
}

// settle commits r or applies the policy. The value slot is written at most
// once and only with a complete value.
func (a *Arg[T]) settle(r converter.Result[T], tokens []string) (int, error) {
	if r.Status == converter.StatusConsumed {
		a.value, a.present = r.Value, true
		return r.Count, nil
	}

	switch a.spec.Policy {
	case converter.PolicyDefaulting:
		a.value = a.spec.Default
		return 0, nil
	case converter.PolicyOptional:
		return 0, nil
	}

	perr := &ParseError{Argument: a.name}
	if r.Status == converter.StatusInvalid {
		perr.Reason = fmt.Sprintf("Invalid value for argument `%s`: %s", a.name, r.Reason)
	} else {
		perr.Reason = fmt.Sprintf("Missing required argument `%s` (%s).", a.name, a.spec.Converter.Signature())
	}

	msg, err := a.spec.HandleError(perr, tokens)
	if err != nil {
		return 0, err
	}
	if msg != "" {
		perr.Reason = msg
	}
	return 0, perr
}
