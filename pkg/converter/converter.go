// Package converter turns raw command input into typed values.
//
// A Converter is offered either the remaining free-text tokens of an invocation
// (token-stream mode) or a single pre-typed value taken from a platform payload
// (structured mode). It answers with a Result: the value and how many tokens it
// consumed, NoMatch when nothing could be interpreted, or Invalid when the input
// was recognised but unacceptable. Returned errors are reserved for faults the
// user cannot fix (a lookup failing, a broken state cache).
//
// How a failed result is treated is not the converter's business. Required,
// Optional and Defaulting wrap a converter into a Spec that applies the policy.
package converter

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Status tells the parser what happened when a converter was offered input.
type Status int

const (
	// StatusNoMatch means nothing at the head of the input could be interpreted.
	StatusNoMatch Status = iota
	// StatusConsumed means a value was produced from Count leading tokens.
	StatusConsumed
	// StatusInvalid means the input was recognised but rejected; Reason says why.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusConsumed:
		return "consumed"
	case StatusInvalid:
		return "invalid"
	default:
		return "no-match"
	}
}

// Result is the outcome of a single Parse or Coerce call.
type Result[T any] struct {
	Status Status
	Value  T
	Count  int
	Reason string
}

// Consumed reports a value built from the first n tokens. A count of zero is
// treated as NoMatch.
func Consumed[T any](v T, n int) Result[T] {
	if n <= 0 {
		return NoMatch[T]()
	}
	return Result[T]{Status: StatusConsumed, Value: v, Count: n}
}

// NoMatch reports that nothing could be interpreted.
func NoMatch[T any]() Result[T] {
	return Result[T]{Status: StatusNoMatch}
}

// Invalid reports that the input was understood but not accepted.
func Invalid[T any](reason string) Result[T] {
	return Result[T]{Status: StatusInvalid, Reason: reason}
}

// Lookup is the read-only view of platform state converters may consult.
// Unknown ids yield a nil entity and a nil error.
type Lookup interface {
	User(ctx context.Context, id string) (*discordgo.User, error)
	Channel(ctx context.Context, id string) (*discordgo.Channel, error)
	Role(ctx context.Context, guildID, id string) (*discordgo.Role, error)
}

// Scope is handed to every Parse and Coerce call. It is built once per
// invocation and never mutated.
type Scope struct {
	Lookup    Lookup
	GuildID   string
	ChannelID string
	UserID    string
}

// Converter interprets input as a T.
type Converter[T any] interface {
	// Parse is offered the remaining token suffix in token-stream mode.
	Parse(ctx context.Context, sc Scope, tokens []string) (Result[T], error)
	// Coerce is offered the raw value of a named structured option.
	Coerce(ctx context.Context, sc Scope, value any) (Result[T], error)
	// OptionType is the option type used when the argument is published.
	OptionType() discordgo.ApplicationCommandOptionType
	// Signature names what the converter expects, e.g. "integer".
	Signature() string
}

// ErrNoMatch may be returned by builder functions to signal NoMatch.
var ErrNoMatch = errors.New("no match")

// ErrNoLookup is returned by converters that need platform state when the
// scope carries no Lookup.
var ErrNoLookup = errors.New("converter: no lookup service available")

// RejectError marks input that was recognised but rejected.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return e.Reason }

// Reject builds a RejectError. Builder functions return it to produce Invalid.
func Reject(format string, args ...any) error {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

// classify maps an error returned by a builder function onto a Result.
// Errors that are neither ErrNoMatch nor a RejectError are faults.
func classify[T any](err error) (Result[T], error) {
	if errors.Is(err, ErrNoMatch) {
		return NoMatch[T](), nil
	}
	var rej *RejectError
	if errors.As(err, &rej) {
		return Invalid[T](rej.Reason), nil
	}
	return Result[T]{}, err
}
