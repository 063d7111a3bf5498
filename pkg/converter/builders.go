package converter

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// SingleFunc interprets exactly one token.
type SingleFunc[T any] func(ctx context.Context, sc Scope, token string) (T, error)

// CoalesceFunc interprets as long a prefix of tokens as it can and reports how
// many tokens it used. Returning zero means nothing matched.
type CoalesceFunc[T any] func(ctx context.Context, sc Scope, tokens []string) (T, int, error)

type single[T any] struct {
	signature  string
	optionType discordgo.ApplicationCommandOptionType
	fn         SingleFunc[T]
}

// Single builds a converter that consumes exactly one token or none.
func Single[T any](signature string, ot discordgo.ApplicationCommandOptionType, fn SingleFunc[T]) Converter[T] {
	return &single[T]{signature: signature, optionType: ot, fn: fn}
}

func (c *single[T]) Signature() string { return c.signature }

func (c *single[T]) OptionType() discordgo.ApplicationCommandOptionType { return c.optionType }

func (c *single[T]) Parse(ctx context.Context, sc Scope, tokens []string) (Result[T], error) {
	if len(tokens) == 0 {
		return NoMatch[T](), nil
	}
	v, err := c.fn(ctx, sc, tokens[0])
	if err != nil {
		return classify[T](err)
	}
	return Consumed(v, 1), nil
}

func (c *single[T]) Coerce(ctx context.Context, sc Scope, value any) (Result[T], error) {
	// Strings always go through fn so lookups and validation still happen.
	if _, isString := value.(string); !isString {
		if v, ok := value.(T); ok {
			return Consumed(v, 1), nil
		}
	}
	token := stringify(value)
	if token == "" {
		return NoMatch[T](), nil
	}
	v, err := c.fn(ctx, sc, token)
	if err != nil {
		return classify[T](err)
	}
	return Consumed(v, 1), nil
}

type coalescing[T any] struct {
	signature string
	fn        CoalesceFunc[T]
}

// Coalescing builds a converter that may consume a variable-length prefix of
// the remaining tokens. It is published as a string option; in structured mode
// the string is split into tokens and must be consumed entirely.
func Coalescing[T any](signature string, fn CoalesceFunc[T]) Converter[T] {
	return &coalescing[T]{signature: signature, fn: fn}
}

func (c *coalescing[T]) Signature() string { return c.signature }

func (c *coalescing[T]) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionString
}

func (c *coalescing[T]) Parse(ctx context.Context, sc Scope, tokens []string) (Result[T], error) {
	if len(tokens) == 0 {
		return NoMatch[T](), nil
	}
	v, n, err := c.fn(ctx, sc, tokens)
	if err != nil {
		return classify[T](err)
	}
	return Consumed(v, n), nil
}

func (c *coalescing[T]) Coerce(ctx context.Context, sc Scope, value any) (Result[T], error) {
	tokens := strings.Fields(stringify(value))
	if len(tokens) == 0 {
		return NoMatch[T](), nil
	}
	v, n, err := c.fn(ctx, sc, tokens)
	if err != nil {
		return classify[T](err)
	}
	if n < len(tokens) {
		return Invalid[T](fmt.Sprintf("could not interpret `%s` as %s", strings.Join(tokens[n:], " "), c.signature)), nil
	}
	return Consumed(v, n), nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// Platform payloads carry every number as float64.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}
