package args

import (
	"context"
	"strings"

	"github.com/keshon/slashkit/pkg/converter"
)

// Input is what an invocation supplies to the parser. Token-stream input
// carries Tokens; structured input carries Values keyed by argument name.
type Input struct {
	Tokens     []string
	Values     map[string]any
	Structured bool
}

// Parse builds a fresh Set with factory and settles every argument from in.
// The populated value is returned only when parsing succeeded. A required
// argument that cannot be satisfied stops the parse with a *ParseError;
// converter faults are returned as plain errors.
func Parse[T any](ctx context.Context, sc converter.Scope, factory func(*Set) T, in Input) (T, error) {
	var zero T

	s := NewSet()
	out := factory(s)
	if err := s.Err(); err != nil {
		return zero, err
	}

	var err error
	if in.Structured {
		err = parseValues(ctx, sc, s, in.Values)
	} else {
		_, err = parseTokens(ctx, sc, s, in.Tokens)
	}
	if err != nil {
		return zero, err
	}
	return out, nil
}

// parseTokens offers each argument, in declaration order, the tokens not yet
// claimed by an earlier one. It returns how many tokens were consumed in
// total; anything left over is ignored.
func parseTokens(ctx context.Context, sc converter.Scope, s *Set, tokens []string) (int, error) {
	pos := 0
	for _, b := range s.bindings {
		n, err := b.consume(ctx, sc, tokens[pos:])
		if err != nil {
			return pos, err
		}
		pos += n
	}
	return pos, nil
}

func parseValues(ctx context.Context, sc converter.Scope, s *Set, values map[string]any) error {
	for _, b := range s.bindings {
		v, ok := values[b.option().Name]
		if err := b.coerce(ctx, sc, v, ok); err != nil {
			return err
		}
	}
	return nil
}

// Tokenize splits free text on whitespace. Double quotes group words into one
// token and a backslash escapes the next character.
func Tokenize(text string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)

	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}

	for _, r := range text {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
			started = true
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, &ParseError{Reason: "Your command has an unterminated quote."}
	}
	if escaped {
		cur.WriteRune('\\')
		started = true
	}
	flush()
	return tokens, nil
}
