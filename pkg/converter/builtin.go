package converter

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// String accepts any single token.
func String() Converter[string] {
	return Single("text", discordgo.ApplicationCommandOptionString,
		func(_ context.Context, _ Scope, token string) (string, error) {
			if token == "" {
				return "", ErrNoMatch
			}
			return token, nil
		})
}

// Int accepts a base-10 integer.
func Int() Converter[int64] {
	return Single("integer", discordgo.ApplicationCommandOptionInteger,
		func(_ context.Context, _ Scope, token string) (int64, error) {
			n, err := strconv.ParseInt(token, 10, 64)
			if err != nil {
				return 0, Reject("`%s` is not a valid integer", token)
			}
			return n, nil
		})
}

// Number accepts a decimal number.
func Number() Converter[float64] {
	return Single("number", discordgo.ApplicationCommandOptionNumber,
		func(_ context.Context, _ Scope, token string) (float64, error) {
			f, err := strconv.ParseFloat(token, 64)
			if err != nil {
				return 0, Reject("`%s` is not a valid number", token)
			}
			return f, nil
		})
}

var boolWords = map[string]bool{
	"true": true, "yes": true, "y": true, "on": true, "1": true, "enable": true,
	"false": false, "no": false, "n": false, "off": false, "0": false, "disable": false,
}

// Bool accepts yes/no style words.
func Bool() Converter[bool] {
	return Single("yes/no", discordgo.ApplicationCommandOptionBoolean,
		func(_ context.Context, _ Scope, token string) (bool, error) {
			b, ok := boolWords[strings.ToLower(token)]
			if !ok {
				return false, Reject("`%s` is not yes or no", token)
			}
			return b, nil
		})
}

// Choice accepts one of the given words, case-insensitively, and yields the
// canonical spelling.
func Choice(choices ...string) Converter[string] {
	return Single("one of "+strings.Join(choices, ", "), discordgo.ApplicationCommandOptionString,
		func(_ context.Context, _ Scope, token string) (string, error) {
			for _, c := range choices {
				if strings.EqualFold(c, token) {
					return c, nil
				}
			}
			return "", Reject("`%s` is not one of: %s", token, strings.Join(choices, ", "))
		})
}

// Words consumes every remaining token and joins them with single spaces.
// Structured values are kept as typed, line breaks included.
func Words() Converter[string] {
	return words{Coalescing("text",
		func(_ context.Context, _ Scope, tokens []string) (string, int, error) {
			return strings.Join(tokens, " "), len(tokens), nil
		})}
}

type words struct {
	Converter[string]
}

func (words) Coerce(_ context.Context, _ Scope, value any) (Result[string], error) {
	text := strings.TrimSpace(stringify(value))
	if text == "" {
		return NoMatch[string](), nil
	}
	return Consumed(text, 1), nil
}

// IntList consumes leading integers and stops at the first token that is not
// one.
func IntList() Converter[[]int64] {
	return Coalescing("list of integers",
		func(_ context.Context, _ Scope, tokens []string) ([]int64, int, error) {
			var out []int64
			for _, t := range tokens {
				n, err := strconv.ParseInt(t, 10, 64)
				if err != nil {
					break
				}
				out = append(out, n)
			}
			return out, len(out), nil
		})
}
