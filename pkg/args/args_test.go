package args

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fooArgs struct {
	Bar *Arg[int64]
	Baz *Arg[string]
}

func requiredFoo(s *Set) *fooArgs {
	return &fooArgs{
		Bar: Add(s, "bar", "a number", converter.Required(converter.Int())),
		Baz: Add(s, "baz", "a word", converter.Required(converter.String())),
	}
}

func defaultingFoo(s *Set) *fooArgs {
	return &fooArgs{
		Bar: Add(s, "bar", "a number", converter.Required(converter.Int())),
		Baz: Add(s, "baz", "a word", converter.Defaulting(converter.String(), "none")),
	}
}

func TestParseTokens(t *testing.T) {
	ctx := context.Background()

	a, err := Parse(ctx, converter.Scope{}, requiredFoo, Input{Tokens: []string{"5", "hello"}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), a.Bar.Value())
	assert.Equal(t, "hello", a.Baz.Value())
	assert.True(t, a.Baz.Present())
}

func TestParseStructured(t *testing.T) {
	ctx := context.Background()

	a, err := Parse(ctx, converter.Scope{}, requiredFoo, Input{
		Structured: true,
		Values:     map[string]any{"bar": float64(5), "baz": "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), a.Bar.Value())
	assert.Equal(t, "hello", a.Baz.Value())

	a, err = Parse(ctx, converter.Scope{}, defaultingFoo, Input{
		Structured: true,
		Values:     map[string]any{"bar": float64(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "none", a.Baz.Value())
	assert.False(t, a.Baz.Present())

	_, err = Parse(ctx, converter.Scope{}, defaultingFoo, Input{
		Structured: true,
		Values:     map[string]any{"baz": "hello"},
	})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bar", perr.Argument)
	assert.Contains(t, perr.Error(), "`bar`")
}

func TestDefaultingCoalescingYieldsDefault(t *testing.T) {
	type a struct{ N *Arg[[]int64] }
	def := []int64{7}
	factory := func(s *Set) *a {
		return &a{N: Add(s, "n", "numbers", converter.Defaulting(converter.IntList(), def))}
	}

	for _, tokens := range [][]string{nil, {"nope"}, {"x", "1"}} {
		got, err := Parse(context.Background(), converter.Scope{}, factory, Input{Tokens: tokens})
		require.NoError(t, err)
		assert.Equal(t, def, got.N.Value())
		assert.False(t, got.N.Present())
	}
}

func TestRequiredConsumingNothingFails(t *testing.T) {
	type a struct{ N *Arg[[]int64] }
	factory := func(s *Set) *a {
		return &a{N: Add(s, "numbers", "numbers", converter.Required(converter.IntList()))}
	}

	for _, tokens := range [][]string{nil, {"nope"}} {
		_, err := Parse(context.Background(), converter.Scope{}, factory, Input{Tokens: tokens})
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "numbers", perr.Argument)
		assert.Contains(t, perr.Reason, "numbers")
	}
}

func TestOptionalLeavesZero(t *testing.T) {
	type a struct {
		Count *Arg[int64]
		Rest  *Arg[string]
	}
	factory := func(s *Set) *a {
		return &a{
			Count: Add(s, "count", "", converter.Optional(converter.Int())),
			Rest:  Add(s, "rest", "", converter.Required(converter.Words())),
		}
	}

	got, err := Parse(context.Background(), converter.Scope{}, factory, Input{Tokens: []string{"hello", "world"}})
	require.NoError(t, err)
	assert.False(t, got.Count.Present())
	assert.Equal(t, int64(0), got.Count.Value())
	assert.Equal(t, "hello world", got.Rest.Value())
}

func TestTrailingTokensDiscarded(t *testing.T) {
	got, err := Parse(context.Background(), converter.Scope{}, requiredFoo, Input{Tokens: []string{"1", "a", "b", "c"}})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Baz.Value())
}

func TestParserHaltsAtFirstRequiredFailure(t *testing.T) {
	var offered int
	spy := converter.Single("spy", 3, func(_ context.Context, _ converter.Scope, tok string) (string, error) {
		offered++
		return tok, nil
	})
	type a struct {
		N   *Arg[int64]
		Spy *Arg[string]
	}
	factory := func(s *Set) *a {
		return &a{
			N:   Add(s, "n", "", converter.Required(converter.Int())),
			Spy: Add(s, "spy", "", converter.Required(spy)),
		}
	}

	_, err := Parse(context.Background(), converter.Scope{}, factory, Input{Tokens: []string{"x", "y"}})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "n", perr.Argument)
	assert.Zero(t, offered)
}

func TestDeclarationOrderDecidesConsumption(t *testing.T) {
	type a struct {
		First  *Arg[[]int64]
		Second *Arg[[]int64]
	}
	greedyFirst := func(s *Set) *a {
		return &a{
			First:  Add(s, "first", "", converter.Defaulting(converter.IntList(), nil)),
			Second: Add(s, "second", "", converter.Defaulting(converter.IntList(), nil)),
		}
	}

	tokens := []string{"1", "2", "3", "x"}
	s := NewSet()
	got := greedyFirst(s)
	n, err := parseTokens(context.Background(), converter.Scope{}, s, tokens)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.LessOrEqual(t, n, len(tokens))
	assert.Equal(t, []int64{1, 2, 3}, got.First.Value())
	assert.Nil(t, got.Second.Value())

	type b struct {
		Word *Arg[string]
		Nums *Arg[[]int64]
	}
	wordFirst := func(s *Set) *b {
		return &b{
			Word: Add(s, "word", "", converter.Required(converter.String())),
			Nums: Add(s, "nums", "", converter.Defaulting(converter.IntList(), nil)),
		}
	}
	numsFirst := func(s *Set) *b {
		return &b{
			Nums: Add(s, "nums", "", converter.Defaulting(converter.IntList(), nil)),
			Word: Add(s, "word", "", converter.Required(converter.String())),
		}
	}

	s1 := NewSet()
	g1 := wordFirst(s1)
	n1, err := parseTokens(context.Background(), converter.Scope{}, s1, tokens)
	require.NoError(t, err)
	assert.Equal(t, "1", g1.Word.Value())
	assert.Equal(t, []int64{2, 3}, g1.Nums.Value())

	s2 := NewSet()
	g2 := numsFirst(s2)
	n2, err := parseTokens(context.Background(), converter.Scope{}, s2, tokens)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, g2.Nums.Value())
	assert.Equal(t, "x", g2.Word.Value())

	assert.LessOrEqual(t, n1, len(tokens))
	assert.LessOrEqual(t, n2, len(tokens))
}

type overreach struct{}

func (overreach) Parse(context.Context, converter.Scope, []string) (converter.Result[string], error) {
	return converter.Consumed("x", 5), nil
}

func (overreach) Coerce(context.Context, converter.Scope, any) (converter.Result[string], error) {
	return converter.NoMatch[string](), nil
}

func (overreach) OptionType() discordgo.ApplicationCommandOptionType {
	return discordgo.ApplicationCommandOptionString
}

func (overreach) Signature() string { return "overreach" }

func TestOverConsumptionIsAFault(t *testing.T) {
	type a struct{ X *Arg[string] }
	factory := func(s *Set) *a {
		return &a{X: Add(s, "x", "", converter.Spec[string]{Converter: overreach{}})}
	}
	_, err := Parse(context.Background(), converter.Scope{}, factory, Input{Tokens: []string{"a"}})
	require.Error(t, err)
	var perr *ParseError
	assert.False(t, errors.As(err, &perr))
}

func TestNoPartialCommitOnFailure(t *testing.T) {
	s := NewSet()
	a := Add(s, "n", "", converter.Defaulting(converter.Int(), 9))
	_, err := parseTokens(context.Background(), converter.Scope{}, s, []string{"abc"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.Value())
	assert.False(t, a.Present())
}

func TestHumanizerOverridesReason(t *testing.T) {
	type a struct{ N *Arg[int64] }
	factory := func(s *Set) *a {
		spec := converter.Required(converter.Int()).WithHumanizer(func(_ error, tokens []string) (string, error) {
			return "numbers only please", nil
		})
		return &a{N: Add(s, "n", "", spec)}
	}
	_, err := Parse(context.Background(), converter.Scope{}, factory, Input{Tokens: []string{"x"}})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "numbers only please", perr.Reason)
}

func TestDuplicateNames(t *testing.T) {
	factory := func(s *Set) struct{} {
		Add(s, "x", "", converter.Required(converter.Int()))
		Add(s, "x", "", converter.Required(converter.Int()))
		return struct{}{}
	}
	_, err := Parse(context.Background(), converter.Scope{}, factory, Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestOptions(t *testing.T) {
	s := NewSet()
	defaultingFoo(s)
	opts := s.Options()
	require.Len(t, opts, 2)
	assert.Equal(t, "bar", opts[0].Name)
	assert.True(t, opts[0].Required())
	assert.Equal(t, "baz", opts[1].Name)
	assert.False(t, opts[1].Required())
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "a b  c", want: []string{"a", "b", "c"}},
		{in: `say "hello world" now`, want: []string{"say", "hello world", "now"}},
		{in: `""`, want: []string{""}},
		{in: `a\"b`, want: []string{`a"b`}},
		{in: "   ", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Tokenize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Tokenize(`"open`)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}
