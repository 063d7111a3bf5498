package docs

import (
	"bytes"
	"testing"

	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/keshon/slashkit/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(*cmd.Context) error { return nil }

type clampArgs struct {
	value, min *args.Arg[int64]
}

func newClampArgs(s *args.Set) *clampArgs {
	return &clampArgs{
		value: args.Add(s, "value", "Number to clamp", converter.Required(converter.Int())),
		min:   args.Add(s, "min", "", converter.Defaulting(converter.Int(), 0)),
	}
}

func testRegistry(t *testing.T) *cmd.Registry {
	t.Helper()
	reg := cmd.NewRegistry()

	tools := cmd.New("tools", "Small utilities").Extension("tools")
	var subErr error
	_, err := tools.Group("numbers", "Integer helpers", func(g *cmd.Group) {
		clamp := cmd.Handle(cmd.New("clamp", "Clamp a number"), newClampArgs, func(*cmd.Context, *clampArgs) error { return nil })
		subErr = g.SubCommand(clamp)
	})
	require.NoError(t, err)
	require.NoError(t, subErr)

	require.NoError(t, reg.Register(cmd.New("roll", "Roll dice").Extension("fun").Action(noop)))
	require.NoError(t, reg.Register(tools))
	require.NoError(t, reg.Register(cmd.New("ping", "Check latency").Extension("core").Action(noop)))
	require.NoError(t, reg.Register(cmd.New("misc", "Unfiled").Extension("unknown").Action(noop)))
	return reg
}

func TestSectionsOrderedByWeight(t *testing.T) {
	sections := Sections(testRegistry(t))

	var titles []string
	for _, s := range sections {
		titles = append(titles, s.Category.Title)
	}
	assert.Equal(t, []string{"🕯️ Information", "📢 Utilities", "🎲 Gameplay", "🛠️ Other"}, titles)

	require.Len(t, sections[1].Commands, 1)
	assert.Equal(t, "tools numbers clamp", sections[1].Commands[0].FullName())
}

func TestUsage(t *testing.T) {
	reg := testRegistry(t)
	clamp := Leaves(reg.Get("tools"))
	require.Len(t, clamp, 1)

	assert.Equal(t, "/tools numbers clamp <value> [min]", Usage(clamp[0]))
	assert.Equal(t, "/ping", Usage(reg.Get("ping")))
	assert.Empty(t, Arguments(reg.Get("ping")))
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, testRegistry(t)))

	out := buf.String()
	assert.Contains(t, out, "# Commands")
	assert.Contains(t, out, "## 📢 Utilities")
	assert.Contains(t, out, "- **`/tools numbers clamp <value> [min]`** - Clamp a number")
	assert.Contains(t, out, "  - `value` (integer, required): Number to clamp")
	assert.Contains(t, out, "  - `min` (integer)\n")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("/ping")), bytes.Index(buf.Bytes(), []byte("/roll")))
}
