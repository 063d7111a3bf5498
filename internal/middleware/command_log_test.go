package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/keshon/slashkit/internal/logger"
	"github.com/keshon/slashkit/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discard struct{}

func (discard) Ack(context.Context, bool, string) error { return nil }
func (discard) Edit(context.Context, string) error      { return nil }

func TestWithCommandLogger(t *testing.T) {
	log, logs := logger.TestLogger()

	reg := cmd.NewRegistry()
	require.NoError(t, reg.Register(cmd.New("ok", "Succeeds").Action(func(*cmd.Context) error { return nil })))
	require.NoError(t, reg.Register(cmd.New("bad", "Fails").Action(func(*cmd.Context) error { return errors.New("nope") })))

	d := cmd.NewDispatcher(reg, cmd.WithLogger(log), cmd.WithMiddleware(WithCommandLogger()))

	state, err := d.Call(context.Background(), &cmd.Event{Path: cmd.Path{Command: "ok"}, GuildID: "g"}, discard{})
	require.NoError(t, err)
	assert.Equal(t, cmd.StateSucceeded, state)

	state, _ = d.Call(context.Background(), &cmd.Event{Path: cmd.Path{Command: "bad"}}, discard{})
	assert.Equal(t, cmd.StateFailed, state)

	executed := logs.FilterMessage("command executed").All()
	require.Len(t, executed, 2)
	assert.Equal(t, "ok", executed[0].ContextMap()["command"])
	assert.Equal(t, "g", executed[0].ContextMap()["guild"])
	assert.Equal(t, "nope", executed[1].ContextMap()["failure"])
}
