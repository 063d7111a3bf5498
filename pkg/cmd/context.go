package cmd

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/keshon/slashkit/pkg/converter"
	"github.com/keshon/slashkit/pkg/report"
	"go.uber.org/zap"
)

// ErrAcknowledged is returned by Context.Ack when the invocation was already
// acknowledged.
var ErrAcknowledged = errors.New("invocation already acknowledged")

// Responder is the outbound side of an invocation. Ack is the first response
// to an invocation; Edit replaces it afterwards. An Ack with empty content is
// a deferred acknowledgment.
type Responder interface {
	Ack(ctx context.Context, public bool, content string) error
	Edit(ctx context.Context, content string) error
}

// Context is the per-invocation state handed to actions and middleware.
type Context struct {
	ctx       context.Context
	responder Responder
	logger    *zap.Logger

	Event   *Event
	Command *Node
	Scope   converter.Scope

	mu     sync.Mutex
	acked  bool
	crumbs []report.Breadcrumb
}

func newContext(ctx context.Context, ev *Event, node *Node, resp Responder, sc converter.Scope, logger *zap.Logger) *Context {
	return &Context{
		ctx:       ctx,
		responder: resp,
		logger:    logger,
		Event:     ev,
		Command:   node,
		Scope:     sc,
	}
}

// Context returns the context of the invocation.
func (c *Context) Context() context.Context { return c.ctx }

// Logger returns a logger annotated with the command path.
func (c *Context) Logger() *zap.Logger { return c.logger }

// Acknowledged reports whether a first response was already sent.
func (c *Context) Acknowledged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acked
}

// Ack sends the first response. Empty content defers the visible reply.
func (c *Context) Ack(public bool, content string) error {
	c.mu.Lock()
	if c.acked {
		c.mu.Unlock()
		return ErrAcknowledged
	}
	c.acked = true
	c.mu.Unlock()

	if err := c.responder.Ack(c.ctx, public, content); err != nil {
		c.mu.Lock()
		c.acked = false
		c.mu.Unlock()
		return err
	}
	return nil
}

// Reply edits the acknowledged response, or acknowledges with content using
// the node's visibility when nothing was sent yet.
func (c *Context) Reply(content string) error {
	if c.Acknowledged() {
		return c.responder.Edit(c.ctx, content)
	}
	return c.Ack(c.Command.public, content)
}

// Breadcrumb records a diagnostic note. The trail is attached to any failure
// report for this invocation.
func (c *Context) Breadcrumb(category, message string, data map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crumbs = append(c.crumbs, report.Breadcrumb{
		Category: category,
		Type:     "default",
		Message:  message,
		Data:     data,
		Time:     time.Now(),
	})
}

// Breadcrumbs returns a copy of the trail in recording order.
func (c *Context) Breadcrumbs() []report.Breadcrumb {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]report.Breadcrumb(nil), c.crumbs...)
}
