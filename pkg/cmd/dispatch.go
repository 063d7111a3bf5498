package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/converter"
	"github.com/keshon/slashkit/pkg/report"
	"go.uber.org/zap"
)

// State is where an invocation ended up.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateChecksRunning
	StateParsing
	StateExecuting
	StateSucceeded
	StateFailed
	// StateAborted means a check returned false. Nothing was sent.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateChecksRunning:
		return "checks"
	case StateParsing:
		return "parsing"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	default:
		return "idle"
	}
}

const (
	failureLead     = "Unfortunately, **an error occurred** during command processing. "
	failureStaff    = failureLead + "Please let a staff member know."
	failureWithID   = failureLead + "Please let a staff member know and mention error `%s`."
	failureFeedback = failureLead + "If you'd like to submit information on what you were doing when this " +
		"error happened, please use the following command: ```/%s %s <message>```"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithReporter forwards execution faults to r.
func WithReporter(r report.Reporter) Option {
	return func(d *Dispatcher) { d.reporter = r }
}

// WithLogger sets the logger. The default is zap.L() at construction time.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithLookup sets the platform lookup passed to converters.
func WithLookup(l converter.Lookup) Option {
	return func(d *Dispatcher) { d.lookup = l }
}

// WithMiddleware wraps every action; the first middleware is the outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(d *Dispatcher) { d.middleware = append(d.middleware, mws...) }
}

// WithFeedback names the command users can send feedback with. Failure
// messages point to it when a reporter is set.
func WithFeedback(command string) Option {
	return func(d *Dispatcher) { d.feedback = command }
}

// Dispatcher runs invocations against a Registry.
type Dispatcher struct {
	registry   *Registry
	reporter   report.Reporter
	logger     *zap.Logger
	lookup     converter.Lookup
	middleware []Middleware
	feedback   string
}

// NewDispatcher returns a dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{registry: reg, logger: zap.L()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher resolves against.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Call resolves ev, runs checks, parses arguments and executes the action.
// Parse failures and execution faults are answered through resp and returned;
// they never escape as panics. A failed check returns StateAborted and a nil
// error without sending anything.
func (d *Dispatcher) Call(ctx context.Context, ev *Event, resp Responder) (State, error) {
	start := time.Now()

	node, err := d.registry.Resolve(ev.Path)
	if err != nil {
		d.logger.Error("command resolution failed", zap.String("path", ev.Path.String()), zap.Error(err))
		return StateFailed, err
	}

	log := d.logger.With(zap.String("command", node.FullName()), zap.String("user", ev.UserID))

	for _, n := range node.lineage() {
		for _, check := range n.checks {
			if !d.runCheck(ctx, check, ev, log) {
				log.Debug("command check failed", zap.String("at", n.FullName()))
				return StateAborted, nil
			}
		}
	}

	c := newContext(ctx, ev, node, resp, converter.Scope{
		Lookup:    d.lookup,
		GuildID:   ev.GuildID,
		ChannelID: ev.ChannelID,
		UserID:    ev.UserID,
	}, log)
	c.crumbs = append(c.crumbs, firstBreadcrumb(node, ev))

	if node.autoAck {
		if err := c.Ack(node.public, ""); err != nil {
			return d.fail(c, fmt.Errorf("auto-acknowledge: %w", err))
		}
	}

	var parsed any
	if node.declare != nil {
		parsed, err = d.parse(c, node)
		var perr *args.ParseError
		switch {
		case errors.As(err, &perr):
			log.Debug("command arguments rejected", zap.String("argument", perr.Argument), zap.String("reason", perr.Reason))
			if rerr := c.Reply(perr.Reason); rerr != nil {
				log.Warn("failed to send parse failure", zap.Error(rerr))
			}
			return StateFailed, perr
		case err != nil:
			return d.fail(c, err)
		}
	}

	h := Apply(func(c *Context) error { return node.action(c, parsed) }, d.middleware...)
	if err := d.execute(h, c); err != nil {
		return d.fail(c, err)
	}

	log.Debug("command succeeded", zap.Duration("took", time.Since(start)))
	return StateSucceeded, nil
}

func (d *Dispatcher) runCheck(ctx context.Context, check Check, ev *Event, log *zap.Logger) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("command check panicked", zap.Any("panic", r))
			ok = false
		}
	}()
	return check(ctx, ev)
}

// parse populates the node's arguments. Panics from argument factories or
// converters come back as *PanicError.
func (d *Dispatcher) parse(c *Context, node *Node) (parsed any, err error) {
	defer func() {
		if r := recover(); r != nil {
			parsed, err = nil, newPanicError(r)
		}
	}()
	return args.Parse(c.ctx, c.Scope, node.declare, args.Input{
		Tokens:     c.Event.Tokens,
		Values:     c.Event.Options,
		Structured: c.Event.Structured,
	})
}

func (d *Dispatcher) execute(h Handler, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return h(c)
}

// fail logs err, reports it and answers with a generic message.
func (d *Dispatcher) fail(c *Context, err error) (State, error) {
	fields := []zap.Field{zap.Error(err)}
	var perr *PanicError
	if errors.As(err, &perr) {
		fields = append(fields, zap.ByteString("stack", perr.Stack))
	}
	c.logger.Error("command execution failed", fields...)

	msg := failureStaff
	if d.reporter != nil {
		id, rerr := d.reporter.Report(c.ctx, report.Event{
			Err:         err,
			Message:     "Command execution failed.",
			User:        c.Event.UserID,
			Tags:        failureTags(c),
			Breadcrumbs: c.Breadcrumbs(),
		})
		switch {
		case rerr != nil:
			c.logger.Warn("failed to report command failure", zap.Error(rerr))
		case id != "" && d.feedback != "":
			msg = fmt.Sprintf(failureFeedback, d.feedback, id)
		case id != "":
			msg = fmt.Sprintf(failureWithID, id)
		}
		if id != "" {
			c.logger.Debug("command failure reported", zap.String("id", id))
		}
	}

	if rerr := c.Reply(msg); rerr != nil {
		c.logger.Warn("failed to send failure message", zap.Error(rerr))
	}
	return StateFailed, err
}

func failureTags(c *Context) map[string]string {
	return map[string]string{
		"command":   c.Command.FullName(),
		"extension": c.Command.ExtensionName(),
		"private":   strconv.FormatBool(c.Event.Private),
	}
}

func firstBreadcrumb(node *Node, ev *Event) report.Breadcrumb {
	category, kind := "command.slash", "Slash"
	if !ev.Structured {
		category, kind = "command.message", "Message"
	}
	data := map[string]string{"command": node.FullName()}
	if g := node.Root().guildID; g != "" {
		data["command.guild"] = g
	}
	if ev.ChannelID != "" {
		data["channel"] = ev.ChannelID
		if ev.Private {
			data["channel"] = "Private Message (" + ev.ChannelID + ")"
		}
	}
	if ev.GuildID != "" {
		data["guild"] = ev.GuildID
	}
	return report.Breadcrumb{
		Category: category,
		Type:     "user",
		Message:  fmt.Sprintf("%s command %q called.", kind, node.FullName()),
		Data:     data,
		Time:     time.Now(),
	}
}
