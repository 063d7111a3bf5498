package cmd

// Handler runs the action of a resolved node.
type Handler func(c *Context) error

// Middleware wraps a handler (e.g. logging, timing, tracing). It only sees
// invocations that passed their checks and parsed successfully.
type Middleware func(Handler) Handler

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
