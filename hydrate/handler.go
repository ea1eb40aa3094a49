package hydrate

import "context"

// Request is one hydration call: replace the element ID with the component
// registered under Hash, built from Props.
type Request struct {
	ID    string
	Hash  string
	Props Props
}

type Handler interface {
	Hydrate(ctx context.Context, req Request) error
}

type HandlerFunc func(ctx context.Context, req Request) error

func (f HandlerFunc) Hydrate(ctx context.Context, req Request) error {
	return f(ctx, req)
}

// Middleware wraps the handler installed before it. next is nil when nothing
// was installed yet.
type Middleware func(next Handler) Handler

// Chain is a fallback chain of handlers. Each Install wraps the current head,
// so the most recently installed handler sees a request first and decides
// whether to pass it on.
type Chain struct {
	head  Handler
	links int
}

func (c *Chain) Install(m Middleware) {
	c.head = m(c.head)
	c.links++
}

// Hydrate routes req to the head of the chain. An empty chain drops it.
func (c *Chain) Hydrate(ctx context.Context, req Request) error {
	if c.head == nil {
		return nil
	}
	return c.head.Hydrate(ctx, req)
}

func (c *Chain) Len() int {
	return c.links
}
