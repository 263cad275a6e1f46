package labelwire

import "context"

// key is an unexported type to prevent collisions with context keys from
// other packages.
type key struct{}

var containerKey = key{}

// WithContainer returns a copy of ctx carrying c, typically a request scope
// created with Container.Scope.
func WithContainer(ctx context.Context, c *Container) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, containerKey, c)
}

// FromContext returns the container stored in ctx by WithContainer.
func FromContext(ctx context.Context) (*Container, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(containerKey).(*Container)
	return c, ok && c != nil
}
