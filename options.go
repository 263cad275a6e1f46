package labelwire

import "log/slog"

// registrationOptions holds per-registration settings.
type registrationOptions struct {
	ctor   bool
	wiring Node
}

// Option configures a registration.
type Option func(*registrationOptions)

// WithCtor marks whether the recipe is a constructor (the default) or a
// Factory.
func WithCtor(ctor bool) Option {
	return func(o *registrationOptions) {
		o.ctor = ctor
	}
}

// WithWiring attaches a wiring spec to the recipe as part of registration.
// It counts as the recipe's declared wiring, so a later Wire call on the same
// recipe fails with AlreadyWiredError.
func WithWiring(spec Node) Option {
	return func(o *registrationOptions) {
		o.wiring = spec
	}
}

// containerOptions holds settings shared by a root container and its scopes.
type containerOptions struct {
	logger       *slog.Logger
	uniqueLabels bool
}

// ContainerOption configures a Container created with New.
type ContainerOption func(*containerOptions)

// WithLogger sets the logger used for debug output. The default discards
// everything.
func WithLogger(logger *slog.Logger) ContainerOption {
	return func(o *containerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithUniqueLabels rejects a registration whose labels collide with an
// existing registration's. By default duplicates are allowed so that
// ResolveAll can fan out over them.
func WithUniqueLabels() ContainerOption {
	return func(o *containerOptions) {
		o.uniqueLabels = true
	}
}
