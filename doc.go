// Package labelwire provides a label-based inversion of control container.
//
// Recipes (constructors or factories) are registered under one or more
// labels with a lifecycle. Resolution selects registrations with a boolean
// label expression, recursively resolves each recipe's wiring spec into its
// arguments and caches the result according to the lifecycle.
//
// # Registering
//
//	c := labelwire.New()
//	c.Singleton("logger", NewLogger)
//	c.Transient([]string{"engine", "petrol"}, NewPetrolEngine)
//	c.Scoped("car", NewCar)
//	c.TransientFn("greeting", func(args ...any) any { return "hello" })
//
// Labels are normalized: upper-cased, with everything but ASCII letters,
// digits and underscores removed. Several registrations may share a label.
//
// # Wiring
//
// A recipe's arguments are described by a wiring spec, a tree of Seq,
// Record, Expr and Empty nodes. A top-level Seq is spread into positional
// arguments:
//
//	c.Wire(NewCar, labelwire.Args("engine", []string{"wheel", "wheel"}, map[string]any{"spare": "wheel"}))
//
// A constructor can instead declare its wiring on its result type by
// implementing Declarer, and factories can take WithWiring at registration.
// A recipe has at most one wiring spec.
//
// # Resolving
//
// Expressions combine labels with ! (not), & (and), | (or) and parentheses:
//
//	car, err := c.Resolve("car")
//	quiet, err := c.Resolve("engine&!loud")
//	engines, err := c.ResolveAll("engine")  // every match, in registration order
//	all, err := c.Resolve("engine[]")       // same as ResolveAll, as an any
//
// The generic helpers Resolve and ResolveAll assert the result type.
//
// # Lifecycles and scopes
//
// Transient recipes run on every resolution. Singleton instances are cached
// on the root container and shared with every scope. Scoped instances are
// cached per container:
//
//	scope := c.Scope()
//	a, _ := scope.Resolve("car")
//	b, _ := scope.Resolve("car") // a == b, but differs from c.Resolve("car")
//
// Dependencies are always resolved on the container that started the
// resolution, so Scoped dependencies deep in a graph stay on that scope.
// Graphs that depend on themselves fail with CircularDependencyError.
package labelwire
