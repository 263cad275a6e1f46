package labelwire

import (
	"io"
	"log/slog"
	"sync"
)

// registry is the state shared by a root container and all of its scopes.
type registry struct {
	mu            sync.RWMutex
	registrations []*Registration
	wiring        map[recipeKey]Node
	declared      map[recipeKey]Node
	opts          containerOptions
	statePool     sync.Pool

	// chains maps a goroutine ID to the resolution it is running, so a
	// recipe that calls back into the container extends the same chain.
	chains sync.Map
}

// Container is a registry of labeled recipes. A Container created with New
// is a root; Scope returns child containers that share the root's
// registrations but keep their own cache of Scoped instances.
//
// A Container is safe for concurrent use.
type Container struct {
	reg    *registry
	parent *Container
	root   *Container
	cache  *instanceCache
	log    *slog.Logger
}

// New creates an empty root container.
func New(opts ...ContainerOption) *Container {
	o := containerOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	reg := &registry{
		registrations: make([]*Registration, 0, 16),
		wiring:        make(map[recipeKey]Node),
		declared:      make(map[recipeKey]Node),
		opts:          o,
		statePool: sync.Pool{
			New: func() interface{} {
				return &resolution{
					active: make(map[*Registration]bool, 8),
					chain:  make([]string, 0, 8),
				}
			},
		},
	}
	c := &Container{
		reg:   reg,
		cache: newInstanceCache(),
		log:   o.logger,
	}
	c.root = c
	return c
}

// Scope returns a child container. It resolves every label its ancestors
// can, shares their Singleton instances and starts with no Scoped instances
// of its own. Registrations made through a scope are visible to the whole
// container tree.
func (c *Container) Scope() *Container {
	child := &Container{
		reg:    c.reg,
		parent: c,
		root:   c.root,
		cache:  newInstanceCache(),
	}
	child.log = c.reg.opts.logger.With("scope", child.depth())
	child.log.Debug("scope created")
	return child
}

// Parent returns the enclosing container, or nil for a root.
func (c *Container) Parent() *Container {
	return c.parent
}

func (c *Container) depth() int {
	d := 0
	for p := c.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Register adds a registration for recipe under labels, which may be a
// string or a []string. recipe is a constructor func, a Factory (with
// WithCtor(false)) or a *Recipe handle wrapping either.
func (c *Container) Register(lifecycle Lifecycle, labels any, recipe any, opts ...Option) error {
	if !lifecycle.Valid() {
		return &UnknownLifecycleError{Lifecycle: lifecycle}
	}

	o := registrationOptions{ctor: true}
	for _, opt := range opts {
		opt(&o)
	}

	var names []string
	switch l := labels.(type) {
	case nil:
	case string:
		names = []string{l}
	case []string:
		names = l
	default:
		return &InvalidRecipeError{Recipe: "<labels>", Reason: "labels must be a string or []string"}
	}

	r, err := newRecipe(recipe, o.ctor)
	if err != nil {
		return err
	}
	registration := newRegistration(r, lifecycle, names)

	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()

	if c.reg.opts.uniqueLabels {
		if err := c.reg.checkUnique(registration); err != nil {
			return err
		}
	}

	if o.wiring != nil {
		if c.reg.wiredLocked(r) {
			return &AlreadyWiredError{Recipe: r.name}
		}
		c.reg.declared[r.key] = o.wiring
	}

	c.reg.registrations = append(c.reg.registrations, registration)
	c.log.Debug("registration added",
		"id", registration.id,
		"recipe", r.name,
		"labels", registration.labels,
		"lifecycle", lifecycle,
	)
	return nil
}

// Singleton registers a constructor whose instance is shared by the whole
// container tree.
func (c *Container) Singleton(labels any, recipe any, opts ...Option) error {
	return c.Register(Singleton, labels, recipe, opts...)
}

// Transient registers a constructor that runs on every resolution.
func (c *Container) Transient(labels any, recipe any, opts ...Option) error {
	return c.Register(Transient, labels, recipe, opts...)
}

// Scoped registers a constructor whose instance is shared within each
// container that resolves it.
func (c *Container) Scoped(labels any, recipe any, opts ...Option) error {
	return c.Register(Scoped, labels, recipe, opts...)
}

// SingletonFn registers a Singleton factory.
func (c *Container) SingletonFn(labels any, factory any, opts ...Option) error {
	return c.Register(Singleton, labels, factory, append(opts[:len(opts):len(opts)], WithCtor(false))...)
}

// TransientFn registers a Transient factory.
func (c *Container) TransientFn(labels any, factory any, opts ...Option) error {
	return c.Register(Transient, labels, factory, append(opts[:len(opts):len(opts)], WithCtor(false))...)
}

// ScopedFn registers a Scoped factory.
func (c *Container) ScopedFn(labels any, factory any, opts ...Option) error {
	return c.Register(Scoped, labels, factory, append(opts[:len(opts):len(opts)], WithCtor(false))...)
}

// Wire attaches spec as the wiring of recipe. It fails with AlreadyWiredError
// if recipe already has wiring, whether declared by its result type, given
// with WithWiring or set by an earlier Wire call.
func (c *Container) Wire(recipe any, spec Node) error {
	r, err := newRecipe(recipe, !isFactory(recipe))
	if err != nil {
		return err
	}

	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()

	if c.reg.wiredLocked(r) {
		return &AlreadyWiredError{Recipe: r.name}
	}
	c.reg.wiring[r.key] = spec
	c.log.Debug("recipe wired", "recipe", r.name)
	return nil
}

func isFactory(recipe any) bool {
	if h, ok := recipe.(*Recipe); ok && h != nil {
		recipe = h.fn
	}
	switch recipe.(type) {
	case Factory, func(...any) (any, error), func(...any) any:
		return true
	}
	return false
}

// Registrations returns a snapshot of the registrations in insertion order.
func (c *Container) Registrations() []*Registration {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return append([]*Registration(nil), c.reg.registrations...)
}

// wiredLocked reports whether r already has wiring. Callers hold mu.
func (reg *registry) wiredLocked(r *recipe) bool {
	if r.static != nil {
		return true
	}
	if _, ok := reg.declared[r.key]; ok {
		return true
	}
	_, ok := reg.wiring[r.key]
	return ok
}

// wiringFor returns the wiring for r: an explicit Wire association first,
// then a WithWiring spec, then the result type's Declarer, then Empty.
func (reg *registry) wiringFor(r *recipe) Node {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	if n, ok := reg.wiring[r.key]; ok {
		return n
	}
	if n, ok := reg.declared[r.key]; ok {
		return n
	}
	if r.static != nil {
		return r.static
	}
	return Empty{}
}

// checkUnique enforces the unique label policy. Callers hold mu.
func (reg *registry) checkUnique(next *Registration) error {
	for _, existing := range reg.registrations {
		for _, l := range next.labels {
			if existing.set.Has(l) {
				return &DuplicateLabelError{Label: l, Recipe: next.recipe.name, Existing: existing.String()}
			}
		}
	}
	return nil
}

// resolution tracks the registrations under construction in one top-level
// resolve call, including calls a recipe makes back into the container from
// the same goroutine.
type resolution struct {
	active map[*Registration]bool
	chain  []string
}

func (reg *registry) getResolution() *resolution {
	return reg.statePool.Get().(*resolution)
}

// beginResolution returns the resolution already running on this
// goroutine, or starts a new one. The returned func ends a new resolution
// and is a no-op for a joined one.
func (reg *registry) beginResolution() (*resolution, func()) {
	id := goid()
	if id < 0 {
		st := reg.getResolution()
		return st, func() { reg.putResolution(st) }
	}
	if st, ok := reg.chains.Load(id); ok {
		return st.(*resolution), func() {}
	}

	st := reg.getResolution()
	reg.chains.Store(id, st)
	return st, func() {
		reg.chains.Delete(id)
		reg.putResolution(st)
	}
}

func (reg *registry) putResolution(st *resolution) {
	clear(st.active)
	st.chain = st.chain[:0]
	reg.statePool.Put(st)
}

func (st *resolution) enter(r *Registration, expression string) error {
	link := expression + " (" + r.recipe.name + ")"
	if st.active[r] {
		chain := append(append([]string(nil), st.chain...), link)
		return &CircularDependencyError{Chain: chain}
	}
	st.active[r] = true
	st.chain = append(st.chain, link)
	return nil
}

func (st *resolution) leave(r *Registration) {
	delete(st.active, r)
	st.chain = st.chain[:len(st.chain)-1]
}
