package labelwire

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/centraunit/labelwire/internal/expr"
)

// multiMarker is the suffix that turns Resolve into ResolveAll.
const multiMarker = "[]"

// resolveSyntax accepts a bracket-free expression optionally followed by a
// single trailing multi-resolve marker.
var resolveSyntax = regexp.MustCompile(`^[^\[\]]*(\[\])?$`)

// Resolve returns the instance of the first registration, in registration
// order, whose labels satisfy expression. An expression ending in "[]"
// resolves every match instead and returns them as a []any.
func (c *Container) Resolve(expression string) (any, error) {
	st, end := c.reg.beginResolution()
	defer end()
	return c.resolve(expression, st)
}

// ResolveAll returns the instances of every registration whose labels
// satisfy expression, in registration order. It returns an empty slice when
// nothing matches.
func (c *Container) ResolveAll(expression string) ([]any, error) {
	st, end := c.reg.beginResolution()
	defer end()
	return c.resolveAll(expression, st)
}

func (c *Container) resolve(expression string, st *resolution) (any, error) {
	if !resolveSyntax.MatchString(expression) {
		return nil, &InvalidExpressionSyntaxError{Expression: expression, Reason: "the multi-resolve marker is only allowed once, as a trailing suffix"}
	}
	if bare, ok := strings.CutSuffix(expression, multiMarker); ok {
		return c.resolveAll(bare, st)
	}

	x, err := parseExpression(expression)
	if err != nil {
		return nil, err
	}
	for _, reg := range c.snapshot() {
		if x.Eval(reg.set) {
			return c.instance(reg, expression, st)
		}
	}
	return nil, &UnresolvedLabelError{Expression: expression}
}

func (c *Container) resolveAll(expression string, st *resolution) ([]any, error) {
	if strings.ContainsAny(expression, "[]") {
		return nil, &InvalidExpressionSyntaxError{Expression: expression, Reason: "ResolveAll takes a bare expression without the multi-resolve marker"}
	}
	x, err := parseExpression(expression)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0)
	for _, reg := range c.snapshot() {
		if !x.Eval(reg.set) {
			continue
		}
		v, err := c.instance(reg, expression, st)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseExpression parses a bare expression, translating the expression
// package's errors into this package's error types.
func parseExpression(expression string) (expr.Expr, error) {
	x, err := expr.Parse(expression)
	if err == nil {
		return x, nil
	}
	var charErr *expr.CharacterError
	if errors.As(err, &charErr) {
		return nil, &InvalidExpressionCharactersError{Expression: expression, Err: err}
	}
	return nil, &InvalidExpressionSyntaxError{Expression: expression, Err: err}
}

func (c *Container) snapshot() []*Registration {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return c.reg.registrations[:len(c.reg.registrations):len(c.reg.registrations)]
}

// instance applies reg's lifecycle: Singletons are cached on the root,
// Scoped instances on c, Transients not at all.
func (c *Container) instance(reg *Registration, expression string, st *resolution) (any, error) {
	create := func() (any, error) {
		return c.construct(reg, expression, st)
	}

	switch reg.lifecycle {
	case Transient:
		return create()
	case Singleton:
		return c.cached(c.root.cache, reg, expression, st, create)
	case Scoped:
		return c.cached(c.cache, reg, expression, st, create)
	default:
		return nil, &UnknownLifecycleError{Lifecycle: reg.lifecycle}
	}
}

func (c *Container) cached(cache *instanceCache, reg *Registration, expression string, st *resolution, create func() (any, error)) (any, error) {
	// Checked before taking the slot lock, which this chain may already hold.
	if st.active[reg] {
		return nil, st.enter(reg, expression)
	}
	v, hit, err := cache.getOrCreate(reg, create)
	if hit {
		c.log.Debug("instance reused", "id", reg.id, "recipe", reg.recipe.name, "lifecycle", reg.lifecycle)
	}
	return v, err
}

// construct resolves reg's wiring against c and invokes its recipe.
func (c *Container) construct(reg *Registration, expression string, st *resolution) (any, error) {
	if err := st.enter(reg, expression); err != nil {
		return nil, err
	}
	defer st.leave(reg)

	wiring := c.reg.wiringFor(reg.recipe)
	var wired any
	if _, empty := wiring.(Empty); !empty {
		var err error
		if wired, err = c.transform(wiring, st); err != nil {
			return nil, fmt.Errorf("wiring %s: %w", reg.recipe.name, err)
		}
	}
	_, spread := wiring.(Seq)

	v, err := reg.recipe.invoke(wired, spread)
	if err != nil {
		return nil, err
	}
	c.log.Debug("instance created",
		"id", reg.id,
		"recipe", reg.recipe.name,
		"lifecycle", reg.lifecycle,
		"expression", expression,
	)
	return v, nil
}

// Resolve resolves expression on c and asserts the result to T.
//
//	car, err := labelwire.Resolve[*Car](c, "car")
func Resolve[T any](c *Container, expression string) (T, error) {
	var zero T
	v, err := c.Resolve(expression)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: reflect.TypeOf((*T)(nil)).Elem().String(), Got: fmt.Sprintf("%T", v)}
	}
	return typed, nil
}

// ResolveAll resolves every match of expression on c and asserts each
// result to T.
//
//	engines, err := labelwire.ResolveAll[Engine](c, "engine")
func ResolveAll[T any](c *Container, expression string) ([]T, error) {
	vs, err := c.ResolveAll(expression)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(vs))
	for i, v := range vs {
		typed, ok := v.(T)
		if !ok {
			return nil, &TypeMismatchError{Expected: reflect.TypeOf((*T)(nil)).Elem().String(), Got: fmt.Sprintf("%T", v)}
		}
		out[i] = typed
	}
	return out, nil
}
