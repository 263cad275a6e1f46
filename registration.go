package labelwire

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/centraunit/labelwire/internal/expr"
)

// Recipe is an identity handle for a constructor or factory. Bare funcs are
// identified by their code pointer, so closures created from the same
// function literal share an identity; wrap them with NewRecipe to give each
// its own wiring.
type Recipe struct {
	fn   any
	name string
}

// NewRecipe wraps fn in a Recipe handle. name is used in errors and logs;
// when empty the function name is used.
func NewRecipe(fn any, name string) *Recipe {
	return &Recipe{fn: fn, name: name}
}

// recipeKey identifies a recipe in the wiring side table.
type recipeKey struct {
	handle *Recipe
	code   uintptr
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// recipe is a validated, invocable recipe.
type recipe struct {
	key    recipeKey
	name   string
	fn     reflect.Value
	ctor   bool
	static Node
}

// newRecipe validates raw as a constructor (ctor) or a factory. raw may be
// a *Recipe handle or a bare func.
func newRecipe(raw any, ctor bool) (*recipe, error) {
	r := &recipe{ctor: ctor}

	fn := raw
	if h, ok := raw.(*Recipe); ok {
		if h == nil {
			return nil, &InvalidRecipeError{Recipe: "<nil>", Reason: "nil recipe handle"}
		}
		fn = h.fn
		r.key.handle = h
		r.name = h.name
	}

	val := reflect.ValueOf(fn)
	if !val.IsValid() || val.Kind() != reflect.Func || val.IsNil() {
		return nil, &InvalidRecipeError{Recipe: fmt.Sprintf("%T", fn), Reason: "recipe must be a non-nil function"}
	}
	if r.key.handle == nil {
		r.key.code = val.Pointer()
	}
	if r.name == "" {
		r.name = funcName(val)
	}

	if !ctor {
		switch f := fn.(type) {
		case Factory:
			r.fn = reflect.ValueOf(f)
		case func(...any) (any, error):
			r.fn = reflect.ValueOf(Factory(f))
		case func(...any) any:
			r.fn = reflect.ValueOf(Factory(func(args ...any) (any, error) { return f(args...), nil }))
		default:
			return nil, &InvalidRecipeError{Recipe: r.name, Reason: "factory must be func(...any) any or func(...any) (any, error)"}
		}
		return r, nil
	}

	typ := val.Type()
	if typ.NumOut() == 0 || typ.NumOut() > 2 {
		return nil, &InvalidRecipeError{Recipe: r.name, Reason: "constructor must return (T) or (T, error)"}
	}
	if typ.NumOut() == 2 && !typ.Out(1).Implements(errorType) {
		return nil, &InvalidRecipeError{Recipe: r.name, Reason: "second return value must implement error"}
	}
	r.fn = val
	static, err := declaredWiring(typ.Out(0))
	if err != nil {
		return nil, &InvalidRecipeError{Recipe: r.name, Reason: err.Error()}
	}
	r.static = static
	return r, nil
}

var declarerType = reflect.TypeOf((*Declarer)(nil)).Elem()

// declaredWiring returns the wiring declared by t's zero value, if t
// implements Declarer. A Wiring method that panics on the zero value is
// reported as an error.
func declaredWiring(t reflect.Type) (n Node, err error) {
	if t.Kind() == reflect.Interface || !t.Implements(declarerType) {
		return nil, nil
	}
	defer func() {
		if p := recover(); p != nil {
			n, err = nil, fmt.Errorf("%s.Wiring panicked on the zero value: %v", t, p)
		}
	}()
	return reflect.Zero(t).Interface().(Declarer).Wiring(), nil
}

func funcName(fn reflect.Value) string {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return fn.Type().String()
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// invoke calls the recipe with the resolved wiring value. A []any from a
// top-level Seq is spread into positional arguments.
func (r *recipe) invoke(wired any, spread bool) (any, error) {
	var args []any
	switch {
	case spread:
		args, _ = wired.([]any)
	case wired != nil:
		args = []any{wired}
	}

	if !r.ctor {
		out, err := r.fn.Interface().(Factory)(args...)
		if err != nil {
			return nil, &ConstructionError{Recipe: r.name, Err: err}
		}
		return out, nil
	}

	in, err := r.arguments(args)
	if err != nil {
		return nil, err
	}
	results := r.fn.Call(in)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, &ConstructionError{Recipe: r.name, Err: results[1].Interface().(error)}
	}
	return results[0].Interface(), nil
}

// arguments converts resolved wiring values to the constructor's parameter
// types, padding missing trailing parameters with zero values.
func (r *recipe) arguments(args []any) ([]reflect.Value, error) {
	typ := r.fn.Type()
	fixed := typ.NumIn()
	if typ.IsVariadic() {
		fixed--
	}
	if !typ.IsVariadic() && len(args) > fixed {
		return nil, &ArgumentError{Recipe: r.name, Position: fixed, Err: fmt.Errorf("constructor takes %d arguments, wiring provides %d", fixed, len(args))}
	}

	in := make([]reflect.Value, 0, max(fixed, len(args)))
	for i := 0; i < max(fixed, len(args)); i++ {
		var pt reflect.Type
		if i < fixed {
			pt = typ.In(i)
		} else {
			pt = typ.In(fixed).Elem()
		}
		var a any
		if i < len(args) {
			a = args[i]
		}
		v, err := convert(a, pt)
		if err != nil {
			return nil, &ArgumentError{Recipe: r.name, Position: i, Err: err}
		}
		in = append(in, v)
	}
	return in, nil
}

// convert turns a resolved wiring value into a value of type t.
func convert(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	// A falsy scalar left in an empty slot fills any parameter with its zero.
	if isFalsy(v) {
		return reflect.Zero(t), nil
	}

	switch a := a.(type) {
	case []any:
		if t.Kind() != reflect.Slice {
			break
		}
		out := reflect.MakeSlice(t, len(a), len(a))
		for i, item := range a {
			ev, err := convert(item, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case map[string]any:
		switch {
		case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String:
			out := reflect.MakeMapWithSize(t, len(a))
			for k, item := range a {
				ev, err := convert(item, t.Elem())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("[%q]: %w", k, err)
				}
				out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
			}
			return out, nil
		case t.Kind() == reflect.Struct:
			return fillStruct(a, t)
		case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
			sv, err := fillStruct(a, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			p := reflect.New(t.Elem())
			p.Elem().Set(sv)
			return p, nil
		}
	}

	return reflect.Value{}, &TypeMismatchError{Expected: t.String(), Got: v.Type().String()}
}

func isFalsy(v reflect.Value) bool {
	switch k := v.Kind(); {
	case k == reflect.Bool, k == reflect.String, isNumber(k):
		return v.IsZero()
	}
	return false
}

// fillStruct sets the fields of a new t from a resolved record. A key
// matches the field whose wire tag equals it, or else the field whose name
// equals it case-insensitively.
func fillStruct(rec map[string]any, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	for k, item := range rec {
		idx := fieldIndex(t, k)
		if idx < 0 {
			return reflect.Value{}, fmt.Errorf("%s has no field for key %q", t, k)
		}
		fv, err := convert(item, t.Field(idx).Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s.%s: %w", t, t.Field(idx).Name, err)
		}
		out.Field(idx).Set(fv)
	}
	return out, nil
}

func fieldIndex(t reflect.Type, key string) int {
	byName := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, ok := f.Tag.Lookup("wire"); ok {
			if tag == key {
				return i
			}
			continue
		}
		if byName < 0 && strings.EqualFold(f.Name, key) {
			byName = i
		}
	}
	return byName
}

// Registration is a recipe, its lifecycle and its normalized labels, as
// stored by a Container.
type Registration struct {
	id        uuid.UUID
	recipe    *recipe
	lifecycle Lifecycle
	labels    []string
	set       expr.Set
}

func newRegistration(r *recipe, lifecycle Lifecycle, labels []string) *Registration {
	normalized := make([]string, len(labels))
	for i, l := range labels {
		normalized[i] = expr.Normalize(l)
	}
	return &Registration{
		id:        uuid.New(),
		recipe:    r,
		lifecycle: lifecycle,
		labels:    normalized,
		set:       expr.NewSet(normalized...),
	}
}

// ID returns the unique ID assigned at registration.
func (r *Registration) ID() uuid.UUID { return r.id }

// Labels returns a copy of the normalized labels.
func (r *Registration) Labels() []string { return append([]string(nil), r.labels...) }

// Lifecycle returns the registration's lifecycle.
func (r *Registration) Lifecycle() Lifecycle { return r.lifecycle }

// IsCtor reports whether the recipe is a constructor rather than a factory.
func (r *Registration) IsCtor() bool { return r.recipe.ctor }

// Name returns the recipe's name.
func (r *Registration) Name() string { return r.recipe.name }

// Match reports whether the registration's labels satisfy expression.
func (r *Registration) Match(expression string) (bool, error) {
	x, err := parseExpression(expression)
	if err != nil {
		return false, err
	}
	return x.Eval(r.set), nil
}

func (r *Registration) String() string {
	return fmt.Sprintf("%s [%s]", r.recipe.name, strings.Join(r.labels, ","))
}
