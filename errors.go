package labelwire

import (
	"fmt"
	"strings"
)

// InvalidExpressionSyntaxError represents a malformed resolve expression:
// a misplaced multi-resolve marker, marker syntax passed to ResolveAll, or a
// structurally broken logical expression.
type InvalidExpressionSyntaxError struct {
	Expression string
	Reason     string
	Err        error
}

func (e *InvalidExpressionSyntaxError) Error() string {
	if e.Reason == "" && e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid expression syntax %q: %s", e.Expression, e.Reason)
}

func (e *InvalidExpressionSyntaxError) Unwrap() error {
	return e.Err
}

// InvalidExpressionCharactersError represents an expression containing
// characters outside word characters and the operators |&!().
type InvalidExpressionCharactersError struct {
	Expression string
	Err        error
}

func (e *InvalidExpressionCharactersError) Error() string {
	return fmt.Sprintf("invalid characters present in expression %q", e.Expression)
}

func (e *InvalidExpressionCharactersError) Unwrap() error {
	return e.Err
}

// UnresolvedLabelError represents a single resolution with no matching
// registration.
type UnresolvedLabelError struct {
	Expression string
}

func (e *UnresolvedLabelError) Error() string {
	return fmt.Sprintf("unable to locate match for %s", e.Expression)
}

// AlreadyWiredError represents an attempt to attach a second wiring spec to
// a recipe.
type AlreadyWiredError struct {
	Recipe string
}

func (e *AlreadyWiredError) Error() string {
	return fmt.Sprintf("recipe %s already wired", e.Recipe)
}

// UnknownLifecycleError represents a lifecycle value outside Transient,
// Singleton and Scoped.
type UnknownLifecycleError struct {
	Lifecycle Lifecycle
}

func (e *UnknownLifecycleError) Error() string {
	return fmt.Sprintf("unknown lifecycle %q", string(e.Lifecycle))
}

// CircularDependencyError represents a wiring graph that depends on itself.
// Chain lists the recipes from the outermost resolution to the repeated one.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Chain, " -> "))
}

// DuplicateLabelError represents a label collision under the unique label
// policy.
type DuplicateLabelError struct {
	Label    string
	Recipe   string
	Existing string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("failed to register %s [%s]: collision with %s", e.Recipe, e.Label, e.Existing)
}

// InvalidRecipeError represents a recipe that cannot be invoked.
type InvalidRecipeError struct {
	Recipe string
	Reason string
}

func (e *InvalidRecipeError) Error() string {
	return fmt.Sprintf("invalid recipe %s: %s", e.Recipe, e.Reason)
}

// InvalidWiringError represents a Go value that has no wiring node form.
type InvalidWiringError struct {
	Type string
}

func (e *InvalidWiringError) Error() string {
	return fmt.Sprintf("unsupported wiring value of type %s", e.Type)
}

// ConstructionError represents a recipe that returned an error.
type ConstructionError struct {
	Recipe string
	Err    error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construction failed for %s: %v", e.Recipe, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// TypeMismatchError represents a resolved value that cannot be used as the
// expected type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// ArgumentError represents a resolved wiring argument that cannot be passed
// to a constructor parameter.
type ArgumentError struct {
	Recipe   string
	Position int
	Err      error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %d of %s: %v", e.Position, e.Recipe, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}
