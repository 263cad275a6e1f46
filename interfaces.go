package labelwire

// Lifecycle controls how often a registration's recipe runs and where the
// result is cached.
type Lifecycle string

// Available lifecycles
const (
	// Transient constructs a new instance for each resolution
	Transient Lifecycle = "transient"
	// Singleton shares one instance, cached at the root container, across
	// every scope
	Singleton Lifecycle = "singleton"
	// Scoped shares one instance per container that resolves it
	Scoped Lifecycle = "scoped"
)

// String returns the lifecycle name.
func (l Lifecycle) String() string {
	return string(l)
}

// Valid reports whether l is one of the known lifecycles.
func (l Lifecycle) Valid() bool {
	switch l {
	case Transient, Singleton, Scoped:
		return true
	}
	return false
}

// Factory is a recipe called directly with the raw resolved wiring
// arguments: instances, []any for sequences, map[string]any for records and,
// for empty slots, the falsy value the slot was given (nil, false, "" or 0).
type Factory func(args ...any) (any, error)

// Declarer is implemented by constructor result types that declare their
// own wiring. Wiring is called on the zero value of the type, so pointer
// receivers must not dereference.
//
//	func (*Car) Wiring() labelwire.Node { return labelwire.Args("engine") }
type Declarer interface {
	Wiring() Node
}
