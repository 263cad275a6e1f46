package labelwire

import (
	"fmt"
	"reflect"
)

// Node is a wiring specification: exactly one of Seq, Record, Empty or Expr.
type Node interface {
	isNode()
}

// Expr is a label expression resolved through Container.Resolve. An empty
// Expr behaves like Empty{}.
type Expr string

// Seq resolves to a []any of the same length and order.
type Seq []Node

// Record resolves to a map[string]any with the same keys.
type Record map[string]Node

// Empty leaves a dependency slot unfilled. It resolves to Value, the falsy
// value it was built from (nil, false, "" or a numeric zero), unchanged. As a
// whole wiring spec it means no arguments.
type Empty struct {
	Value any
}

func (Expr) isNode()   {}
func (Seq) isNode()    {}
func (Record) isNode() {}
func (Empty) isNode()  {}

// Args builds a Seq from plain Go values as accepted by NodeOf. It panics on
// values that have no node form, so it is meant for literal wiring specs.
//
//	labelwire.Args("engine", []string{"engine", "engine"}, map[string]any{"spare": "engine"})
func Args(items ...any) Seq {
	seq := make(Seq, len(items))
	for i, item := range items {
		n, err := NodeOf(item)
		if err != nil {
			panic(fmt.Sprintf("labelwire: Args[%d]: %v", i, err))
		}
		seq[i] = n
	}
	return seq
}

// NodeOf converts a plain Go value into a Node:
//   - Node values are returned unchanged
//   - string becomes Expr
//   - nil, false, the empty string and numeric zero become Empty carrying
//     the value
//   - slices of strings, Nodes or any become Seq
//   - string-keyed maps of strings, Nodes or any become Record
func NodeOf(v any) (Node, error) {
	switch v := v.(type) {
	case nil:
		return Empty{}, nil
	case Node:
		return v, nil
	case string:
		if v == "" {
			return Empty{Value: v}, nil
		}
		return Expr(v), nil
	case bool:
		if !v {
			return Empty{Value: v}, nil
		}
	case []string:
		seq := make(Seq, len(v))
		for i, s := range v {
			seq[i], _ = NodeOf(s)
		}
		return seq, nil
	case []Node:
		return Seq(v), nil
	case []any:
		seq := make(Seq, len(v))
		for i, item := range v {
			n, err := NodeOf(item)
			if err != nil {
				return nil, err
			}
			seq[i] = n
		}
		return seq, nil
	case map[string]string:
		rec := make(Record, len(v))
		for k, s := range v {
			rec[k], _ = NodeOf(s)
		}
		return rec, nil
	case map[string]Node:
		return Record(v), nil
	case map[string]any:
		rec := make(Record, len(v))
		for k, item := range v {
			n, err := NodeOf(item)
			if err != nil {
				return nil, err
			}
			rec[k] = n
		}
		return rec, nil
	}

	rv := reflect.ValueOf(v)
	if isNumber(rv.Kind()) && rv.IsZero() {
		return Empty{Value: v}, nil
	}
	return nil, &InvalidWiringError{Type: fmt.Sprintf("%T", v)}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// transform walks a wiring node, resolving every expression against c. The
// resolution chain st is carried through so nested resolutions share cycle
// detection with the outer one.
func (c *Container) transform(n Node, st *resolution) (any, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil
	case Empty:
		return n.Value, nil
	case Expr:
		if n == "" {
			return nil, nil
		}
		return c.resolve(string(n), st)
	case Seq:
		out := make([]any, len(n))
		for i, item := range n {
			v, err := c.transform(item, st)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case Record:
		out := make(map[string]any, len(n))
		for k, item := range n {
			v, err := c.transform(item, st)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, &InvalidWiringError{Type: fmt.Sprintf("%T", n)}
	}
}
