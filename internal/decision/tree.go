// Package decision evaluates binary decision trees against a map of named
// attributes. Trees are the rule representation used by the plan generator:
// internal nodes compare one attribute against a constant and route to a true
// or false branch, leaves carry an arbitrary payload.
package decision

import (
	"fmt"
	"strings"

	"github.com/mlefevre/fitplan/internal/ptr"
)

// Operator compares an attribute value against a node's constant.
type Operator string

const (
	LessOrEqual    Operator = "<="
	GreaterOrEqual Operator = ">="
	Equal          Operator = "=="
	Less           Operator = "<"
	Greater        Operator = ">"
	// Includes is true when a string attribute contains the constant as a
	// substring, or when a list attribute contains it as an element.
	Includes Operator = "includes"
	// Intersects is true when a list attribute and a list constant share at
	// least one element.
	Intersects Operator = "intersects"
)

// Context holds the attribute values a tree is evaluated against.
type Context map[string]any

// Node is either an internal comparison node or a leaf. Exactly one of the two
// shapes is populated: internal nodes have both branches set and a nil
// Payload, leaves have a non-nil Payload.
type Node[T any] struct {
	Attribute string
	Operator  Operator
	Value     any
	True      *Node[T]
	False     *Node[T]
	Payload   *T
}

// Branch builds an internal node routing on attribute op value.
func Branch[T any](attribute string, op Operator, value any, whenTrue, whenFalse *Node[T]) *Node[T] {
	return &Node[T]{
		Attribute: attribute,
		Operator:  op,
		Value:     value,
		True:      whenTrue,
		False:     whenFalse,
	}
}

// Leaf builds a terminal node carrying payload.
func Leaf[T any](payload T) *Node[T] {
	return &Node[T]{Payload: ptr.Ref(payload)}
}

// maxDepth bounds traversal so that a malformed tree with a cycle fails
// instead of looping forever. Real rule trees are a handful of levels deep.
const maxDepth = 64

// Evaluate walks the tree from root until it reaches a leaf and returns the
// leaf payload. A condition that cannot be decided, including an unknown
// operator or a missing attribute, routes to the false branch.
func Evaluate[T any](root *Node[T], ctx Context) (T, error) {
	var zero T
	node := root
	for depth := 0; depth < maxDepth; depth++ {
		if node == nil {
			return zero, fmt.Errorf("evaluate tree: nil node at depth %d", depth)
		}
		if node.Payload != nil {
			return *node.Payload, nil
		}
		if condition(ctx[node.Attribute], node.Operator, node.Value) {
			node = node.True
		} else {
			node = node.False
		}
	}
	return zero, fmt.Errorf("evaluate tree: depth limit %d exceeded", maxDepth)
}

func condition(attr any, op Operator, value any) bool {
	switch op {
	case LessOrEqual, GreaterOrEqual, Less, Greater:
		return compareOrdered(attr, op, value)
	case Equal:
		if af, aok := toFloat64(attr); aok {
			if vf, vok := toFloat64(value); vok {
				return af == vf
			}
		}
		return toString(attr) == toString(value)
	case Includes:
		return includes(attr, value)
	case Intersects:
		return intersects(attr, value)
	}
	return false
}

func compareOrdered(attr any, op Operator, value any) bool {
	af, aok := toFloat64(attr)
	vf, vok := toFloat64(value)
	if !aok || !vok {
		// Fall back to lexicographic comparison for string attributes.
		cmp := strings.Compare(toString(attr), toString(value))
		return orderedResult(cmp, op)
	}
	switch {
	case af < vf:
		return orderedResult(-1, op)
	case af > vf:
		return orderedResult(1, op)
	default:
		return orderedResult(0, op)
	}
}

func orderedResult(cmp int, op Operator) bool {
	switch op {
	case LessOrEqual:
		return cmp <= 0
	case GreaterOrEqual:
		return cmp >= 0
	case Less:
		return cmp < 0
	case Greater:
		return cmp > 0
	}
	return false
}

func includes(attr, value any) bool {
	needle := toString(value)
	switch v := attr.(type) {
	case string:
		return strings.Contains(v, needle)
	case []string:
		for _, item := range v {
			if item == needle {
				return true
			}
		}
	}
	return false
}

func intersects(attr, value any) bool {
	left, lok := toStringList(attr)
	right, rok := toStringList(value)
	if !lok || !rok {
		return false
	}
	for _, l := range left {
		for _, r := range right {
			if l == r {
				return true
			}
		}
	}
	return false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toStringList(v any) ([]string, bool) {
	switch l := v.(type) {
	case []string:
		return l, true
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			out = append(out, toString(item))
		}
		return out, true
	}
	return nil, false
}
