package customcolumn

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// CycleError names the columns that reference each other in a loop; the first
// and last entries are the same column.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "custom columns reference each other: " + strings.Join(e.Path, " -> ")
}

// Dependencies lists the column ids def reads, in first-use order.
func Dependencies(def Definition) []string {
	switch {
	case def.Concat != nil:
		return uniqueStrings(def.Concat.Sources)
	case def.Arith != nil:
		return expressionOperands(def.Arith.Expression)
	default:
		return nil
	}
}

// Validate checks a full definition set: ids present and unique, payloads
// matching their kind and no reference cycles among custom columns however
// long.
func Validate(defs []Definition) error {
	byID := make(map[string]Definition, len(defs))
	for _, d := range defs {
		if err := d.check(); err != nil {
			return err
		}
		if d.ID == DisplaySerialNo || d.ID == mathName {
			return fmt.Errorf("%w: %q", ErrReservedID, d.ID)
		}
		if _, dup := byID[d.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		byID[d.ID] = d
	}

	const (
		white = iota
		grey
		black
	)
	colour := make(map[string]int, len(defs))
	stack := make([]string, 0, len(defs))

	var visit func(id string) error
	visit = func(id string) error {
		colour[id] = grey
		stack = append(stack, id)
		for _, dep := range Dependencies(byID[id]) {
			if _, custom := byID[dep]; !custom {
				continue
			}
			switch colour[dep] {
			case grey:
				start := 0
				for i, s := range stack {
					if s == dep {
						start = i
						break
					}
				}
				path := append(append([]string{}, stack[start:]...), dep)
				return &CycleError{Path: path}
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		colour[id] = black
		return nil
	}

	for _, d := range defs {
		if colour[d.ID] == white {
			if err := visit(d.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Upsert replaces the definition with the same id, or appends it, and
// validates the resulting set. defs is not modified.
func Upsert(defs []Definition, def Definition) ([]Definition, error) {
	out := make([]Definition, 0, len(defs)+1)
	replaced := false
	for _, d := range defs {
		if d.ID == def.ID {
			out = append(out, def)
			replaced = true
			continue
		}
		out = append(out, d)
	}
	if !replaced {
		out = append(out, def)
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove drops the definition with id unless another column reads it.
func Remove(defs []Definition, id string) ([]Definition, error) {
	out := make([]Definition, 0, len(defs))
	found := false
	for _, d := range defs {
		if d.ID == id {
			found = true
			continue
		}
		out = append(out, d)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, id)
	}
	for _, d := range out {
		for _, dep := range Dependencies(d) {
			if dep == id {
				return nil, fmt.Errorf("%w: %q is used by %q", ErrColumnReferenced, id, d.ID)
			}
		}
	}
	return out, nil
}

// expressionOperands returns the free identifiers of an expression in
// first-use order. Math, builtins, called names and let bindings are not
// operands. An expression that does not parse has none.
func expressionOperands(expression string) []string {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil
	}
	v := &operandCollector{skip: map[string]bool{mathName: true}, seen: map[string]bool{}}
	ast.Walk(&tree.Node, v)

	names := make([]string, 0, len(v.names))
	for _, name := range v.names {
		if !v.skip[name] {
			names = append(names, name)
		}
	}
	return names
}

type operandCollector struct {
	names []string
	seen  map[string]bool
	skip  map[string]bool
}

func (c *operandCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if !c.seen[n.Value] {
			c.seen[n.Value] = true
			c.names = append(c.names, n.Value)
		}
	case *ast.CallNode:
		if callee, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.skip[callee.Value] = true
		}
	case *ast.VariableDeclaratorNode:
		c.skip[n.Name] = true
	}
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
