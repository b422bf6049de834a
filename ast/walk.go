package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
}

// Children returns the direct child nodes of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if n != nil {
				out = append(out, n)
			}
		}
	}
	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Stmts {
			add(stmt)
		}
	case *ExprStmt:
		add(n.X)
	case *If:
		add(n.Cond, n.Consequence)
		if n.Alternative != nil {
			add(n.Alternative)
		}
	case *Block:
		for _, stmt := range n.Stmts {
			add(stmt)
		}
	case *Array:
		for _, item := range n.Items {
			add(item)
		}
	case *Object:
		for _, item := range n.Items {
			add(item)
		}
	case *Property:
		add(n.Key, n.Value)
	case *Spread:
		add(n.X)
	case *Member:
		add(n.X)
		for _, step := range n.Steps {
			if step.Index != nil {
				add(step.Index)
			}
		}
	case *Call:
		add(n.Fun)
		for _, arg := range n.Args {
			add(arg)
		}
	case *Unary:
		add(n.X)
	case *Binary:
		add(n.X, n.Y)
	case *Ternary:
		add(n.Cond, n.Consequence, n.Alternative)
	case *Arrow:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *Sequence:
		for _, e := range n.Exprs {
			add(e)
		}
	case *Assign:
		add(n.Target, n.Value)
	}
	return out
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at node
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range Children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}

// FreeVariables returns the names of variables referenced by the tree that
// are not bound as arrow function parameters, in order of first use.
func FreeVariables(root Node) []string {
	var names []string
	seen := map[string]bool{}
	var visit func(n Node, bound map[string]bool)
	visit = func(n Node, bound map[string]bool) {
		switch node := n.(type) {
		case *Ident:
			if !bound[node.Name] && !seen[node.Name] {
				seen[node.Name] = true
				names = append(names, node.Name)
			}
			return
		case *Property:
			// Keys are names, not references; shorthand values are
			// visited as the identifier they are.
			visit(node.Value, bound)
			return
		case *Arrow:
			inner := make(map[string]bool, len(bound)+len(node.Params))
			for k := range bound {
				inner[k] = true
			}
			for _, p := range node.Params {
				inner[p.Name] = true
			}
			visit(node.Body, inner)
			return
		}
		for _, child := range Children(n) {
			visit(child, bound)
		}
	}
	visit(root, map[string]bool{})
	return names
}
