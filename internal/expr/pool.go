package expr

import "strconv"

// Pool interns expression nodes so shared sub-conditions form a DAG.
// A schema owns one Pool; every condition it parses goes through it.
type Pool struct {
	nodes map[string]*Expr
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{nodes: make(map[string]*Expr)}
}

// Len returns the number of distinct nodes interned so far.
func (p *Pool) Len() int {
	return len(p.nodes)
}

func (p *Pool) intern(e *Expr) *Expr {
	if n, ok := p.nodes[e.key]; ok {
		return n
	}
	p.nodes[e.key] = e
	return e
}

// Const returns the literal node for text.
func (p *Pool) Const(text string) *Expr {
	return p.intern(&Expr{Op: OpConst, Text: text, key: "c:" + strconv.Quote(text)})
}

// Ref returns the node referencing symbol name.
func (p *Pool) Ref(name string) *Expr {
	return p.intern(&Expr{Op: OpRef, Text: name, key: "r:" + name})
}

// Not negates x. Not(nil) is the constant n.
func (p *Pool) Not(x *Expr) *Expr {
	if x == nil {
		return p.Const("n")
	}
	return p.intern(&Expr{Op: OpNot, X: x, key: "!(" + x.key + ")"})
}

// And joins two conditions. A nil side is "always true" and drops out.
func (p *Pool) And(x, y *Expr) *Expr {
	switch {
	case x == nil:
		return y
	case y == nil:
		return x
	case x == y:
		return x
	}
	return p.binary(OpAnd, x, y)
}

// Or joins two conditions. A nil side is "always true" and wins.
func (p *Pool) Or(x, y *Expr) *Expr {
	if x == nil || y == nil {
		return nil
	}
	if x == y {
		return x
	}
	return p.binary(OpOr, x, y)
}

// Compare builds a comparison node. op must satisfy Op.IsCompare.
func (p *Pool) Compare(op Op, x, y *Expr) *Expr {
	return p.binary(op, x, y)
}

func (p *Pool) binary(op Op, x, y *Expr) *Expr {
	key := strconv.Itoa(int(op)) + "(" + x.key + "," + y.key + ")"
	return p.intern(&Expr{Op: op, X: x, Y: y, key: key})
}
