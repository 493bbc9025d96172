package query

import (
	"errors"
	"fmt"
)

// NodeKind identifies the shape of a parsed query node.
type NodeKind int

const (
	NodeTerm NodeKind = iota
	NodeAnd
	NodeOr
	NodeNot
)

// Node is a parsed boolean query.
type Node struct {
	Kind     NodeKind
	Operator string
	Value    string
	Children []*Node
}

// Terms returns the number of operator terms (leaves) below n.
func (n *Node) Terms() int {
	if n.Kind == NodeTerm {
		return 1
	}
	count := 0
	for _, c := range n.Children {
		count += c.Terms()
	}
	return count
}

// Walk calls fn for every term below n in source order.
func (n *Node) Walk(fn func(term *Node) error) error {
	if n.Kind == NodeTerm {
		return fn(n)
	}
	for _, c := range n.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

type parser struct {
	tokens []token
	pos    int
}

func parse(q string) (*Node, error) {
	tokens, err := lex(q)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.New("empty query")
	}
	p := &parser{tokens: tokens}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("unexpected token at position %d", p.pos)
	}
	return n, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) parseOr() (*Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []*Node{left}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOr {
			break
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return &Node{Kind: NodeOr, Children: children}, nil
}

// parseAnd handles both explicit AND and juxtaposition.
func (p *parser) parseAnd() (*Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	children := []*Node{left}
	for {
		t, ok := p.peek()
		if !ok || t.kind == tokOr || t.kind == tokRParen {
			break
		}
		if t.kind == tokAnd {
			p.pos++
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return &Node{Kind: NodeAnd, Children: children}, nil
}

func (p *parser) parseNot() (*Node, error) {
	t, ok := p.peek()
	if ok && (t.kind == tokNot || t.kind == tokMinus) {
		p.pos++
		child, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeNot, Children: []*Node{child}}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, errors.New("unexpected end of query")
	}
	switch t.kind {
	case tokTerm:
		p.pos++
		return &Node{Kind: NodeTerm, Operator: t.op, Value: t.value}, nil
	case tokLParen:
		p.pos++
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, errors.New("missing closing parenthesis")
		}
		p.pos++
		return n, nil
	}
	return nil, fmt.Errorf("unexpected token at position %d", p.pos)
}
