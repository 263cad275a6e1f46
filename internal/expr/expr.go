// Package expr implements the label expression language used to select
// registrations: word literals combined with ! (not), & (and), | (or) and
// parentheses.
package expr

import (
	"fmt"
	"strings"
)

// Normalize upper-cases label and drops every character that is not an
// ASCII letter, digit or underscore.
func Normalize(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range strings.ToUpper(label) {
		if isWord(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWord(r rune) bool {
	return r == '_' ||
		(r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9')
}

func isOperator(r rune) bool {
	switch r {
	case '|', '&', '!', '(', ')':
		return true
	}
	return false
}

// Set is a set of normalized labels.
type Set map[string]struct{}

// NewSet normalizes labels into a Set.
func NewSet(labels ...string) Set {
	s := make(Set, len(labels))
	for _, l := range labels {
		s[Normalize(l)] = struct{}{}
	}
	return s
}

// Has reports whether the normalized form of label is in the set.
func (s Set) Has(label string) bool {
	_, ok := s[Normalize(label)]
	return ok
}

// Expr is a parsed label expression.
type Expr interface {
	// Eval reports whether labels satisfy the expression.
	Eval(labels Set) bool
	String() string
}

type literal string

func (l literal) Eval(labels Set) bool {
	_, ok := labels[string(l)]
	return ok
}

func (l literal) String() string { return string(l) }

type not struct{ x Expr }

func (n not) Eval(labels Set) bool { return !n.x.Eval(labels) }
func (n not) String() string       { return "!" + n.x.String() }

type and struct{ l, r Expr }

func (a and) Eval(labels Set) bool { return a.l.Eval(labels) && a.r.Eval(labels) }
func (a and) String() string       { return "(" + a.l.String() + "&" + a.r.String() + ")" }

type or struct{ l, r Expr }

func (o or) Eval(labels Set) bool { return o.l.Eval(labels) || o.r.Eval(labels) }
func (o or) String() string       { return "(" + o.l.String() + "|" + o.r.String() + ")" }

// CharacterError reports a character outside the expression alphabet.
type CharacterError struct {
	Expression string
	Char       rune
	Pos        int
}

func (e *CharacterError) Error() string {
	return fmt.Sprintf("invalid characters present in expression %q: %q at offset %d", e.Expression, e.Char, e.Pos)
}

// SyntaxError reports a structurally malformed expression.
type SyntaxError struct {
	Expression string
	Pos        int
	Msg        string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid expression %q at offset %d: %s", e.Expression, e.Pos, e.Msg)
}

// Validate checks src for characters outside word characters and the
// operators |&!(). It does not check structure.
func Validate(src string) error {
	for i, r := range src {
		if !isWord(r) && !isOperator(r) {
			return &CharacterError{Expression: src, Char: r, Pos: i}
		}
	}
	return nil
}

// Parse validates and parses src. Literals are normalized, so evaluation is
// case-insensitive against a Set.
func Parse(src string) (Expr, error) {
	if err := Validate(src); err != nil {
		return nil, err
	}
	p := &parser{src: src}
	x, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return x, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) Expr {
	x, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return x
}

// parser is a recursive descent parser over an already validated, ASCII
// only expression, so byte offsets are safe.
type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expression: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) parseOr() (Expr, error) {
	x, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == '|' {
		p.pos++
		y, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		x = or{x, y}
	}
	return x, nil
}

func (p *parser) parseAnd() (Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek() == '&' {
		p.pos++
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = and{x, y}
	}
	return x, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.peek() == '!' {
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return not{x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("unexpected end of expression")
	case c == '(':
		p.pos++
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return x, nil
	case isWord(rune(c)):
		start := p.pos
		for p.pos < len(p.src) && isWord(rune(p.src[p.pos])) {
			p.pos++
		}
		return literal(Normalize(p.src[start:p.pos])), nil
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}
