package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ContentMatch is a state in the deterministic automaton compiled from a
// node type's content expression. Matching a child type moves to the next
// state; a state with ValidEnd true accepts the content matched so far.
type ContentMatch struct {
	validEnd bool
	next     []MatchEdge
}

// MatchEdge is an outgoing transition of a ContentMatch.
type MatchEdge struct {
	Type *NodeType
	Next *ContentMatch
}

// emptyMatch is the automaton of leaf types.
var emptyMatch = &ContentMatch{validEnd: true}

// ValidEnd reports whether the content matched so far is complete.
func (m *ContentMatch) ValidEnd() bool { return m.validEnd }

// Edges returns the outgoing transitions of this state.
func (m *ContentMatch) Edges() []MatchEdge { return append([]MatchEdge(nil), m.next...) }

// MatchType returns the state after matching a node of the given type, or nil.
func (m *ContentMatch) MatchType(t *NodeType) *ContentMatch {
	for _, e := range m.next {
		if e.Type == t {
			return e.Next
		}
	}
	return nil
}

// MatchFragment matches children [start, end) of a fragment and returns the
// resulting state, or nil when some child does not fit.
func (m *ContentMatch) MatchFragment(f Fragment, start, end int) *ContentMatch {
	cur := m
	for i := start; cur != nil && i < end; i++ {
		cur = cur.MatchType(f.Child(i).typ)
	}
	return cur
}

// InlineContent reports whether the first allowed child is inline.
func (m *ContentMatch) InlineContent() bool {
	return len(m.next) > 0 && m.next[0].Type.IsInline()
}

// DefaultType returns the first type that can be created without
// attributes at this point, or nil.
func (m *ContentMatch) DefaultType() *NodeType {
	for _, e := range m.next {
		if !e.Type.IsText() && !e.Type.HasRequiredAttrs() {
			return e.Type
		}
	}
	return nil
}

// Compatible reports whether both states accept some common child type.
func (m *ContentMatch) Compatible(other *ContentMatch) bool {
	for _, a := range m.next {
		for _, b := range other.next {
			if a.Type == b.Type {
				return true
			}
		}
	}
	return false
}

// FindWrapping finds the shortest chain of wrapper types that, inserted at
// this point, would allow a node of the target type. It returns an empty,
// non-nil slice when the target fits directly and nil when no chain exists.
func (m *ContentMatch) FindWrapping(target *NodeType) []*NodeType {
	type step struct {
		match *ContentMatch
		typ   *NodeType
		via   *step
	}
	seen := make(map[*NodeType]bool)
	queue := []*step{{match: m}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.match.MatchType(target) != nil {
			result := []*NodeType{}
			for s := cur; s.typ != nil; s = s.via {
				result = append(result, s.typ)
			}
			for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
				result[i], result[j] = result[j], result[i]
			}
			return result
		}
		for _, e := range cur.match.next {
			if e.Type.IsLeaf() || e.Type.HasRequiredAttrs() || seen[e.Type] {
				continue
			}
			if cur.typ != nil && !e.Next.validEnd {
				continue
			}
			queue = append(queue, &step{match: e.Type.contentMatch, typ: e.Type, via: cur})
			seen[e.Type] = true
		}
	}
	return nil
}

// String renders the automaton state for debugging.
func (m *ContentMatch) String() string {
	parts := make([]string, 0, len(m.next))
	for _, e := range m.next {
		parts = append(parts, e.Type.name)
	}
	s := strings.Join(parts, "|")
	if m.validEnd {
		s += "$"
	}
	return s
}

// Content expressions
//
//	expr     = seq ("|" seq)*
//	seq      = subscript+
//	subscript = atom ("*" | "+" | "?" | "{" n ["," [m]] "}")*
//	atom     = name | "(" expr ")"
//
// Names refer to node types or groups.

type exprKind uint8

const (
	exprChoice exprKind = iota
	exprSeq
	exprStar
	exprPlus
	exprOpt
	exprRange
	exprName
)

type contentExpr struct {
	kind  exprKind
	exprs []*contentExpr
	types []*NodeType
	min   int
	max   int // -1 for unbounded
}

type exprParser struct {
	schema *Schema
	tokens []string
	pos    int
}

func tokenizeContent(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

func (p *exprParser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *exprParser) eat(tok string) bool {
	if p.peek() == tok {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) parseExpr() (*contentExpr, error) {
	var alts []*contentExpr
	for {
		seq, err := p.parseSeq()
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
		if !p.eat("|") {
			break
		}
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return &contentExpr{kind: exprChoice, exprs: alts}, nil
}

func (p *exprParser) parseSeq() (*contentExpr, error) {
	var items []*contentExpr
	for {
		sub, err := p.parseSubscript()
		if err != nil {
			return nil, err
		}
		items = append(items, sub)
		if tok := p.peek(); tok == "" || tok == ")" || tok == "|" {
			break
		}
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &contentExpr{kind: exprSeq, exprs: items}, nil
}

func (p *exprParser) parseSubscript() (*contentExpr, error) {
	e, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.eat("+"):
			e = &contentExpr{kind: exprPlus, exprs: []*contentExpr{e}}
		case p.eat("*"):
			e = &contentExpr{kind: exprStar, exprs: []*contentExpr{e}}
		case p.eat("?"):
			e = &contentExpr{kind: exprOpt, exprs: []*contentExpr{e}}
		case p.eat("{"):
			e, err = p.parseRange(e)
			if err != nil {
				return nil, err
			}
		default:
			return e, nil
		}
	}
}

func (p *exprParser) parseNum() (int, error) {
	n, err := strconv.Atoi(p.peek())
	if err != nil {
		return 0, fmt.Errorf("expected number, got %q", p.peek())
	}
	p.pos++
	return n, nil
}

func (p *exprParser) parseRange(e *contentExpr) (*contentExpr, error) {
	min, err := p.parseNum()
	if err != nil {
		return nil, err
	}
	max := min
	if p.eat(",") {
		if p.peek() == "}" {
			max = -1
		} else if max, err = p.parseNum(); err != nil {
			return nil, err
		}
	}
	if !p.eat("}") {
		return nil, fmt.Errorf("unclosed range")
	}
	if max != -1 && max < min {
		return nil, fmt.Errorf("range max %d below min %d", max, min)
	}
	return &contentExpr{kind: exprRange, exprs: []*contentExpr{e}, min: min, max: max}, nil
}

func (p *exprParser) parseAtom() (*contentExpr, error) {
	if p.eat("(") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.eat(")") {
			return nil, fmt.Errorf("missing closing paren")
		}
		return e, nil
	}
	tok := p.peek()
	if tok == "" || strings.ContainsAny(tok, "()|*+?{},") {
		return nil, fmt.Errorf("unexpected token %q", tok)
	}
	p.pos++
	types := p.resolveName(tok)
	if len(types) == 0 {
		return nil, fmt.Errorf("no node type or group %q", tok)
	}
	return &contentExpr{kind: exprName, types: types}, nil
}

func (p *exprParser) resolveName(name string) []*NodeType {
	if nt := p.schema.nodes[name]; nt != nil {
		return []*NodeType{nt}
	}
	return p.schema.NodesInGroup(name)
}

// nfa is a Thompson automaton; edges with a nil term are epsilon moves.
type nfa struct {
	states [][]nfaEdge
}

type nfaEdge struct {
	term *NodeType
	to   int
}

func (a *nfa) node() int {
	a.states = append(a.states, nil)
	return len(a.states) - 1
}

func (a *nfa) edge(from, to int, term *NodeType) {
	a.states[from] = append(a.states[from], nfaEdge{term: term, to: to})
}

// compile adds the expression starting at state from and returns its end state.
func (a *nfa) compile(e *contentExpr, from int) int {
	switch e.kind {
	case exprName:
		to := a.node()
		for _, t := range e.types {
			a.edge(from, to, t)
		}
		return to
	case exprSeq:
		cur := from
		for _, sub := range e.exprs {
			cur = a.compile(sub, cur)
		}
		return cur
	case exprChoice:
		to := a.node()
		for _, sub := range e.exprs {
			a.edge(a.compile(sub, from), to, nil)
		}
		return to
	case exprStar:
		loop := a.node()
		a.edge(from, loop, nil)
		a.edge(a.compile(e.exprs[0], loop), loop, nil)
		return loop
	case exprPlus:
		loop := a.node()
		a.edge(from, loop, nil)
		end := a.compile(e.exprs[0], loop)
		a.edge(end, loop, nil)
		return end
	case exprOpt:
		end := a.compile(e.exprs[0], from)
		a.edge(from, end, nil)
		return end
	case exprRange:
		cur := from
		for i := 0; i < e.min; i++ {
			cur = a.compile(e.exprs[0], cur)
		}
		if e.max == -1 {
			return a.compile(&contentExpr{kind: exprStar, exprs: e.exprs}, cur)
		}
		for i := e.min; i < e.max; i++ {
			next := a.compile(e.exprs[0], cur)
			a.edge(cur, next, nil)
			cur = next
		}
		return cur
	}
	return from
}

func (a *nfa) closure(set []int) []int {
	seen := make(map[int]bool, len(set))
	stack := append([]int(nil), set...)
	for _, s := range set {
		seen[s] = true
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range a.states[s] {
			if e.term == nil && !seen[e.to] {
				seen[e.to] = true
				stack = append(stack, e.to)
			}
		}
	}
	out := make([]int, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

func stateKey(set []int) string {
	var b strings.Builder
	for i, s := range set {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(s))
	}
	return b.String()
}

// dfa runs the subset construction from the start state.
func (a *nfa) dfa(accept int) *ContentMatch {
	built := make(map[string]*ContentMatch)
	var explore func(set []int) *ContentMatch
	explore = func(set []int) *ContentMatch {
		key := stateKey(set)
		if m, ok := built[key]; ok {
			return m
		}
		m := &ContentMatch{}
		built[key] = m

		var order []*NodeType
		targets := make(map[*NodeType][]int)
		for _, s := range set {
			if s == accept {
				m.validEnd = true
			}
			for _, e := range a.states[s] {
				if e.term == nil {
					continue
				}
				if _, ok := targets[e.term]; !ok {
					order = append(order, e.term)
				}
				targets[e.term] = append(targets[e.term], e.to)
			}
		}
		for _, t := range order {
			m.next = append(m.next, MatchEdge{Type: t, Next: explore(a.closure(targets[t]))})
		}
		return m
	}
	return explore(a.closure([]int{0}))
}

func compileContent(expr string, s *Schema) (*ContentMatch, error) {
	tokens := tokenizeContent(expr)
	if len(tokens) == 0 {
		return emptyMatch, nil
	}
	p := &exprParser{schema: s, tokens: tokens}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("unexpected trailing token %q", p.peek())
	}
	a := &nfa{}
	start := a.node()
	accept := a.compile(e, start)
	return a.dfa(accept), nil
}
