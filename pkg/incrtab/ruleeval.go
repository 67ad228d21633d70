// Reference evaluator: a small Datalog-style resolution collaborator for the
// tabling core. It evaluates rule-defined relations bottom-up over the fact
// store, reports the dependencies it consults, and supplies delta-rule
// propagation functions for monotonic edges.
//
// The evaluator is deliberately modest: it supports ground facts, rules over
// declared predicates, references to other rule-defined relations
// (materialized through their own tables), and self-recursive rules
// (transitive closures and the like). Mutually recursive groups spanning
// distinct predicates are evaluated against whatever partial answers the
// in-progress tables expose and should be avoided; a full SLG engine is the
// original home of that machinery.

package incrtab

import (
	"context"
	"fmt"
	"strings"
)

// Literal is one atom of a rule: a predicate name with argument symbols.
// An argument starting with an ASCII uppercase letter is a variable; "_" is
// an anonymous variable; anything else is a constant.
type Literal struct {
	Pred string
	Args []string
}

// L builds a literal.
func L(pred string, args ...string) Literal {
	return Literal{Pred: pred, Args: args}
}

// String returns a form like "connected(X, Z)".
func (l Literal) String() string {
	return l.Pred + "(" + strings.Join(l.Args, ", ") + ")"
}

// Rule is a definite clause: Head holds when every body literal holds.
type Rule struct {
	Head Literal
	Body []Literal
}

// NewRule builds a rule from a head and body literals.
func NewRule(head Literal, body ...Literal) Rule {
	return Rule{Head: head, Body: body}
}

// String returns a form like "connected(X, Z) :- connected(X, Y), link(Y, Z)".
func (r Rule) String() string {
	if len(r.Body) == 0 {
		return r.Head.String()
	}
	parts := make([]string, len(r.Body))
	for i, l := range r.Body {
		parts[i] = l.String()
	}
	return r.Head.String() + " :- " + strings.Join(parts, ", ")
}

// RuleEvaluator implements Evaluator over a static rule program. Rules are
// added up front; the dynamic part of the world lives in the Database's fact
// store.
type RuleEvaluator struct {
	rules map[string][]Rule
}

// NewRuleEvaluator creates an evaluator with no rules.
func NewRuleEvaluator() *RuleEvaluator {
	return &RuleEvaluator{rules: make(map[string][]Rule)}
}

// AddRule registers a rule. Rules must be range-restricted: every head
// variable must occur in the body, and the head may not use "_". All rules
// for one predicate must agree on arity.
func (re *RuleEvaluator) AddRule(r Rule) error {
	if r.Head.Pred == "" {
		return fmt.Errorf("incrtab: rule head has empty predicate")
	}
	bodyVars := make(map[string]struct{})
	for _, l := range r.Body {
		for _, a := range l.Args {
			if isRuleVar(a) {
				bodyVars[a] = struct{}{}
			}
		}
	}
	for _, a := range r.Head.Args {
		if a == Free {
			return fmt.Errorf("incrtab: rule %s uses _ in head", r)
		}
		if isRuleVar(a) {
			if _, ok := bodyVars[a]; !ok {
				return fmt.Errorf("incrtab: rule %s is not range-restricted: head variable %s not in body", r, a)
			}
		}
	}
	for _, prev := range re.rules[r.Head.Pred] {
		if len(prev.Head.Args) != len(r.Head.Args) {
			return fmt.Errorf("%w: rule %s disagrees with earlier arity %d",
				ErrConflictingDeclaration, r, len(prev.Head.Args))
		}
	}
	re.rules[r.Head.Pred] = append(re.rules[r.Head.Pred], r)
	return nil
}

// MustAddRule is AddRule panicking on error, for program construction.
func (re *RuleEvaluator) MustAddRule(r Rule) {
	if err := re.AddRule(r); err != nil {
		panic(err)
	}
}

// bodyExtent resolves one body predicate for an evaluation: either a dynamic
// predicate's extension or another rule-defined relation materialized
// through its table.
type bodyExtent struct {
	pred   *Predicate
	table  *Table // non-nil for rule-defined relations
	tuples []Tuple
}

// Evaluate computes the relation's extension restricted to the call pattern.
// The extension is the predicate's own facts plus everything derivable by
// its rules, iterated to a fixpoint for self-recursive programs.
func (re *RuleEvaluator) Evaluate(ctx context.Context, call *CallPattern, env Env) (*AnswerSet, error) {
	pred := call.Predicate()
	name := pred.Name()
	rules := re.rules[name]

	for _, r := range rules {
		if len(r.Head.Args) != pred.Arity() {
			return nil, arityMismatch(name, pred.Arity(), len(r.Head.Args))
		}
	}

	// Subgoal abstraction: a bound call on a rule-defined relation is served
	// as a filter over the relation's canonical all-free table. The canonical
	// table does the real work and holds the full extension; the bound table
	// depends on it with an identity delta (the core filters against the
	// bound pattern on insert). Without this, a bound table of a recursive
	// relation could not absorb deltas whose derivations pass through
	// intermediate answers outside its own pattern.
	if len(rules) > 0 && call.HasBoundArgs() {
		return re.evaluateViaCanonical(ctx, call, env)
	}

	// The relation's own facts always contribute, and later asserts to the
	// predicate must reach this table: record the self-predicate edge with
	// the identity delta.
	self := env.Self()
	_, ownFacts, err := env.Facts(name)
	if err != nil {
		return nil, err
	}
	env.DependsOn(pred, func(fact Tuple) []Tuple {
		return []Tuple{fact}
	})

	full := NewAnswerSet()
	for _, f := range ownFacts {
		full.Add(f)
	}

	// Resolve every body predicate once. Rule-defined relations are
	// materialized through their own tables (recursively tabled); dynamic
	// predicates are read from the fact store. Self-references join against
	// the growing extension.
	extents := make(map[string]*bodyExtent)
	selfRecursive := false
	for _, r := range rules {
		for _, l := range r.Body {
			if l.Pred == name {
				selfRecursive = true
				continue
			}
			if _, done := extents[l.Pred]; done {
				continue
			}
			p, facts, err := env.Facts(l.Pred)
			if err != nil {
				return nil, err
			}
			if len(l.Args) != p.Arity() {
				return nil, arityMismatch(l.Pred, p.Arity(), len(l.Args))
			}
			ext := &bodyExtent{pred: p}
			if _, defined := re.rules[l.Pred]; defined {
				free := make([]string, p.Arity())
				for i := range free {
					free[i] = Free
				}
				cp, err := env.Pattern(l.Pred, free...)
				if err != nil {
					return nil, err
				}
				tbl, answers, err := env.Answers(ctx, cp)
				if err != nil {
					return nil, err
				}
				ext.table = tbl
				ext.tuples = answers
			} else {
				ext.tuples = facts
			}
			extents[l.Pred] = ext
		}
	}

	// Bottom-up fixpoint. Non-recursive programs converge in one pass.
	for changed := true; changed; {
		changed = false
		for _, r := range rules {
			derived, err := re.fireRule(r, name, full, extents)
			if err != nil {
				return nil, err
			}
			for _, t := range derived {
				if full.Add(t) {
					changed = true
				}
			}
		}
	}

	re.recordDependencies(env, self, name, rules, extents, selfRecursive)

	answers := NewAnswerSet()
	for _, t := range full.Tuples() {
		if call.Matches(t) {
			answers.Add(t)
		}
	}
	return answers, nil
}

// evaluateViaCanonical materializes the relation's all-free table and
// restricts its answers to the bound call pattern.
func (re *RuleEvaluator) evaluateViaCanonical(ctx context.Context, call *CallPattern, env Env) (*AnswerSet, error) {
	pred := call.Predicate()
	free := make([]string, pred.Arity())
	for i := range free {
		free[i] = Free
	}
	cp, err := env.Pattern(pred.Name(), free...)
	if err != nil {
		return nil, err
	}
	tbl, answers, err := env.Answers(ctx, cp)
	if err != nil {
		return nil, err
	}
	env.DependsOn(tbl, func(fact Tuple) []Tuple {
		return []Tuple{fact}
	})

	out := NewAnswerSet()
	for _, t := range answers {
		if call.Matches(t) {
			out.Add(t)
		}
	}
	return out, nil
}

// fireRule derives all head instantiations of one rule against the current
// extents.
func (re *RuleEvaluator) fireRule(r Rule, selfName string, selfSet *AnswerSet, extents map[string]*bodyExtent) ([]Tuple, error) {
	extentOf := func(l Literal) []Tuple {
		if l.Pred == selfName {
			return selfSet.Tuples()
		}
		return extents[l.Pred].tuples
	}
	frontier := []ruleBindings{{}}
	for _, l := range r.Body {
		var next []ruleBindings
		tuples := extentOf(l)
		for _, b := range frontier {
			for _, t := range tuples {
				if nb, ok := matchLiteral(l, t, b); ok {
					next = append(next, nb)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			return nil, nil
		}
	}
	out := make([]Tuple, 0, len(frontier))
	for _, b := range frontier {
		head, ok := instantiate(r.Head, b)
		if !ok {
			return nil, fmt.Errorf("incrtab: rule %s produced unbound head", r)
		}
		out = append(out, head)
	}
	return out, nil
}

// recordDependencies reports one edge per distinct dependency node,
// aggregating the delta-rule closures of every (rule, body position) pair
// that consults the node. The delta for a node computes, from one new tuple
// of that node, the head tuples it newly supports, joining the remaining
// body positions against extensions current at propagation time.
func (re *RuleEvaluator) recordDependencies(env Env, self *Table, name string, rules []Rule, extents map[string]*bodyExtent, selfRecursive bool) {
	reader := env.Reader()

	extentAt := func(l Literal) []Tuple {
		if l.Pred == name {
			return reader.AnswersOf(self)
		}
		ext := extents[l.Pred]
		if ext.table != nil {
			return reader.AnswersOf(ext.table)
		}
		return reader.FactsOf(ext.pred)
	}

	type target struct {
		node   Node
		deltas []func(fact Tuple) []Tuple
	}
	targets := make(map[string]*target)

	addDelta := func(node Node, r Rule, pos int) {
		rr, p := r, pos
		delta := func(fact Tuple) []Tuple {
			b, ok := matchLiteral(rr.Body[p], fact, ruleBindings{})
			if !ok {
				return nil
			}
			frontier := []ruleBindings{b}
			for i, l := range rr.Body {
				if i == p {
					continue
				}
				var next []ruleBindings
				tuples := extentAt(l)
				for _, fb := range frontier {
					for _, t := range tuples {
						if nb, ok := matchLiteral(l, t, fb); ok {
							next = append(next, nb)
						}
					}
				}
				frontier = next
				if len(frontier) == 0 {
					return nil
				}
			}
			out := make([]Tuple, 0, len(frontier))
			for _, fb := range frontier {
				if head, ok := instantiate(rr.Head, fb); ok {
					out = append(out, head)
				}
			}
			return out
		}
		tg, ok := targets[node.nodeKey()]
		if !ok {
			tg = &target{node: node}
			targets[node.nodeKey()] = tg
		}
		tg.deltas = append(tg.deltas, delta)
	}

	for _, r := range rules {
		for pos, l := range r.Body {
			if l.Pred == name {
				if selfRecursive {
					addDelta(self, r, pos)
				}
				continue
			}
			ext := extents[l.Pred]
			if ext.table != nil {
				addDelta(ext.table, r, pos)
			} else {
				addDelta(ext.pred, r, pos)
			}
		}
	}

	for _, tg := range targets {
		deltas := tg.deltas
		env.DependsOn(tg.node, func(fact Tuple) []Tuple {
			var out []Tuple
			for _, d := range deltas {
				out = append(out, d(fact)...)
			}
			return out
		})
	}
}

// ruleBindings maps rule variables to constants during a join.
type ruleBindings map[string]string

func isRuleVar(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

// matchLiteral unifies a literal with a ground tuple under existing
// bindings, returning the extended bindings on success.
func matchLiteral(l Literal, t Tuple, b ruleBindings) (ruleBindings, bool) {
	if len(l.Args) != len(t) {
		return nil, false
	}
	nb := make(ruleBindings, len(b)+len(l.Args))
	for k, v := range b {
		nb[k] = v
	}
	for i, a := range l.Args {
		switch {
		case a == Free:
			// anonymous: matches anything, binds nothing
		case isRuleVar(a):
			if bound, ok := nb[a]; ok {
				if bound != t[i] {
					return nil, false
				}
			} else {
				nb[a] = t[i]
			}
		default:
			if a != t[i] {
				return nil, false
			}
		}
	}
	return nb, true
}

// instantiate grounds a head literal under bindings. Every variable must be
// bound (guaranteed for range-restricted rules).
func instantiate(l Literal, b ruleBindings) (Tuple, bool) {
	out := make(Tuple, len(l.Args))
	for i, a := range l.Args {
		if isRuleVar(a) {
			v, ok := b[a]
			if !ok {
				return nil, false
			}
			out[i] = v
		} else {
			out[i] = a
		}
	}
	return out, true
}
