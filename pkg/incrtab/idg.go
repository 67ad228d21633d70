package incrtab

// Node is a vertex of the incremental dependency graph: either a dynamic
// Predicate or a Table. Dynamic predicates are only ever sources of
// invalidation, never targets.
type Node interface {
	nodeKey() string
	nodeLabel() string
}

// EdgeMode is the maintenance mode of a dependency edge.
type EdgeMode int

const (
	// EdgeIncremental edges invalidate the dependent when the dependency
	// changes.
	EdgeIncremental EdgeMode = iota

	// EdgeMonotonic edges route new facts through a propagation function
	// instead of invalidating.
	EdgeMonotonic
)

// String returns a human-readable edge mode.
func (m EdgeMode) String() string {
	if m == EdgeMonotonic {
		return "monotonic"
	}
	return "incremental"
}

// PropagationFunc computes, from one new fact of the edge's dependency, the
// answers that fact contributes to the edge's dependent table. Returned
// tuples already present in the table are ignored by the propagator.
//
// The function is an opaque continuation supplied by the evaluator at
// dependency-recording time; it must capture whatever state it needs to
// perform the delta computation.
type PropagationFunc func(fact Tuple) []Tuple

// Edge is a directed dependency: dependent table -> dependency node.
type Edge struct {
	dependent  *Table
	dependency Node
	mode       EdgeMode
	propagate  PropagationFunc
}

// Dependent returns the table on the depending side of the edge.
func (e *Edge) Dependent() *Table { return e.dependent }

// Dependency returns the node the dependent was computed from.
func (e *Edge) Dependency() Node { return e.dependency }

// Mode returns the edge's maintenance mode.
func (e *Edge) Mode() EdgeMode { return e.mode }

// IDG is the incremental dependency graph linking tables to the predicates
// and tables they were computed from. The graph is expected to contain
// cycles (mutually recursive tabled relations); invalidation and propagation
// terminate via the falsecount and worklist disciplines, not via acyclicity.
type IDG struct {
	out map[uint64][]*Edge  // dependent table key -> outgoing edges
	in  map[string][]*Edge  // dependency node key -> incoming edges
}

// NewIDG creates an empty dependency graph.
func NewIDG() *IDG {
	return &IDG{
		out: make(map[uint64][]*Edge),
		in:  make(map[string][]*Edge),
	}
}

// Record adds the edge dependent -> dependency. The evaluator reports each
// distinct dependency once per evaluation; duplicates for the same
// (dependent, dependency) pair are merged, keeping the first recorded edge.
func (g *IDG) Record(dependent *Table, dependency Node, mode EdgeMode, fn PropagationFunc) *Edge {
	key := dependent.pattern.Key()
	for _, e := range g.out[key] {
		if e.dependency.nodeKey() == dependency.nodeKey() {
			return e
		}
	}
	e := &Edge{
		dependent:  dependent,
		dependency: dependency,
		mode:       mode,
		propagate:  fn,
	}
	g.out[key] = append(g.out[key], e)
	g.in[dependency.nodeKey()] = append(g.in[dependency.nodeKey()], e)
	return e
}

// ClearOutgoing removes every outgoing edge of the table. Called at the
// start of each fresh full evaluation: dependencies are re-discovered from
// scratch, matching the dynamic nature of rule resolution.
func (g *IDG) ClearOutgoing(t *Table) {
	key := t.pattern.Key()
	edges := g.out[key]
	if len(edges) == 0 {
		return
	}
	delete(g.out, key)
	for _, e := range edges {
		nk := e.dependency.nodeKey()
		in := g.in[nk]
		for i, other := range in {
			if other == e {
				g.in[nk] = append(in[:i], in[i+1:]...)
				break
			}
		}
		if len(g.in[nk]) == 0 {
			delete(g.in, nk)
		}
	}
}

// DependentsOf returns the edges whose dependency is the given node, i.e.
// the tables that were computed using it.
func (g *IDG) DependentsOf(n Node) []*Edge {
	return g.in[n.nodeKey()]
}

// OutgoingOf returns the table's current outgoing edges.
func (g *IDG) OutgoingOf(t *Table) []*Edge {
	return g.out[t.pattern.Key()]
}

// Clear drops all edges.
func (g *IDG) Clear() {
	g.out = make(map[uint64][]*Edge)
	g.in = make(map[string][]*Edge)
}
