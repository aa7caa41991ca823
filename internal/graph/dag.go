// Package graph implements the dependency graph over resource ids: two
// adjacency mappings (forward edges to dependencies, reverse edges to
// dependents) plus validation and the topological orderings the planner
// uses to sequence creates/updates and deletes.
package graph

import "fmt"

// DAG is a dependency graph keyed by resource id. It is built
// incrementally via Add and is safe to query (Validate,
// TopologicalOrder, ReverseTopologicalOrder) only after every resource
// in the plan has been added.
type DAG struct {
	order   []string            // insertion order, for deterministic tie-breaking
	known   map[string]bool     // every id seen, as a node or as someone's dependency
	added   map[string]bool     // ids explicitly passed to Add as the resource itself
	forward map[string][]string // id -> ids it depends on
	reverse map[string][]string // id -> ids that depend on it
}

// NewDAG returns an empty graph.
func NewDAG() *DAG {
	return &DAG{
		known:   make(map[string]bool),
		added:   make(map[string]bool),
		forward: make(map[string][]string),
		reverse: make(map[string][]string),
	}
}

// Add records id as a managed node and its dependency ids as edges.
func (d *DAG) Add(id string, deps []string) {
	d.remember(id)
	d.added[id] = true
	for _, dep := range deps {
		d.remember(dep)
		d.forward[id] = append(d.forward[id], dep)
		d.reverse[dep] = append(d.reverse[dep], id)
	}
}

func (d *DAG) remember(id string) {
	if !d.known[id] {
		d.known[id] = true
		d.order = append(d.order, id)
	}
}

// MissingDependency pairs an id with a dependency id it names that was
// never added to the graph.
type MissingDependency struct {
	ID        string
	DependsOn string
}

// ValidationError reports every dangling dependency edge found by
// Validate, so the caller can name every offending resource at once
// rather than stopping at the first.
type ValidationError struct {
	Missing []MissingDependency
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%d unresolved dependency edge(s):", len(e.Missing))
	for _, m := range e.Missing {
		msg += fmt.Sprintf(" %s -> %s,", m.ID, m.DependsOn)
	}
	return msg[:len(msg)-1]
}

// Validate reports every dependency edge whose target id was never
// itself added as a node via Add. A nil result means every id named as a
// dependency is a managed node.
func (d *DAG) Validate() error {
	var missing []MissingDependency
	for _, id := range d.order {
		for _, dep := range d.forward[id] {
			if !d.added[dep] {
				missing = append(missing, MissingDependency{ID: id, DependsOn: dep})
			}
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// TopologicalOrder returns every added id, dependencies before
// dependents, via Kahn's algorithm. Ties (nodes simultaneously ready)
// are broken by insertion order, so the result is deterministic across
// runs regardless of map iteration order.
func (d *DAG) TopologicalOrder() []string {
	return d.kahn(d.forward, d.reverse)
}

// ReverseTopologicalOrder returns every added id, dependents before
// dependencies: the order deletions must run in so that a resource is
// removed only after everything that depended on it.
func (d *DAG) ReverseTopologicalOrder() []string {
	return d.kahn(d.reverse, d.forward)
}

// kahn runs Kahn's algorithm over the added nodes using inEdges to
// compute in-degree and outEdges to relax successors, processing the
// ready set in d.order each round rather than in map-iteration order.
func (d *DAG) kahn(inEdges, outEdges map[string][]string) []string {
	inDegree := make(map[string]int, len(d.added))
	for id := range d.added {
		inDegree[id] = 0
	}
	for id := range d.added {
		for _, from := range inEdges[id] {
			if d.added[from] {
				inDegree[id]++
			}
		}
	}

	var ready []string
	for _, id := range d.order {
		if d.added[id] && inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]string, 0, len(d.added))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)

		var unlocked []string
		for _, succ := range outEdges[next] {
			if !d.added[succ] {
				continue
			}
			inDegree[succ]--
			if inDegree[succ] == 0 {
				unlocked = append(unlocked, succ)
			}
		}
		// Insert newly-unlocked nodes into ready preserving global
		// insertion order, not discovery order, so output is stable
		// regardless of which edge unlocked a node first.
		ready = mergeByInsertionOrder(ready, unlocked, d.order)
	}

	return out
}

func mergeByInsertionOrder(ready, unlocked, order []string) []string {
	if len(unlocked) == 0 {
		return ready
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	combined := append(append([]string{}, ready...), unlocked...)
	for i := 1; i < len(combined); i++ {
		for j := i; j > 0 && pos[combined[j-1]] > pos[combined[j]]; j-- {
			combined[j-1], combined[j] = combined[j], combined[j-1]
		}
	}
	return combined
}
