// Package graph builds the dependency DAG over a snapshot's work items and
// provides the topological order the delay model's critical-path
// propagation pass requires.
package graph

import (
	"fmt"
	"sort"

	"deliverycore/internal/snapshot"
)

// Graph is the directed dependency graph over a snapshot's work items. An
// edge A -> B means "A depends on B" (A cannot finish before B does), which
// matches snapshot.Dependency's FromID -> ToID direction.
type Graph struct {
	nodes       []string            // all work item ids, sorted
	upstream    map[string][]string // node -> ids it depends on (its ToID set)
	downstream  map[string][]string // node -> ids that depend on it (its FromID set)
	topoOrder   []string            // dependencies-first order
	topoIndex   map[string]int
}

// Build constructs the dependency graph from s's work items and dependency
// edges, implicit edges included via snapshot.WorkItem.DependencyIDs acting
// as additional ToID references resolved against the same work item ids.
// Build fails with an InvalidGraph error if the edges contain a cycle.
func Build(s *snapshot.State) (*Graph, error) {
	const op = "graph.Build"

	g := &Graph{
		upstream:   make(map[string][]string),
		downstream: make(map[string][]string),
	}

	items := s.AllWorkItems()
	nodeSet := make(map[string]bool, len(items))
	for _, w := range items {
		nodeSet[w.ID] = true
		g.nodes = append(g.nodes, w.ID)
	}
	sort.Strings(g.nodes)

	addEdge := func(from, to string) error {
		if !nodeSet[from] || !nodeSet[to] {
			return snapshot.InvalidGraphf(op, "edge %s->%s references unknown work item", from, to)
		}
		if from == to {
			return snapshot.InvalidGraphf(op, "work item %s cannot depend on itself", from)
		}
		g.upstream[from] = appendIfMissing(g.upstream[from], to)
		g.downstream[to] = appendIfMissing(g.downstream[to], from)
		return nil
	}

	for _, d := range s.AllDependencies() {
		if err := addEdge(d.FromID, d.ToID); err != nil {
			return nil, err
		}
	}
	for _, w := range items {
		for _, toID := range w.DependencyIDs {
			if err := addEdge(w.ID, toID); err != nil {
				return nil, err
			}
		}
	}

	for _, n := range g.nodes {
		sort.Strings(g.upstream[n])
		sort.Strings(g.downstream[n])
	}

	order, err := topoSort(g.nodes, g.upstream)
	if err != nil {
		return nil, err
	}
	g.topoOrder = order
	g.topoIndex = make(map[string]int, len(order))
	for i, id := range order {
		g.topoIndex[id] = i
	}

	return g, nil
}

func appendIfMissing(s []string, v string) []string {
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	return append(s, v)
}

// topoSort returns nodes in dependencies-first order: if A depends on B, B
// appears before A. Ties are broken lexicographically by id for
// determinism. Returns an InvalidGraph error naming the cycle's members if
// the upstream relation is not acyclic.
func topoSort(nodes []string, upstream map[string][]string) ([]string, error) {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(nodes))
	order := make([]string, 0, len(nodes))
	var stack []string

	var visit func(n string) error
	visit = func(n string) error {
		color[n] = grey
		stack = append(stack, n)
		deps := append([]string(nil), upstream[n]...)
		sort.Strings(deps)
		for _, dep := range deps {
			switch color[dep] {
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			case grey:
				return snapshot.InvalidGraphf("graph.topoSort", "dependency cycle detected involving %v", cycleMembers(stack, dep))
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		order = append(order, n)
		return nil
	}

	for _, n := range nodes {
		if color[n] == white {
			if err := visit(n); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

func cycleMembers(stack []string, closeAt string) []string {
	for i, n := range stack {
		if n == closeAt {
			members := append([]string(nil), stack[i:]...)
			return append(members, closeAt)
		}
	}
	return append([]string(nil), stack...)
}

// TopoOrder returns the full dependencies-first order of all work item ids.
func (g *Graph) TopoOrder() []string { return append([]string(nil), g.topoOrder...) }

// Upstream returns the ids workItemID directly depends on, sorted.
func (g *Graph) Upstream(workItemID string) []string {
	return append([]string(nil), g.upstream[workItemID]...)
}

// Downstream returns the ids that directly depend on workItemID, sorted.
func (g *Graph) Downstream(workItemID string) []string {
	return append([]string(nil), g.downstream[workItemID]...)
}

// DownstreamClosure returns the full transitive set of ids that depend
// (directly or indirectly) on workItemID, sorted by id.
func (g *Graph) DownstreamClosure(workItemID string) []string {
	seen := make(map[string]bool)
	var walk func(n string)
	walk = func(n string) {
		for _, next := range g.downstream[n] {
			if !seen[next] {
				seen[next] = true
				walk(next)
			}
		}
	}
	walk(workItemID)
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Before reports whether a appears before b in the topological order, i.e.
// a must be resolved no later than b. Panics if either id is not a node;
// callers are expected to have validated ids against the snapshot first.
func (g *Graph) Before(a, b string) bool {
	ia, ok := g.topoIndex[a]
	if !ok {
		panic(fmt.Sprintf("graph.Before: unknown node %q", a))
	}
	ib, ok := g.topoIndex[b]
	if !ok {
		panic(fmt.Sprintf("graph.Before: unknown node %q", b))
	}
	return ia < ib
}
