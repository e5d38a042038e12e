package graph

import (
	"testing"

	"deliverycore/internal/snapshot"
)

func buildState(t *testing.T, items []snapshot.WorkItem, deps []snapshot.Dependency) *snapshot.State {
	t.Helper()
	s, err := snapshot.New(snapshot.Input{WorkItems: items, Dependencies: deps})
	if err != nil {
		t.Fatalf("snapshot.New() error = %v", err)
	}
	return s
}

func TestBuildTopoOrder(t *testing.T) {
	tests := []struct {
		name  string
		items []snapshot.WorkItem
		deps  []snapshot.Dependency
		want  []string
	}{
		{
			name:  "NoEdges",
			items: []snapshot.WorkItem{{ID: "b"}, {ID: "a"}},
			want:  []string{"a", "b"},
		},
		{
			name:  "SimpleChain",
			items: []snapshot.WorkItem{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			deps:  []snapshot.Dependency{{ID: "d1", FromID: "a", ToID: "b"}, {ID: "d2", FromID: "b", ToID: "c"}},
			want:  []string{"c", "b", "a"},
		},
		{
			name:  "Diamond",
			items: []snapshot.WorkItem{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
			deps: []snapshot.Dependency{
				{ID: "d1", FromID: "a", ToID: "b"},
				{ID: "d2", FromID: "a", ToID: "c"},
				{ID: "d3", FromID: "b", ToID: "d"},
				{ID: "d4", FromID: "c", ToID: "d"},
			},
			want: []string{"d", "b", "c", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildState(t, tt.items, tt.deps)
			g, err := Build(s)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			got := g.TopoOrder()
			if len(got) != len(tt.want) {
				t.Fatalf("TopoOrder() = %v, want %v", got, tt.want)
			}
			pos := make(map[string]int, len(got))
			for i, id := range got {
				pos[id] = i
			}
			for _, d := range tt.deps {
				if pos[d.ToID] > pos[d.FromID] {
					t.Errorf("TopoOrder() puts %q after %q, want %q before %q", d.ToID, d.FromID, d.ToID, d.FromID)
				}
			}
		})
	}
}

func TestBuildCycleDetection(t *testing.T) {
	items := []snapshot.WorkItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	deps := []snapshot.Dependency{
		{ID: "d1", FromID: "a", ToID: "b"},
		{ID: "d2", FromID: "b", ToID: "c"},
		{ID: "d3", FromID: "c", ToID: "a"},
	}
	s := buildState(t, items, deps)

	_, err := Build(s)
	if err == nil {
		t.Fatal("Build() with a cycle: want error, got nil")
	}
	if !snapshot.IsKind(err, snapshot.KindInvalidGraph) {
		t.Errorf("Build() error kind = %v, want InvalidGraph", err)
	}
}

func TestSelfDependencyRejected(t *testing.T) {
	items := []snapshot.WorkItem{{ID: "a"}}
	deps := []snapshot.Dependency{{ID: "d1", FromID: "a", ToID: "a"}}
	s := buildState(t, items, deps)

	if _, err := Build(s); err == nil {
		t.Fatal("Build() with self-dependency: want error, got nil")
	}
}

func TestDownstreamClosure(t *testing.T) {
	items := []snapshot.WorkItem{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	deps := []snapshot.Dependency{
		{ID: "d1", FromID: "b", ToID: "a"},
		{ID: "d2", FromID: "c", ToID: "b"},
		{ID: "d3", FromID: "d", ToID: "b"},
	}
	s := buildState(t, items, deps)
	g, err := Build(s)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := g.DownstreamClosure("a")
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("DownstreamClosure(a) = %v, want %v", got, want)
	}
	seen := make(map[string]bool)
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			t.Errorf("DownstreamClosure(a) missing %q", id)
		}
	}
}
