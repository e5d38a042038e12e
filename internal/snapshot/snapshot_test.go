package snapshot

import (
	"testing"
	"time"
)

func TestNewRejectsDuplicateIDs(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{
			name: "DuplicateMilestone",
			in: Input{Milestones: []Milestone{
				{ID: "m1"}, {ID: "m1"},
			}},
		},
		{
			name: "DuplicateWorkItem",
			in: Input{WorkItems: []WorkItem{
				{ID: "w1"}, {ID: "w1"},
			}},
		},
		{
			name: "DuplicateDependency",
			in: Input{
				WorkItems: []WorkItem{{ID: "a"}, {ID: "b"}},
				Dependencies: []Dependency{
					{ID: "d1", FromID: "a", ToID: "b"},
					{ID: "d1", FromID: "a", ToID: "b"},
				},
			},
		},
		{
			name: "DuplicateRisk",
			in: Input{Risks: []Risk{
				{ID: "r1"}, {ID: "r1"},
			}},
		},
		{
			name: "DuplicateDecision",
			in: Input{Decisions: []Decision{
				{ID: "dec1"}, {ID: "dec1"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.in)
			if err == nil {
				t.Fatal("New() with duplicate id: want error, got nil")
			}
			if !IsKind(err, KindInvalidInput) {
				t.Errorf("New() error kind = %v, want InvalidInput", err)
			}
		})
	}
}

func TestNewRejectsDanglingReferences(t *testing.T) {
	t.Run("WorkItemUnknownMilestone", func(t *testing.T) {
		_, err := New(Input{WorkItems: []WorkItem{{ID: "w1", MilestoneID: "missing"}}})
		if err == nil {
			t.Fatal("New(): want error, got nil")
		}
		if !IsKind(err, KindInvalidInput) {
			t.Errorf("error kind = %v, want InvalidInput", err)
		}
	})

	t.Run("DependencyUnknownFrom", func(t *testing.T) {
		_, err := New(Input{
			WorkItems:    []WorkItem{{ID: "b"}},
			Dependencies: []Dependency{{ID: "d1", FromID: "missing", ToID: "b"}},
		})
		if err == nil {
			t.Fatal("New(): want error, got nil")
		}
		if !IsKind(err, KindInvalidGraph) {
			t.Errorf("error kind = %v, want InvalidGraph", err)
		}
	})

	t.Run("DependencyUnknownTo", func(t *testing.T) {
		_, err := New(Input{
			WorkItems:    []WorkItem{{ID: "a"}},
			Dependencies: []Dependency{{ID: "d1", FromID: "a", ToID: "missing"}},
		})
		if err == nil {
			t.Fatal("New(): want error, got nil")
		}
		if !IsKind(err, KindInvalidGraph) {
			t.Errorf("error kind = %v, want InvalidGraph", err)
		}
	})
}

func TestCriticalityMultiplier(t *testing.T) {
	tests := []struct {
		c    Criticality
		want float64
	}{
		{CriticalityLow, 0.5},
		{CriticalityMedium, 1.0},
		{CriticalityHigh, 1.5},
		{CriticalityCritical, 2.0},
		{Criticality(""), 1.0},
	}
	for _, tt := range tests {
		t.Run(string(tt.c)+"_or_unset", func(t *testing.T) {
			if got := CriticalityMultiplier(tt.c); got != tt.want {
				t.Errorf("CriticalityMultiplier(%q) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestNormalizedProbabilityDelayDefaultsToOne(t *testing.T) {
	d := Dependency{}
	if got := d.NormalizedProbabilityDelay(); got != 1.0 {
		t.Errorf("NormalizedProbabilityDelay() on zero value = %v, want 1.0", got)
	}
	d2 := Dependency{ProbabilityDelay: 0.3}
	if got := d2.NormalizedProbabilityDelay(); got != 0.3 {
		t.Errorf("NormalizedProbabilityDelay() = %v, want 0.3", got)
	}
}

func TestAcceptanceBreached(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("NotAccepted", func(t *testing.T) {
		r := Risk{Status: RiskOpen}
		if r.AcceptanceBreached(now) {
			t.Error("AcceptanceBreached() = true, want false for a non-accepted risk")
		}
	})

	t.Run("DateBoundaryNotYetBreached", func(t *testing.T) {
		r := Risk{Status: RiskAccepted, AcceptanceBoundary: &AcceptanceBoundary{
			Type: BoundaryDate, Date: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		}}
		if r.AcceptanceBreached(now) {
			t.Error("AcceptanceBreached() = true, want false (boundary date is in the future)")
		}
	})

	t.Run("DateBoundaryBreached", func(t *testing.T) {
		r := Risk{Status: RiskAccepted, AcceptanceBoundary: &AcceptanceBoundary{
			Type: BoundaryDate, Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		}}
		if !r.AcceptanceBreached(now) {
			t.Error("AcceptanceBreached() = false, want true (boundary date is in the past)")
		}
	})

	t.Run("ThresholdBoundaryBreached", func(t *testing.T) {
		r := Risk{
			Status:             RiskAccepted,
			Impact:             RiskImpact{ImpactDays: 10},
			AcceptanceBoundary: &AcceptanceBoundary{Type: BoundaryThreshold, Threshold: 8},
		}
		if !r.AcceptanceBreached(now) {
			t.Error("AcceptanceBreached() = false, want true (impact exceeds threshold)")
		}
	})

	t.Run("ThresholdBoundaryNotBreached", func(t *testing.T) {
		r := Risk{
			Status:             RiskAccepted,
			Impact:             RiskImpact{ImpactDays: 2},
			AcceptanceBoundary: &AcceptanceBoundary{Type: BoundaryThreshold, Threshold: 8},
		}
		if r.AcceptanceBreached(now) {
			t.Error("AcceptanceBreached() = true, want false (impact below threshold)")
		}
	})

	t.Run("EventBoundaryNeverBreachedFromSnapshotAlone", func(t *testing.T) {
		r := Risk{Status: RiskAccepted, AcceptanceBoundary: &AcceptanceBoundary{Type: BoundaryEvent, EventType: "RISK_BOUNDARY_BREACHED"}}
		if r.AcceptanceBreached(now) {
			t.Error("AcceptanceBreached() = true, want false (event boundaries only resolve via the rule engine)")
		}
	})
}

func TestMilestoneWorkItemsOrderedByMilestoneListing(t *testing.T) {
	s, err := New(Input{
		Milestones: []Milestone{{ID: "m1", WorkItemIDs: []string{"b", "a", "c"}}},
		WorkItems:  []WorkItem{{ID: "a", MilestoneID: "m1"}, {ID: "b", MilestoneID: "m1"}, {ID: "c", MilestoneID: "m1"}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := s.MilestoneWorkItems("m1")
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("MilestoneWorkItems() = %v, want %v", got, want)
	}
	for i, w := range got {
		if w.ID != want[i] {
			t.Errorf("MilestoneWorkItems()[%d] = %q, want %q", i, w.ID, want[i])
		}
	}
}

func TestRisksForWorkItemByBlockedItemAndAffectedIDs(t *testing.T) {
	risks := []Risk{
		{ID: "r1", Impact: RiskImpact{BlockedItem: "wi1"}},
		{ID: "r2", AffectedIDs: []string{"wi1"}},
		{ID: "r3", AffectedIDs: []string{"wi2"}},
	}
	s, err := New(Input{Risks: risks})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := s.RisksForWorkItem("wi1")
	if len(got) != 2 {
		t.Fatalf("RisksForWorkItem(wi1) = %+v, want 2 risks", got)
	}
}

func TestActorsAreIndexedAndResolvable(t *testing.T) {
	actor := Actor{ID: "actor1", Name: "Priya Shah", Email: "priya@example.com"}
	s, err := New(Input{
		Actors:     []Actor{actor},
		Milestones: []Milestone{{ID: "m1", OwnerID: "actor1"}},
		WorkItems:  []WorkItem{{ID: "w1", MilestoneID: "m1", OwnerID: "actor1"}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, ok := s.Actor("actor1")
	if !ok {
		t.Fatal("Actor(actor1): want found, got not found")
	}
	if got != actor {
		t.Errorf("Actor(actor1) = %+v, want %+v", got, actor)
	}

	all := s.AllActors()
	if len(all) != 1 || all[0].ID != "actor1" {
		t.Errorf("AllActors() = %+v, want [actor1]", all)
	}
}

func TestNewRejectsUnknownOwner(t *testing.T) {
	t.Run("MilestoneOwner", func(t *testing.T) {
		_, err := New(Input{Milestones: []Milestone{{ID: "m1", OwnerID: "missing"}}})
		if err == nil {
			t.Fatal("New(): want error, got nil")
		}
		if !IsKind(err, KindInvalidInput) {
			t.Errorf("error kind = %v, want InvalidInput", err)
		}
	})

	t.Run("WorkItemOwner", func(t *testing.T) {
		_, err := New(Input{WorkItems: []WorkItem{{ID: "w1", OwnerID: "missing"}}})
		if err == nil {
			t.Fatal("New(): want error, got nil")
		}
		if !IsKind(err, KindInvalidInput) {
			t.Errorf("error kind = %v, want InvalidInput", err)
		}
	})
}

func TestNewRejectsDuplicateActor(t *testing.T) {
	_, err := New(Input{Actors: []Actor{{ID: "a1"}, {ID: "a1"}}})
	if err == nil {
		t.Fatal("New(): want error, got nil")
	}
	if !IsKind(err, KindInvalidInput) {
		t.Errorf("error kind = %v, want InvalidInput", err)
	}
}
