package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"deliverycore/internal/snapshot"
)

func f64(v float64) *float64 { return &v }

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func buildState(t *testing.T, in snapshot.Input) *snapshot.State {
	t.Helper()
	s, err := snapshot.New(in)
	if err != nil {
		t.Fatalf("snapshot.New() error = %v", err)
	}
	return s
}

// TestBaselineForecastWithMaterialisedRisk is spec.md §8 scenario S1.
func TestBaselineForecastWithMaterialisedRisk(t *testing.T) {
	milestone := snapshot.Milestone{
		ID:          "M",
		TargetDate:  date("2026-02-03"),
		WorkItemIDs: []string{"wi1", "wi2", "wi3"},
		Status:      snapshot.MilestonePending,
	}
	items := []snapshot.WorkItem{
		{ID: "wi1", Title: "wi1", MilestoneID: "M", Status: snapshot.WorkItemInProgress, EstimatedDays: 5, RemainingDays: f64(2)},
		{ID: "wi2", Title: "wi2", MilestoneID: "M", Status: snapshot.WorkItemInProgress, EstimatedDays: 5, RemainingDays: f64(2)},
		{ID: "wi3", Title: "wi3", MilestoneID: "M", Status: snapshot.WorkItemInProgress, EstimatedDays: 5, RemainingDays: f64(2)},
	}
	risks := []snapshot.Risk{
		{ID: "r1", MilestoneID: "M", Status: snapshot.RiskMaterialised, Impact: snapshot.RiskImpact{ImpactDays: 3}},
		{ID: "r2", MilestoneID: "M", Status: snapshot.RiskOpen, Probability: 0.4, Impact: snapshot.RiskImpact{ImpactDays: 5}},
	}
	effort := 3.0
	decisions := []snapshot.Decision{
		{ID: "dec1", MilestoneID: "M", Type: snapshot.DecisionChangeScope, Status: snapshot.DecisionApproved, EffortDeltaDays: &effort, Description: "add reporting screen"},
	}

	s := buildState(t, snapshot.Input{
		Milestones: []snapshot.Milestone{milestone},
		WorkItems:  items,
		Risks:      risks,
		Decisions:  decisions,
	})

	result, err := Forecast(context.Background(), "M", s, Options{Now: timePtr(date("2026-01-01"))})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	if result.DeltaP50Days != 8 {
		t.Errorf("DeltaP50Days = %v, want 8", result.DeltaP50Days)
	}
	if result.DeltaP80Days != 13 {
		t.Errorf("DeltaP80Days = %v, want 13", result.DeltaP80Days)
	}
	wantP50 := date("2026-02-11")
	wantP80 := date("2026-02-16")
	if !result.P50Date.Equal(wantP50) {
		t.Errorf("P50Date = %v, want %v", result.P50Date, wantP50)
	}
	if !result.P80Date.Equal(wantP80) {
		t.Errorf("P80Date = %v, want %v", result.P80Date, wantP80)
	}

	assertContributionSum(t, result)
	assertDescendingSort(t, result.ContributionBreakdown)

	wantCauses := map[string]float64{
		"Materialised risk: r1":                      3,
		"Open risk: r2 (probability-weighted)":        1.0,
		"Recent scope change: add reporting screen": 2.4,
		"Uncertainty buffer (P80)":                    5,
	}
	for cause, days := range wantCauses {
		if !hasContribution(result.ContributionBreakdown, cause, days) {
			t.Errorf("contribution breakdown missing {%q: %v}; got %+v", cause, days, result.ContributionBreakdown)
		}
	}
}

// TestDependencyDelayScenario is spec.md §8 scenario S2.
func TestDependencyDelayScenario(t *testing.T) {
	milestone := snapshot.Milestone{
		ID:          "M",
		TargetDate:  date("2026-02-03"),
		WorkItemIDs: []string{"wi1", "wi2", "wi3", "A", "B"},
	}
	items := []snapshot.WorkItem{
		{ID: "wi1", MilestoneID: "M", Status: snapshot.WorkItemInProgress, EstimatedDays: 5, RemainingDays: f64(2)},
		{ID: "wi2", MilestoneID: "M", Status: snapshot.WorkItemInProgress, EstimatedDays: 5, RemainingDays: f64(2)},
		{ID: "wi3", MilestoneID: "M", Status: snapshot.WorkItemInProgress, EstimatedDays: 5, RemainingDays: f64(2)},
		{ID: "A", Title: "A", MilestoneID: "M", Status: snapshot.WorkItemNotStarted, EstimatedDays: 1},
		{ID: "B", Title: "B", MilestoneID: "M", Status: snapshot.WorkItemNotStarted, EstimatedDays: 1},
	}
	deps := []snapshot.Dependency{
		{ID: "d1", FromID: "B", ToID: "A"},
	}
	risks := []snapshot.Risk{
		{ID: "r1", MilestoneID: "M", Status: snapshot.RiskMaterialised, Impact: snapshot.RiskImpact{ImpactDays: 3}},
		{ID: "r2", MilestoneID: "M", Status: snapshot.RiskOpen, Probability: 0.4, Impact: snapshot.RiskImpact{ImpactDays: 5}},
	}
	effort := 3.0
	decisions := []snapshot.Decision{
		{ID: "dec1", MilestoneID: "M", Type: snapshot.DecisionChangeScope, Status: snapshot.DecisionApproved, EffortDeltaDays: &effort},
	}

	s := buildState(t, snapshot.Input{
		Milestones:   []snapshot.Milestone{milestone},
		WorkItems:    items,
		Dependencies: deps,
		Risks:        risks,
		Decisions:    decisions,
	})

	now := timePtr(date("2026-01-01"))
	baseline, err := Forecast(context.Background(), "M", s, Options{Now: now})
	if err != nil {
		t.Fatalf("Forecast(baseline) error = %v", err)
	}
	scenario, err := Forecast(context.Background(), "M", s, Options{
		Now: now,
		Scenario: &Scenario{
			Type:             ScenarioDependencyDelay,
			TargetWorkItemID: "A",
			DelayDays:        5,
		},
	})
	if err != nil {
		t.Fatalf("Forecast(scenario) error = %v", err)
	}

	// Baseline dependency delay is 2 (wi1/wi2/wi3's own delay, since A and B
	// are not_started with no scenario override). Forcing a 5-day scenario
	// delay onto A makes A (and B, which inherits it downstream) the new
	// critical path, so the milestone's dependency delay rises from 2 to 5:
	// a net increase of 3 days that flows straight through to P80.
	if scenario.DeltaP80Days != baseline.DeltaP80Days+3 {
		t.Errorf("scenario p80 = %v, want baseline+3 = %v", scenario.DeltaP80Days, baseline.DeltaP80Days+3)
	}
	if scenario.DeltaP80Days <= baseline.DeltaP80Days {
		t.Errorf("scenario p80 = %v, want greater than baseline %v", scenario.DeltaP80Days, baseline.DeltaP80Days)
	}

	assertContributionSum(t, scenario)
}

func TestForecastUnknownMilestone(t *testing.T) {
	s := buildState(t, snapshot.Input{})
	_, err := Forecast(context.Background(), "missing", s, Options{})
	if err == nil {
		t.Fatal("Forecast() with unknown milestone: want error, got nil")
	}
	if !snapshot.IsKind(err, snapshot.KindNotFound) {
		t.Errorf("Forecast() error kind = %v, want NotFound", err)
	}
}

func TestForecastNoWorkItems(t *testing.T) {
	milestone := snapshot.Milestone{ID: "M", TargetDate: date("2026-01-01")}
	s := buildState(t, snapshot.Input{Milestones: []snapshot.Milestone{milestone}})

	result, err := Forecast(context.Background(), "M", s, Options{})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if result.DeltaP50Days != 0 {
		t.Errorf("DeltaP50Days = %v, want 0", result.DeltaP50Days)
	}
	if result.DeltaP80Days != 3 {
		t.Errorf("DeltaP80Days = %v, want 3 (uncertainty only)", result.DeltaP80Days)
	}
}

func TestForecastAllCompletedStillCountsRiskAndScope(t *testing.T) {
	milestone := snapshot.Milestone{ID: "M", TargetDate: date("2026-01-01"), WorkItemIDs: []string{"wi1"}}
	items := []snapshot.WorkItem{{ID: "wi1", MilestoneID: "M", Status: snapshot.WorkItemCompleted, EstimatedDays: 5}}
	risks := []snapshot.Risk{{ID: "r1", MilestoneID: "M", Status: snapshot.RiskMaterialised, Impact: snapshot.RiskImpact{ImpactDays: 2}}}
	s := buildState(t, snapshot.Input{Milestones: []snapshot.Milestone{milestone}, WorkItems: items, Risks: risks})

	result, err := Forecast(context.Background(), "M", s, Options{})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if result.DeltaP50Days != 2 {
		t.Errorf("DeltaP50Days = %v, want 2 (risk only, dep delay 0)", result.DeltaP50Days)
	}
}

func TestForecastIsPure(t *testing.T) {
	milestone := snapshot.Milestone{ID: "M", TargetDate: date("2026-01-01"), WorkItemIDs: []string{"wi1"}}
	items := []snapshot.WorkItem{{ID: "wi1", MilestoneID: "M", Status: snapshot.WorkItemInProgress, EstimatedDays: 5, RemainingDays: f64(3)}}
	s := buildState(t, snapshot.Input{Milestones: []snapshot.Milestone{milestone}, WorkItems: items})

	first, err := Forecast(context.Background(), "M", s, Options{})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	second, err := Forecast(context.Background(), "M", s, Options{})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if first.DeltaP50Days != second.DeltaP50Days || first.DeltaP80Days != second.DeltaP80Days {
		t.Errorf("Forecast() not deterministic: %+v vs %+v", first, second)
	}
}

// TestMitigationPreview is spec.md §8 scenario S5.
func TestMitigationPreview(t *testing.T) {
	milestone := snapshot.Milestone{ID: "M", TargetDate: date("2026-01-01"), WorkItemIDs: []string{"wi1"}}
	items := []snapshot.WorkItem{{ID: "wi1", MilestoneID: "M", Status: snapshot.WorkItemCompleted, EstimatedDays: 1}}
	risks := []snapshot.Risk{{ID: "R", MilestoneID: "M", Status: snapshot.RiskMaterialised, Impact: snapshot.RiskImpact{ImpactDays: 6}}}
	s := buildState(t, snapshot.Input{Milestones: []snapshot.Milestone{milestone}, WorkItems: items, Risks: risks})

	_, _, improvement, err := ForecastMitigationImpact(context.Background(), "M", s, "R", 4.0)
	if err != nil {
		t.Fatalf("ForecastMitigationImpact() error = %v", err)
	}
	if improvement != 4 {
		t.Errorf("improvement = %v, want 4", improvement)
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func assertContributionSum(t *testing.T, r *Result) {
	t.Helper()
	var sum float64
	for _, c := range r.ContributionBreakdown {
		sum += c.Days
	}
	if math.Abs(sum-float64(r.DeltaP80Days)) > 0.5 {
		t.Errorf("contribution sum = %v, want within 0.5 of DeltaP80Days = %v", sum, r.DeltaP80Days)
	}
}

func assertDescendingSort(t *testing.T, cs []Contribution) {
	t.Helper()
	for i := 1; i < len(cs); i++ {
		if math.Abs(cs[i-1].Days) < math.Abs(cs[i].Days) {
			t.Errorf("contribution breakdown not sorted descending at index %d: %+v", i, cs)
		}
	}
}

func hasContribution(cs []Contribution, cause string, days float64) bool {
	for _, c := range cs {
		if c.Cause == cause && math.Abs(c.Days-days) < 1e-9 {
			return true
		}
	}
	return false
}
