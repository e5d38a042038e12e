// Package delay implements the six-signal own-delay model and the max-plus
// critical-path propagation described in spec.md §4.2.
package delay

import (
	"time"

	"deliverycore/internal/graph"
	"deliverycore/internal/snapshot"
)

// OwnDelay is the result of evaluating a single work item's own-delay
// candidates: the winning (largest) candidate after criticality/slack/
// probability scaling, plus enough provenance for the forecast engine to
// label its contribution entry.
type OwnDelay struct {
	Days          float64
	DominantSignal string // "scenario" or one of "progress", "completion", "date_slip", "external_team", "status_fallback"
	RemainingDays float64 // best estimate of days of work remaining, for the "(<n>d remaining)" label
}

// Context carries the per-forecast-call inputs that modulate own-delay
// beyond the snapshot itself: scenario overrides and the dependency graph
// needed to find a governing edge and estimate "needed-by" dates.
type Context struct {
	Snapshot       *snapshot.State
	Graph          *graph.Graph
	ScenarioDelays map[string]float64 // work_item_id -> days, from a dependency_delay scenario in forecast.Options
}

// ComputeOwnDelay evaluates all six signals for item and returns the
// maximum scaled candidate. Completed items always return zero.
func ComputeOwnDelay(item snapshot.WorkItem, ctx Context) OwnDelay {
	if item.Status == snapshot.WorkItemCompleted {
		return OwnDelay{Days: 0, DominantSignal: "status_fallback"}
	}

	remaining := remainingEstimate(item)

	type candidate struct {
		days   float64
		signal string
	}
	var candidates []candidate

	if d, ok := ctx.ScenarioDelays[item.ID]; ok {
		candidates = append(candidates, candidate{d, "scenario"})
	}
	if item.RemainingDays != nil && *item.RemainingDays > 0 {
		candidates = append(candidates, candidate{*item.RemainingDays, "progress"})
	}
	if item.CompletionPercentage != nil && *item.CompletionPercentage < 1 {
		candidates = append(candidates, candidate{item.EstimatedDays - *item.CompletionPercentage*item.EstimatedDays, "completion"})
	}
	if d, ok := dateSlipCandidate(item, ctx); ok {
		candidates = append(candidates, candidate{d, "date_slip"})
	}
	if d, ok := externalTeamCandidate(item, ctx, remaining); ok {
		candidates = append(candidates, candidate{d, "external_team"})
	}
	candidates = append(candidates, candidate{statusFallback(item), "status_fallback"})

	best := candidate{days: -1}
	for _, c := range candidates {
		if c.days > best.days {
			best = c
		}
	}
	if best.days < 0 {
		best = candidate{0, "status_fallback"}
	}

	mult, slack, prob := governingEdgeFactors(item, ctx)
	scaled := best.days * mult
	scaled -= slack
	if scaled < 0 {
		scaled = 0
	}
	scaled *= prob

	return OwnDelay{Days: scaled, DominantSignal: best.signal, RemainingDays: remaining}
}

// remainingEstimate is the "more pessimistic wins" resolution from spec.md
// §3: when both remaining_days and completion_percentage are present, the
// larger implied remaining-work figure governs.
func remainingEstimate(item snapshot.WorkItem) float64 {
	candidates := []float64{}
	if item.RemainingDays != nil {
		candidates = append(candidates, *item.RemainingDays)
	}
	if item.CompletionPercentage != nil {
		candidates = append(candidates, (1-*item.CompletionPercentage)*item.EstimatedDays)
	}
	if len(candidates) == 0 {
		return item.EstimatedDays
	}
	max := candidates[0]
	for _, c := range candidates[1:] {
		if c > max {
			max = c
		}
	}
	return max
}

// dateSlipCandidate implements signal 4. The "needed-by" date is
// approximated as the earliest dependent's expected start, itself
// approximated as expected_completion_date - estimated_days, since the data
// model carries no explicit start date.
func dateSlipCandidate(item snapshot.WorkItem, ctx Context) (float64, bool) {
	if item.ExpectedCompletionDate == nil {
		return 0, false
	}
	var neededBy time.Time
	found := false
	for _, depID := range ctx.Graph.Downstream(item.ID) {
		dep, ok := ctx.Snapshot.WorkItem(depID)
		if !ok || dep.ExpectedCompletionDate == nil {
			continue
		}
		start := dep.ExpectedCompletionDate.AddDate(0, 0, -int(dep.EstimatedDays))
		if !found || start.Before(neededBy) {
			neededBy = start
			found = true
		}
	}
	if !found {
		return 0, false
	}
	days := item.ExpectedCompletionDate.Sub(neededBy).Hours() / 24
	if days < 0 {
		days = 0
	}
	return days, true
}

// externalTeamCandidate implements signal 5.
func externalTeamCandidate(item snapshot.WorkItem, ctx Context, remaining float64) (float64, bool) {
	if item.ExternalTeamID == "" {
		return 0, false
	}
	hist, ok := ctx.Snapshot.TeamHistory(item.ExternalTeamID)
	if !ok {
		return 0, false
	}
	base := item.EstimatedDays
	if remaining > base {
		base = remaining
	}
	return base * (1 - hist.ReliabilityScore) * hist.SlipProbability, true
}

// statusFallback implements signal 6, used whenever no structured signal
// applies (it is always present as a floor candidate).
func statusFallback(item snapshot.WorkItem) float64 {
	switch item.Status {
	case snapshot.WorkItemBlocked:
		if item.RemainingDays != nil {
			return *item.RemainingDays
		}
		return item.EstimatedDays
	case snapshot.WorkItemInProgress:
		if item.RemainingDays == nil && item.CompletionPercentage == nil {
			return item.EstimatedDays / 2
		}
		return 0
	case snapshot.WorkItemNotStarted:
		return 0
	default:
		return 0
	}
}

// governingEdgeFactors picks the upstream edge of item with the highest
// criticality multiplier to scale, slack-reduce and probability-scale the
// own-delay candidate. Items with no upstream edges are unscaled (1.0
// multiplier, zero slack, certain probability): spec.md §4.2 names "the
// governing dependency edge" without defining which edge governs when a
// work item has several; we resolve ties toward the most critical edge,
// since that is the one most likely to make the delay materialise.
func governingEdgeFactors(item snapshot.WorkItem, ctx Context) (mult, slack, prob float64) {
	edges := ctx.Snapshot.DependenciesFrom(item.ID)
	if len(edges) == 0 {
		return 1.0, 0, 1.0
	}
	best := edges[0]
	bestMult := snapshot.CriticalityMultiplier(best.Criticality)
	for _, e := range edges[1:] {
		m := snapshot.CriticalityMultiplier(e.Criticality)
		if m > bestMult {
			best, bestMult = e, m
		}
	}
	return bestMult, best.SlackDays, best.NormalizedProbabilityDelay()
}
