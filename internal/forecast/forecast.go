// Package forecast implements the Forecast Engine: a pure function that
// turns a milestone, a state snapshot and an optional perturbation into a
// P50/P80 completion forecast with a causal contribution breakdown.
package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"deliverycore/internal/delay"
	"deliverycore/internal/graph"
	"deliverycore/internal/snapshot"
)

var sfGroup singleflight.Group

// Forecast implements spec.md §4.3's nine-step algorithm. It never mutates
// state; any scenario or mitigation perturbation is applied to a local,
// call-scoped delay.Context and risk-impact override, never to state
// itself.
func Forecast(ctx context.Context, milestoneID string, state *snapshot.State, opts Options) (*Result, error) {
	const op = "forecast.Forecast"

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(milestoneID, state, opts)
	v, err, _ := sfGroup.Do(key, func() (any, error) {
		return compute(ctx, milestoneID, state, opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func compute(ctx context.Context, milestoneID string, state *snapshot.State, opts Options) (*Result, error) {
	const op = "forecast.compute"

	milestone, ok := state.Milestone(milestoneID)
	if !ok {
		return nil, notFound(op, "unknown milestone %q", milestoneID)
	}

	g, err := graph.Build(state)
	if err != nil {
		return nil, err
	}

	scenarioDelays := map[string]float64{}
	var scenarioContribs []Contribution
	var capacityExtra float64

	if s := opts.Scenario; s != nil {
		switch s.Type {
		case ScenarioDependencyDelay:
			scenarioDelays[s.TargetWorkItemID] = s.DelayDays
		case ScenarioScopeChange:
			days := 0.8 * s.EffortDeltaDays
			scenarioContribs = append(scenarioContribs, Contribution{
				Cause: fmt.Sprintf("Scenario: scope +%.1fd", s.EffortDeltaDays),
				Days:  days,
			})
		case ScenarioCapacityChange:
			// capacityExtra is resolved after the base delay is known; see below.
		}
	}

	delayCtx := delay.Context{Snapshot: state, Graph: g, ScenarioDelays: scenarioDelays}
	prop, err := delay.Propagate(ctx, g, delayCtx)
	if err != nil {
		return nil, err
	}

	items := state.MilestoneWorkItems(milestoneID)
	depDelay, depContrib, internalCount, externalCount := dependencyContribution(items, prop)

	mitigationReduction := 0.0
	var mitigatedRiskID string
	if m := opts.Mitigation; m != nil {
		mitigatedRiskID = m.RiskID
		mitigationReduction = m.ExpectedImpactReductionDays
	}

	now := time.Now()
	if opts.Now != nil {
		now = *opts.Now
	}
	riskDelay, riskContribs, openOrMitigatingCount := riskContributions(state, milestoneID, mitigatedRiskID, mitigationReduction, now)

	scopeDelay, scopeContribs := scopeContributions(state, milestoneID)

	var contributions []Contribution
	if depContrib.Days != 0 || len(items) > 0 {
		contributions = append(contributions, depContrib)
	}
	contributions = append(contributions, riskContribs...)
	contributions = append(contributions, scopeContribs...)
	contributions = append(contributions, scenarioContribs...)

	preUncertaintyTotal := depDelay + riskDelay + scopeDelay + sumDays(scenarioContribs)

	if s := opts.Scenario; s != nil && s.Type == ScenarioCapacityChange {
		capacityExtra = preUncertaintyTotal * (1/s.CapacityMultiplier - 1)
		if capacityExtra != 0 {
			contributions = append(contributions, Contribution{
				Cause: fmt.Sprintf("Scenario: capacity ×%.2f", s.CapacityMultiplier),
				Days:  capacityExtra,
			})
		}
	}

	slipP50 := preUncertaintyTotal + capacityExtra

	uncertainty := 3 + 2*float64(openOrMitigatingCount)
	contributions = append(contributions, Contribution{
		Cause: "Uncertainty buffer (P80)",
		Days:  uncertainty,
	})

	total := slipP50 + uncertainty
	reported := sumDays(contributions)
	if math.Abs(reported-total) > 0.5 {
		return nil, internalInvariant(op, "contribution sum %.2f disagrees with slip total %.2f", reported, total)
	}

	sortContributions(contributions)

	p50Date := addDays(milestone.TargetDate, slipP50)
	p80Date := addDays(p50Date, uncertainty)

	explanation := fmt.Sprintf(
		"milestone %s: %d work item(s) (%d internal dependency slip, %d external), "+
			"%d risk(s) contributing, slip p50=%.1fd p80=%.1fd",
		milestoneID, len(items), internalCount, externalCount, riskContributorCount(riskContribs), slipP50, total,
	)

	return &Result{
		MilestoneID:           milestoneID,
		P50Date:               p50Date,
		P80Date:               p80Date,
		DeltaP50Days:          roundDays(slipP50),
		DeltaP80Days:          roundDays(total),
		ConfidenceLevel:       ConfidenceLow,
		ContributionBreakdown: contributions,
		Explanation:           explanation,
	}, nil
}

// dependencyContribution returns the milestone's dependency delay (the max
// propagated delay across its work items, per spec.md §4.2's critical-path
// ripple semantics) and its single labelled contribution entry.
func dependencyContribution(items []snapshot.WorkItem, prop *delay.Propagation) (float64, Contribution, int, int) {
	if len(items) == 0 {
		return 0, Contribution{Cause: "Dependency: (no work items)", Days: 0}, 0, 0
	}
	var maxDelay float64
	var winner snapshot.WorkItem
	internalCount, externalCount := 0, 0
	for _, w := range items {
		if w.ExternalTeamID != "" {
			externalCount++
		} else {
			internalCount++
		}
		d := prop.Propagated[w.ID]
		if d > maxDelay {
			maxDelay = d
			winner = w
		}
	}
	own := prop.Own[winner.ID]
	var cause string
	if own.DominantSignal == "scenario" {
		cause = fmt.Sprintf("Scenario: %s delayed by %.0fd", label(winner), maxDelay)
	} else {
		cause = fmt.Sprintf("Dependency: %s (%.0fd remaining)", label(winner), own.RemainingDays)
	}
	return maxDelay, Contribution{Cause: cause, Days: maxDelay}, internalCount, externalCount
}

func label(w snapshot.WorkItem) string {
	if w.Title != "" {
		return w.Title
	}
	return w.ID
}

func riskContributorCount(cs []Contribution) int { return len(cs) }

func roundDays(d float64) int {
	return int(math.Round(d))
}

func addDays(t time.Time, days float64) time.Time {
	whole := int(math.Round(days))
	return t.AddDate(0, 0, whole)
}

// cacheKey identifies a Forecast call for singleflight collapsing. Because
// Forecast is pure, collapsing identical concurrent calls never changes
// observable behaviour; the key includes the snapshot's pointer identity so
// two distinct snapshots with the same milestone id never collide.
func cacheKey(milestoneID string, state *snapshot.State, opts Options) string {
	return fmt.Sprintf("%p|%s|%d|%+v", state, milestoneID, state.GeneratedAt, opts)
}
