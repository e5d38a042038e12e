package rules

import (
	"fmt"

	"deliverycore/internal/snapshot"
)

// DependencyBlockedRule is spec.md §4.4.1, Rule 1.
type DependencyBlockedRule struct {
	Forecaster ForecastInvoker
}

func (r *DependencyBlockedRule) Name() string { return "dependency_blocked" }

func (r *DependencyBlockedRule) Matches(event Event, _ *snapshot.State) bool {
	return event.Type == EventDependencyBlocked || event.Type == EventDependencyUnavailable
}

func (r *DependencyBlockedRule) Execute(event Event, state *snapshot.State) []Command {
	dep, ok := state.Dependency(event.DependencyID)
	if !ok {
		return []Command{{
			Type:           CommandEmitExplanation,
			TargetObjectID: event.DependencyID,
			Reason:         fmt.Sprintf("dependency %q not found in snapshot; no issue or risk created", event.DependencyID),
			Payload:        map[string]any{"event_id": event.ID},
		}}
	}

	fromTitle, toTitle := dep.FromID, dep.ToID
	if w, ok := state.WorkItem(dep.FromID); ok && w.Title != "" {
		fromTitle = w.Title
	}
	if w, ok := state.WorkItem(dep.ToID); ok && w.Title != "" {
		toTitle = w.Title
	}

	var commands []Command

	issueID := "issue_dep_blocked_" + event.DependencyID
	if _, exists := openDependencyIssue(state, event.DependencyID); !exists {
		commands = append(commands, Command{
			ID:             issueID,
			Type:           CommandCreateIssue,
			TargetObjectID: event.DependencyID,
			Reason:         fmt.Sprintf("dependency %s -> %s is blocked", fromTitle, toTitle),
			Payload: map[string]any{
				"issue_id":      issueID,
				"issue_type":    snapshot.IssueDependencyBlocked,
				"dependency_id": event.DependencyID,
				"description":   fmt.Sprintf("%s is blocked on %s", fromTitle, toTitle),
			},
		})
	}

	delta, err := r.Forecaster.InvokeForecast(milestoneForDependency(state, dep))
	if err == nil && delta.DeltaP80Days >= 7 {
		riskID := "risk_dep_blocked_" + event.DependencyID
		cmdType := CommandCreateRisk
		if _, ok := state.Risk(riskID); ok {
			cmdType = CommandUpdateRisk
		}
		commands = append(commands, Command{
			ID:             riskID,
			Type:           cmdType,
			TargetObjectID: riskID,
			Reason:         fmt.Sprintf("dependency block on %s projected to add %.0fd (p80)", fromTitle, delta.DeltaP80Days),
			Payload: map[string]any{
				"risk_id":         riskID,
				"title":           fmt.Sprintf("Blocked Dependency: %s", fromTitle),
				"description":     fmt.Sprintf("%s is blocked on %s", fromTitle, toTitle),
				"status":          snapshot.RiskMaterialised,
				"blocked_item":    dep.FromID,
				"blocking_item":   dep.ToID,
				"p50_delay_days":  delta.DeltaP50Days,
				"p80_delay_days":  delta.DeltaP80Days,
				"forecast_method": delta.Method,
			},
		})
	}

	owner := dependencyOwner(state, dep)
	commands = append(commands, Command{
		Type:           CommandSetNextDate,
		TargetObjectID: owner,
		Reason:         fmt.Sprintf("follow up on blocked dependency %s in 7 days", event.DependencyID),
		Payload: map[string]any{
			"next_date": event.Timestamp.AddDate(0, 0, 7),
			"owner":     owner,
		},
	})

	return commands
}

// openDependencyIssue looks for an existing open dependency_blocked issue
// for dependencyID, deduplicated by the deterministic id spec.md §4.4.1
// defines.
func openDependencyIssue(state *snapshot.State, dependencyID string) (snapshot.Issue, bool) {
	issue, ok := state.Issue("issue_dep_blocked_" + dependencyID)
	if !ok {
		return snapshot.Issue{}, false
	}
	if issue.Status == snapshot.IssueResolved || issue.Status == snapshot.IssueClosed {
		return snapshot.Issue{}, false
	}
	return issue, true
}

// dependencyOwner resolves the actor who should follow up on a blocked
// dependency: the blocked work item's own owner, falling back to its
// milestone's owner, falling back to the blocked work item itself when
// neither names a real actor.
func dependencyOwner(state *snapshot.State, dep snapshot.Dependency) string {
	w, ok := state.WorkItem(dep.FromID)
	if !ok {
		return dep.FromID
	}
	if w.OwnerID != "" {
		if _, ok := state.Actor(w.OwnerID); ok {
			return w.OwnerID
		}
	}
	if m, ok := state.Milestone(w.MilestoneID); ok && m.OwnerID != "" {
		if _, ok := state.Actor(m.OwnerID); ok {
			return m.OwnerID
		}
	}
	return w.ID
}

func milestoneForDependency(state *snapshot.State, dep snapshot.Dependency) string {
	if w, ok := state.WorkItem(dep.FromID); ok {
		return w.MilestoneID
	}
	return ""
}
