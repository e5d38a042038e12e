package rules

import (
	"fmt"

	"deliverycore/internal/snapshot"
)

// RiskAutoResolutionRule implements spec.md §4.5's "any -> closed"
// transition: when a work item transitions out of blocked, every risk tied
// to it closes. The three-way scan order (deterministic id, impact.blocked_item,
// affected_items membership) is preserved exactly as the source documents
// describe, per spec.md §9's open question resolution: compatibility over
// a single authoritative link.
type RiskAutoResolutionRule struct{}

func (r *RiskAutoResolutionRule) Name() string { return "risk_auto_resolution" }

func (r *RiskAutoResolutionRule) Matches(event Event, _ *snapshot.State) bool {
	return event.Type == EventWorkItemStatusChanged && event.NewStatus != snapshot.WorkItemBlocked
}

func (r *RiskAutoResolutionRule) Execute(event Event, state *snapshot.State) []Command {
	var commands []Command
	for _, riskID := range relatedRiskIDs(state, event.WorkItemID) {
		risk, ok := state.Risk(riskID)
		if !ok || risk.Status == snapshot.RiskClosed {
			continue
		}
		commands = append(commands, Command{
			Type:           CommandUpdateRisk,
			TargetObjectID: risk.ID,
			Reason:         fmt.Sprintf("%s is no longer blocked", event.WorkItemID),
			Payload: map[string]any{
				"status":          snapshot.RiskClosed,
				"resolution_note": fmt.Sprintf("%s is no longer blocked", event.WorkItemID),
			},
		})
	}
	return commands
}

// relatedRiskIDs performs the three-way scan spec.md §4.5 requires, in
// order, deduplicating ids that match more than one key: the risk's own
// deterministic id built from the blocked-work-item id, its
// impact.blocked_item, and affected_items membership.
func relatedRiskIDs(state *snapshot.State, workItemID string) []string {
	seen := make(map[string]bool)
	var ids []string

	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	add("risk_from_blocked_" + workItemID)

	risks := state.RisksForWorkItem(workItemID)
	for _, risk := range risks {
		if risk.Impact.BlockedItem == workItemID {
			add(risk.ID)
		}
	}
	for _, risk := range risks {
		add(risk.ID) // the rest match via affected_items
	}

	return ids
}
