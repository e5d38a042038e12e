package rules

import (
	"fmt"

	"deliverycore/internal/snapshot"
)

// AcceptRiskRule is spec.md §4.4.2, Rule 4.
type AcceptRiskRule struct{}

func (r *AcceptRiskRule) Name() string { return "accept_risk_decision" }

func (r *AcceptRiskRule) Matches(event Event, _ *snapshot.State) bool {
	return event.Type == EventDecisionApproved && event.DecisionType == snapshot.DecisionAcceptRisk
}

func (r *AcceptRiskRule) Execute(event Event, state *snapshot.State) []Command {
	risk, ok := state.Risk(event.RiskID)
	if !ok {
		return []Command{{
			Type:           CommandEmitExplanation,
			TargetObjectID: event.RiskID,
			Reason:         fmt.Sprintf("risk %q not found; decision %q had no target to accept", event.RiskID, event.DecisionID),
		}}
	}

	boundary := event.AcceptanceBoundary
	commands := []Command{
		{
			Type:           CommandUpdateRisk,
			TargetObjectID: risk.ID,
			Reason:         fmt.Sprintf("decision %s accepted risk %s", event.DecisionID, risk.ID),
			Payload: map[string]any{
				"status":           snapshot.RiskAccepted,
				"accepted_at":      event.Timestamp,
				"accepted_by":      event.ActorID,
				"acceptance_boundary": boundary,
				"escalation_mode":  "quiet_monitoring",
			},
		},
	}

	nextReview := event.Timestamp.AddDate(0, 0, 7)
	var suppressUntil any
	if boundary != nil && boundary.Type == snapshot.BoundaryDate {
		if boundary.Date.Before(nextReview) {
			nextReview = boundary.Date
		}
		suppressUntil = boundary.Date
	}

	commands = append(commands, Command{
		Type:           CommandSetNextDate,
		TargetObjectID: risk.ID,
		Reason:         fmt.Sprintf("next review for accepted risk %s", risk.ID),
		Payload: map[string]any{
			"next_date":                 nextReview,
			"suppress_escalation_until": suppressUntil,
		},
	})

	return commands
}
