package rules

import (
	"fmt"

	"deliverycore/internal/snapshot"
)

// MitigateRiskRule is spec.md §4.4.3, Rule 5.
type MitigateRiskRule struct{}

func (r *MitigateRiskRule) Name() string { return "mitigate_risk_decision" }

func (r *MitigateRiskRule) Matches(event Event, _ *snapshot.State) bool {
	return event.Type == EventDecisionApproved && event.DecisionType == snapshot.DecisionMitigateRisk
}

func (r *MitigateRiskRule) Execute(event Event, state *snapshot.State) []Command {
	risk, ok := state.Risk(event.RiskID)
	if !ok {
		return []Command{{
			Type:           CommandEmitExplanation,
			TargetObjectID: event.RiskID,
			Reason:         fmt.Sprintf("risk %q not found; decision %q had no target to mitigate", event.RiskID, event.DecisionID),
		}}
	}

	var dueDate any
	if event.MitigationDueDate != nil {
		dueDate = *event.MitigationDueDate
	}

	return []Command{
		{
			Type:           CommandUpdateRisk,
			TargetObjectID: risk.ID,
			Reason:         fmt.Sprintf("decision %s started mitigation of risk %s", event.DecisionID, risk.ID),
			Payload: map[string]any{
				"status":               snapshot.RiskMitigating,
				"mitigation_started_at": event.Timestamp,
				"mitigation_action":    event.MitigationAction,
				"mitigation_due_date":  dueDate,
			},
		},
		{
			Type:           CommandSetNextDate,
			TargetObjectID: risk.ID,
			Reason:         fmt.Sprintf("mitigation due date reached for risk %s", risk.ID),
			Payload: map[string]any{
				"next_date": dueDate,
			},
		},
		{
			Type:           CommandUpdateForecast,
			TargetObjectID: risk.ID,
			Reason:         fmt.Sprintf("mitigation of risk %s may change forecast on completion", risk.ID),
			Payload: map[string]any{
				"trigger": "mitigation_completion",
				"risk_id": risk.ID,
			},
		},
	}
}
