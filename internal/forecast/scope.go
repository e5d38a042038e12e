package forecast

import (
	"fmt"

	"deliverycore/internal/snapshot"
)

// scopeContributions implements spec.md §4.3 step 5: sum 0.8 ×
// effort_delta_days over approved change_scope decisions linked to the
// milestone.
func scopeContributions(state *snapshot.State, milestoneID string) (float64, []Contribution) {
	var total float64
	var contribs []Contribution

	for _, d := range state.AllDecisions() {
		if d.MilestoneID != milestoneID {
			continue
		}
		if d.Type != snapshot.DecisionChangeScope || d.Status != snapshot.DecisionApproved {
			continue
		}
		if d.EffortDeltaDays == nil {
			continue
		}
		days := 0.8 * (*d.EffortDeltaDays)
		desc := d.Description
		if desc == "" {
			desc = d.ID
		}
		contribs = append(contribs, Contribution{
			Cause: fmt.Sprintf("Recent scope change: %s", desc),
			Days:  days,
		})
		total += days
	}

	return total, contribs
}
