package forecast

import (
	"fmt"
	"time"

	"deliverycore/internal/snapshot"
)

// riskContributions implements spec.md §4.3 step 4. mitigatedRiskID and
// reduction, when set, apply a hypothetical mitigation preview to that
// risk's effective impact for the duration of this call only.
func riskContributions(state *snapshot.State, milestoneID, mitigatedRiskID string, reduction float64, now time.Time) (float64, []Contribution, int) {
	var total float64
	var contribs []Contribution
	openOrMitigating := 0

	for _, r := range state.AllRisks() {
		if r.MilestoneID != milestoneID {
			continue
		}
		effectiveImpact := r.Impact.ImpactDays
		if r.ID == mitigatedRiskID {
			effectiveImpact -= reduction
			if effectiveImpact < 0 {
				effectiveImpact = 0
			}
		}

		status := effectiveStatus(r, now)

		var days float64
		var cause string
		switch status {
		case snapshot.RiskMaterialised:
			days = effectiveImpact
			cause = fmt.Sprintf("Materialised risk: %s", riskLabel(r))
		case snapshot.RiskOpen:
			days = effectiveImpact * r.Probability * 0.5
			cause = fmt.Sprintf("Open risk: %s (probability-weighted)", riskLabel(r))
			openOrMitigating++
		case snapshot.RiskMitigating:
			days = effectiveImpact * 0.3
			cause = fmt.Sprintf("Mitigating risk: %s (reduced buffer)", riskLabel(r))
			openOrMitigating++
		default: // accepted, closed
			continue
		}

		if days == 0 {
			continue
		}
		total += days
		contribs = append(contribs, Contribution{Cause: cause, Days: days})
	}

	return total, contribs, openOrMitigating
}

// effectiveStatus resolves spec.md §9's accepted-but-breached open question:
// an accepted risk whose acceptance boundary has been breached behaves as
// open at forecast time.
func effectiveStatus(r snapshot.Risk, now time.Time) snapshot.RiskStatus {
	if r.Status == snapshot.RiskAccepted && r.AcceptanceBreached(now) {
		return snapshot.RiskOpen
	}
	return r.Status
}

func riskLabel(r snapshot.Risk) string {
	if r.Title != "" {
		return r.Title
	}
	return r.ID
}
