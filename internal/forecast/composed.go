package forecast

import (
	"context"

	"deliverycore/internal/snapshot"
)

// ForecastWithScenario runs Forecast twice — once baseline, once with the
// given scenario — per spec.md §4.3's composed-helper contract. It never
// introduces a second algorithm path.
func ForecastWithScenario(ctx context.Context, milestoneID string, state *snapshot.State, scenario Scenario) (baseline, withScenario *Result, err error) {
	baseline, err = Forecast(ctx, milestoneID, state, Options{})
	if err != nil {
		return nil, nil, err
	}
	withScenario, err = Forecast(ctx, milestoneID, state, Options{Scenario: &scenario})
	if err != nil {
		return nil, nil, err
	}
	return baseline, withScenario, nil
}

// ForecastMitigationImpact runs Forecast twice — once baseline, once with a
// hypothetical impact reduction applied to riskID — and reports the
// improvement on P80 as a positive number of days saved.
func ForecastMitigationImpact(ctx context.Context, milestoneID string, state *snapshot.State, riskID string, reductionDays float64) (current, withMitigation *Result, improvementDaysOnP80 float64, err error) {
	current, err = Forecast(ctx, milestoneID, state, Options{})
	if err != nil {
		return nil, nil, 0, err
	}
	withMitigation, err = Forecast(ctx, milestoneID, state, Options{
		Mitigation: &Mitigation{RiskID: riskID, ExpectedImpactReductionDays: reductionDays},
	})
	if err != nil {
		return nil, nil, 0, err
	}
	improvementDaysOnP80 = float64(current.DeltaP80Days - withMitigation.DeltaP80Days)
	return current, withMitigation, improvementDaysOnP80, nil
}
