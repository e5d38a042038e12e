package forecast

import "time"

// ScenarioType is a closed tag set for the three scenario perturbations
// spec.md §4.3 step 1 defines.
type ScenarioType string

const (
	ScenarioDependencyDelay ScenarioType = "dependency_delay"
	ScenarioScopeChange     ScenarioType = "scope_change"
	ScenarioCapacityChange  ScenarioType = "capacity_change"
)

// Scenario is a what-if perturbation applied to a snapshot for the duration
// of a single Forecast call.
type Scenario struct {
	Type ScenarioType

	// TargetWorkItemID and DelayDays apply to ScenarioDependencyDelay.
	TargetWorkItemID string
	DelayDays        float64

	// EffortDeltaDays applies to ScenarioScopeChange.
	EffortDeltaDays float64

	// CapacityMultiplier applies to ScenarioCapacityChange; must be > 0.
	CapacityMultiplier float64
}

// Mitigation is a hypothetical impact reduction applied to one risk for the
// duration of a single Forecast call.
type Mitigation struct {
	RiskID                       string
	ExpectedImpactReductionDays  float64
}

// Options carries the optional perturbation for one Forecast call. At most
// one of Scenario or Mitigation is set; both nil means a baseline forecast.
// Now, when set, fixes the wall-clock instant used to evaluate accepted-risk
// boundary breaches (spec.md §9); tests set it explicitly to keep Forecast
// reproducible, production callers leave it nil to use time.Now().
type Options struct {
	Scenario   *Scenario
	Mitigation *Mitigation
	Now        *time.Time
}

// Validate checks the option ranges spec.md §7 calls out as InvalidInput:
// negative delay, non-positive capacity multiplier.
func (o Options) Validate() error {
	const op = "forecast.Options.Validate"
	if o.Scenario != nil {
		s := o.Scenario
		switch s.Type {
		case ScenarioDependencyDelay:
			if s.TargetWorkItemID == "" {
				return invalidInput(op, "dependency_delay scenario requires target_work_item_id")
			}
			if s.DelayDays < 0 {
				return invalidInput(op, "dependency_delay scenario requires delay_days >= 0, got %v", s.DelayDays)
			}
		case ScenarioScopeChange:
			// effort_delta_days may be negative (scope reduction); no range check.
		case ScenarioCapacityChange:
			if s.CapacityMultiplier <= 0 {
				return invalidInput(op, "capacity_change scenario requires capacity_multiplier > 0, got %v", s.CapacityMultiplier)
			}
		default:
			return invalidInput(op, "unknown scenario type %q", s.Type)
		}
	}
	if o.Mitigation != nil {
		if o.Mitigation.RiskID == "" {
			return invalidInput(op, "mitigation requires risk_id")
		}
		if o.Mitigation.ExpectedImpactReductionDays < 0 {
			return invalidInput(op, "mitigation requires expected_impact_reduction_days >= 0")
		}
	}
	return nil
}
