package rules

import "deliverycore/internal/snapshot"

// Rule pairs a match predicate with an execution function over the same
// (event, snapshot) input. Rules share no implementation; the engine's only
// job is deterministic iteration (spec.md §9, "composition not
// inheritance").
type Rule interface {
	Name() string
	Matches(event Event, state *snapshot.State) bool
	Execute(event Event, state *snapshot.State) []Command
}

// RuleInfo is the introspection shape returned by Engine.Registry, letting
// a caller (or a test) confirm the fixed iteration order without reaching
// into engine internals.
type RuleInfo struct {
	Name        string
	MatchedType string // "*" for rules that inspect multiple event types at runtime
}

// Engine holds an ordered rule registry. Iteration order is fixed at
// construction and is part of the contract: spec.md §4.4 requires
// byte-identical command output for identical inputs, which in turn
// requires a stable rule order.
type Engine struct {
	rules []Rule
}

// NewEngine builds the v1 registry: three fully-implemented rules, six
// reserved rules (registered with real Matches predicates and a nil-
// returning Execute, per SPEC_FULL.md §6), then the risk auto-resolution
// rule that applies regardless of which event family triggered a work
// item's status change.
func NewEngine(forecaster ForecastInvoker) *Engine {
	if forecaster == nil {
		forecaster = HeuristicStub{}
	}
	return &Engine{
		rules: []Rule{
			&DependencyBlockedRule{Forecaster: forecaster},
			&AcceptRiskRule{},
			&MitigateRiskRule{},
			&reservedRule{name: "reserved_resource_constraint_escalation", types: []EventType{EventIssueEscalated}},
			&reservedRule{name: "reserved_external_dependency_followup", types: []EventType{EventDependencyUnavailable}},
			&reservedRule{name: "reserved_scope_unclear_flag", types: []EventType{EventScopeChanged}},
			&reservedRule{name: "reserved_milestone_date_renegotiation", types: []EventType{EventMilestoneDateChanged}},
			&reservedRule{name: "reserved_decision_rejected_notification", types: []EventType{EventDecisionRejected}},
			&reservedRule{name: "reserved_forecast_completion_broadcast", types: []EventType{EventForecastCompleted}},
			&RiskAutoResolutionRule{},
		},
	}
}

// Registry returns rule metadata in fixed registration order, for
// introspection (e.g. the engine_rules MCP tool).
func (e *Engine) Registry() []RuleInfo {
	out := make([]RuleInfo, 0, len(e.rules))
	for _, r := range e.rules {
		info := RuleInfo{Name: r.Name(), MatchedType: "*"}
		switch rr := r.(type) {
		case *AcceptRiskRule, *MitigateRiskRule:
			info.MatchedType = string(EventDecisionApproved)
		case *RiskAutoResolutionRule:
			info.MatchedType = string(EventWorkItemStatusChanged)
		case *reservedRule:
			if len(rr.types) == 1 {
				info.MatchedType = string(rr.types[0])
			}
		}
		out = append(out, info)
	}
	return out
}

// ProcessEvent matches event against every rule in registry order and
// concatenates their emitted commands, in rule order then emission order
// within a rule. It never mutates state and always returns a complete,
// explicit command list — including an empty one when nothing matched.
func (e *Engine) ProcessEvent(event Event, state *snapshot.State) []Command {
	var out []Command
	for _, r := range e.rules {
		if !r.Matches(event, state) {
			continue
		}
		cmds := r.Execute(event, state)
		for i := range cmds {
			if cmds[i].ID == "" {
				cmds[i].ID = nextCommandID(event.ID, r.Name(), i)
			}
			if cmds[i].RuleName == "" {
				cmds[i].RuleName = r.Name()
			}
			if cmds[i].Timestamp.IsZero() {
				cmds[i].Timestamp = event.Timestamp
			}
		}
		out = append(out, cmds...)
	}
	return out
}
