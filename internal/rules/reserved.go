package rules

import "deliverycore/internal/snapshot"

// reservedRule implements one of spec.md §4.4's six declared-but-
// unimplemented rules: it has a real Matches predicate, so ProcessEvent's
// explicit-outcome invariant ("a rule may match and still emit zero
// commands, but it must never be silently skipped") is observable in
// tests, while Execute deliberately returns no commands until the rule is
// specified.
type reservedRule struct {
	name  string
	types []EventType
}

func (r *reservedRule) Name() string { return r.name }

func (r *reservedRule) Matches(event Event, _ *snapshot.State) bool {
	for _, t := range r.types {
		if event.Type == t {
			return true
		}
	}
	return false
}

func (r *reservedRule) Execute(Event, *snapshot.State) []Command {
	return nil
}
