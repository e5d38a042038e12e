package rules

import (
	"fmt"
	"time"
)

// CommandType is a closed tag set, 15 values across five families
// (spec.md §4.4).
type CommandType string

const (
	// Issue family.
	CommandCreateIssue   CommandType = "CREATE_ISSUE"
	CommandUpdateIssue   CommandType = "UPDATE_ISSUE"
	CommandResolveIssue  CommandType = "RESOLVE_ISSUE"
	CommandEscalateIssue CommandType = "ESCALATE_ISSUE"

	// Risk family.
	CommandCreateRisk          CommandType = "CREATE_RISK"
	CommandUpdateRisk          CommandType = "UPDATE_RISK"
	CommandSetRiskStatus       CommandType = "SET_STATUS"
	CommandLinkRiskToMilestone CommandType = "LINK_TO_MILESTONE"

	// Decision family.
	CommandLinkDecisionToRisk  CommandType = "LINK_TO_RISK"
	CommandMarkDecisionEffective CommandType = "MARK_EFFECTIVE"

	// Forecast family.
	CommandUpdateForecast    CommandType = "UPDATE_FORECAST"
	CommandRecomputeForecast CommandType = "RECOMPUTE"

	// Control family.
	CommandSetNextDate     CommandType = "SET_NEXT_DATE"
	CommandAssignOwner     CommandType = "ASSIGN_OWNER"
	CommandEmitExplanation CommandType = "EMIT_EXPLANATION"
)

// Command is one instruction emitted by a rule. Execution is external to
// this package; the executor is expected to be idempotent on ID.
type Command struct {
	ID             string
	Type           CommandType
	TargetObjectID string
	Reason         string
	RuleName       string
	Timestamp      time.Time
	Priority       string
	Payload        map[string]any
}

// nextCommandID derives a deterministic id from the triggering event, the
// issuing rule's name and the command's ordinal position within that rule's
// Execute call, satisfying spec.md §4.4's uniqueness-within-one-ProcessEvent-
// call invariant without any randomness or clock read.
func nextCommandID(eventID, ruleName string, ordinal int) string {
	return fmt.Sprintf("cmd_%s_%s_%d", eventID, ruleName, ordinal)
}
