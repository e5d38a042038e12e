// Package rules implements the Decision-Risk Rule Engine: a deterministic,
// side-effect-free event processor that turns one event plus an immutable
// state snapshot into an ordered list of commands.
package rules

import (
	"time"

	"deliverycore/internal/snapshot"
)

// EventType is a closed tag set, 19 values across six families (spec.md
// §4.4).
type EventType string

const (
	// Dependency family.
	EventDependencyBlocked     EventType = "DEPENDENCY_BLOCKED"
	EventDependencyUnavailable EventType = "DEPENDENCY_UNAVAILABLE"
	EventDependencyResolved    EventType = "DEPENDENCY_RESOLVED"
	EventDependencyCreated     EventType = "DEPENDENCY_CREATED"

	// Issue family.
	EventIssueCreated   EventType = "ISSUE_CREATED"
	EventIssueUpdated   EventType = "ISSUE_UPDATED"
	EventIssueResolved  EventType = "ISSUE_RESOLVED"
	EventIssueEscalated EventType = "ISSUE_ESCALATED"

	// Risk family.
	EventRiskCreated           EventType = "RISK_CREATED"
	EventRiskMaterialised      EventType = "RISK_MATERIALISED"
	EventRiskBoundaryBreached  EventType = "RISK_BOUNDARY_BREACHED"

	// Decision family.
	EventDecisionProposed EventType = "DECISION_PROPOSED"
	EventDecisionApproved EventType = "DECISION_APPROVED"
	EventDecisionRejected EventType = "DECISION_REJECTED"

	// Change family.
	EventWorkItemStatusChanged EventType = "WORK_ITEM_STATUS_CHANGED"
	EventScopeChanged          EventType = "SCOPE_CHANGED"
	EventMilestoneDateChanged  EventType = "MILESTONE_DATE_CHANGED"

	// Forecast family.
	EventForecastRequested EventType = "FORECAST_REQUESTED"
	EventForecastCompleted EventType = "FORECAST_COMPLETED"
)

// Event is the rule engine's sole input alongside a snapshot. It carries an
// immutable id, type, timestamp and a sparse payload: only the fields
// relevant to Type are populated, the rest are left at their zero value.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	ActorID   string

	// Dependency-family fields.
	DependencyID string

	// Work-item-family fields.
	WorkItemID string
	NewStatus  snapshot.WorkItemStatus

	// Risk-family fields.
	RiskID string

	// Decision-family fields.
	DecisionID         string
	DecisionType       snapshot.DecisionType
	AcceptanceBoundary *snapshot.AcceptanceBoundary
	MitigationAction   string
	MitigationDueDate  *time.Time

	// Milestone-family fields.
	MilestoneID string

	// Issue-family fields.
	IssueID string
}
