// Package snapshot defines the immutable, read-only state the forecast and
// rule engines reason over: milestones, work items, dependencies, risks,
// decisions and issues, indexed by id.
package snapshot

import "time"

// MilestoneStatus is a closed tag set (spec.md §3).
type MilestoneStatus string

const (
	MilestonePending  MilestoneStatus = "pending"
	MilestoneAtRisk   MilestoneStatus = "at_risk"
	MilestoneAchieved MilestoneStatus = "achieved"
	MilestoneMissed   MilestoneStatus = "missed"
)

// WorkItemStatus is a closed tag set (spec.md §3).
type WorkItemStatus string

const (
	WorkItemNotStarted WorkItemStatus = "not_started"
	WorkItemInProgress WorkItemStatus = "in_progress"
	WorkItemBlocked    WorkItemStatus = "blocked"
	WorkItemCompleted  WorkItemStatus = "completed"
)

// Criticality is a closed tag set for dependency edges (spec.md §3).
type Criticality string

const (
	CriticalityLow      Criticality = "low"
	CriticalityMedium   Criticality = "medium"
	CriticalityHigh     Criticality = "high"
	CriticalityCritical Criticality = "critical"
)

// CriticalityMultiplier maps an edge's criticality to the delay-model
// multiplier from spec.md §4.2.
func CriticalityMultiplier(c Criticality) float64 {
	switch c {
	case CriticalityLow:
		return 0.5
	case CriticalityHigh:
		return 1.5
	case CriticalityCritical:
		return 2.0
	default: // medium, or unset
		return 1.0
	}
}

// RiskStatus is a closed tag set; see spec.md §4.5 for the state machine.
type RiskStatus string

const (
	RiskOpen         RiskStatus = "open"
	RiskMaterialised RiskStatus = "materialising"
	RiskMitigating   RiskStatus = "mitigating"
	RiskAccepted     RiskStatus = "accepted"
	RiskClosed       RiskStatus = "closed"
)

// DecisionType is a closed tag set (spec.md §3).
type DecisionType string

const (
	DecisionChangeScope     DecisionType = "change_scope"
	DecisionAcceptRisk      DecisionType = "accept_risk"
	DecisionMitigateRisk    DecisionType = "mitigate_risk"
	DecisionDelay           DecisionType = "delay"
	DecisionAccelerate      DecisionType = "accelerate"
	DecisionHire            DecisionType = "hire"
	DecisionFire            DecisionType = "fire"
	DecisionAddResource     DecisionType = "add_resource"
	DecisionRemoveResource  DecisionType = "remove_resource"
)

// DecisionStatus is a closed tag set (spec.md §3).
type DecisionStatus string

const (
	DecisionProposed  DecisionStatus = "proposed"
	DecisionApproved  DecisionStatus = "approved"
	DecisionRejected  DecisionStatus = "rejected"
	DecisionSuperseded DecisionStatus = "superseded"
)

// IssueType is a closed tag set (spec.md §3).
type IssueType string

const (
	IssueDependencyBlocked  IssueType = "dependency_blocked"
	IssueResourceConstraint IssueType = "resource_constraint"
	IssueTechnicalBlocker   IssueType = "technical_blocker"
	IssueExternalDependency IssueType = "external_dependency"
	IssueScopeUnclear       IssueType = "scope_unclear"
	IssueOther              IssueType = "other"
)

// IssueStatus is a closed tag set (spec.md §3).
type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueClosed     IssueStatus = "closed"
)

// AcceptanceBoundaryType distinguishes the three ways an accepted risk's
// acceptance can be breached (spec.md §4.4.2).
type AcceptanceBoundaryType string

const (
	BoundaryDate      AcceptanceBoundaryType = "date"
	BoundaryThreshold AcceptanceBoundaryType = "threshold"
	BoundaryEvent     AcceptanceBoundaryType = "event"
)

// AcceptanceBoundary records how an accepted risk's quiet-monitoring window
// ends.
type AcceptanceBoundary struct {
	Type      AcceptanceBoundaryType
	Date      time.Time // used when Type == BoundaryDate
	Threshold float64   // used when Type == BoundaryThreshold
	EventType string    // used when Type == BoundaryEvent
}

// Milestone tracks an ordered set of work items toward a target date.
type Milestone struct {
	ID          string
	Title       string
	TargetDate  time.Time
	WorkItemIDs []string
	Status      MilestoneStatus
	OwnerID     string // references Actor.ID
}

// WorkItem is a unit of delivery work; see spec.md §3 for field semantics.
type WorkItem struct {
	ID                      string
	Title                   string
	EstimatedDays           float64
	ActualDays              *float64
	RemainingDays           *float64
	CompletionPercentage    *float64 // in [0,1]
	Status                  WorkItemStatus
	MilestoneID             string
	ExternalTeamID          string
	ExpectedCompletionDate  *time.Time
	ConfidenceLevel         *float64 // in [0,1]
	DependencyIDs           []string // ids of upstream work items this item depends on (implicit edges)
	OwnerID                 string   // references Actor.ID; who follows up when this item is blocked
}

// Dependency is a directed finish-to-start edge: FromID cannot finish until
// ToID does.
type Dependency struct {
	ID                 string
	FromID             string
	ToID               string
	Criticality        Criticality
	SlackDays          float64
	ProbabilityDelay   float64 // defaults to 1.0 when unset; see NormalizedProbabilityDelay
	ExpectedDelayIfLate float64
}

// NormalizedProbabilityDelay returns d.ProbabilityDelay, defaulting to 1.0
// when the zero value was never set (spec.md §4.2 step on probability
// scaling: "default 1.0").
func (d Dependency) NormalizedProbabilityDelay() float64 {
	if d.ProbabilityDelay == 0 {
		return 1.0
	}
	return d.ProbabilityDelay
}

// RiskImpact carries the magnitude and named targets of a risk's effect.
type RiskImpact struct {
	ImpactDays   float64
	BlockedItem  string
	BlockingItem string
}

// Risk tracks a potential delay source through its state machine (spec.md §4.5).
type Risk struct {
	ID          string
	Title       string
	Description string
	Status      RiskStatus
	Probability float64
	Impact      RiskImpact
	MilestoneID string
	AffectedIDs []string // affected work-item ids

	// Acceptance metadata (spec.md §3, populated when Status == RiskAccepted).
	AcceptedAt             time.Time
	AcceptedBy             string
	AcceptanceBoundary     *AcceptanceBoundary
	NextReviewDate         time.Time
	SuppressEscalationUntil time.Time

	// Mitigation metadata (spec.md §3, populated when Status == RiskMitigating).
	MitigationStartedAt time.Time
	MitigationAction     string
	MitigationDueDate    time.Time
}

// Decision is a proposed or approved change affecting scope, risk posture or
// resourcing.
type Decision struct {
	ID                string
	Type              DecisionType
	Status            DecisionStatus
	EffortDeltaDays   *float64
	RiskID            string
	MilestoneID       string
	AcceptanceUntil   *AcceptanceBoundary
	MitigationAction  string
	MitigationDueDate *time.Time
	Timestamp         time.Time
	Description       string
}

// Issue is a tracked blocker or open question raised by the rule engine.
type Issue struct {
	ID                string
	Type              IssueType
	Status            IssueStatus
	Priority          string
	DependencyID      string
	WorkItemID        string
	RiskID            string
	ImpactDescription string
	ResolutionNotes   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ResolvedAt        *time.Time
}

// ExternalTeamHistory captures an external team's historical reliability,
// used as own-delay signal 5 (spec.md §4.2).
type ExternalTeamHistory struct {
	TeamID           string
	AvgSlipDays      float64
	SlipProbability  float64
	ReliabilityScore float64
}

// AcceptanceBreached reports whether an accepted risk's acceptance boundary
// has been crossed as of now. Per spec.md §9's resolution of the
// accepted-but-breached ambiguity, a breached boundary makes the risk
// behave as "open" at forecast time even though its stored status remains
// "accepted" until the rule engine processes a boundary-breach event.
//
// Event-typed boundaries have no date or threshold to evaluate here; they
// are only resolved when the triggering event itself is processed by the
// rule engine, so they never read as breached from a snapshot alone.
func (r Risk) AcceptanceBreached(now time.Time) bool {
	if r.Status != RiskAccepted || r.AcceptanceBoundary == nil {
		return false
	}
	switch r.AcceptanceBoundary.Type {
	case BoundaryDate:
		return now.After(r.AcceptanceBoundary.Date)
	case BoundaryThreshold:
		return r.Impact.ImpactDays >= r.AcceptanceBoundary.Threshold
	default:
		return false
	}
}

// Actor is a person or system capable of owning a follow-up action.
type Actor struct {
	ID    string
	Name  string
	Email string
}
