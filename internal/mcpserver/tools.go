package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"deliverycore/internal/forecast"
	"deliverycore/internal/rules"
	"deliverycore/internal/snapshot"
)

// --- forecast_milestone ---

type ForecastMilestoneInput struct {
	MilestoneID string `json:"milestone_id" jsonschema:"the id of the milestone to forecast"`
}

func (s *Server) handleForecastMilestone(ctx context.Context, req *mcp.CallToolRequest, in ForecastMilestoneInput) (*mcp.CallToolResult, forecast.Result, error) {
	state, err := s.loader.Load()
	if err != nil {
		return nil, forecast.Result{}, err
	}
	result, err := forecast.Forecast(ctx, in.MilestoneID, state, forecast.Options{})
	if err != nil {
		return nil, forecast.Result{}, err
	}
	return textResult(summarize(*result)), *result, nil
}

// --- forecast_scenario ---

type ForecastScenarioInput struct {
	MilestoneID        string  `json:"milestone_id"`
	ScenarioType        string  `json:"scenario_type" jsonschema:"one of dependency_delay, scope_change, capacity_change"`
	TargetWorkItemID    string  `json:"target_work_item_id,omitempty"`
	DelayDays           float64 `json:"delay_days,omitempty"`
	EffortDeltaDays     float64 `json:"effort_delta_days,omitempty"`
	CapacityMultiplier  float64 `json:"capacity_multiplier,omitempty"`
}

type ForecastScenarioOutput struct {
	Baseline forecast.Result `json:"baseline"`
	Scenario forecast.Result `json:"scenario"`
}

func (s *Server) handleForecastScenario(ctx context.Context, req *mcp.CallToolRequest, in ForecastScenarioInput) (*mcp.CallToolResult, ForecastScenarioOutput, error) {
	state, err := s.loader.Load()
	if err != nil {
		return nil, ForecastScenarioOutput{}, err
	}
	scenario := forecast.Scenario{
		Type:               forecast.ScenarioType(in.ScenarioType),
		TargetWorkItemID:   in.TargetWorkItemID,
		DelayDays:          in.DelayDays,
		EffortDeltaDays:    in.EffortDeltaDays,
		CapacityMultiplier: in.CapacityMultiplier,
	}
	baseline, withScenario, err := forecast.ForecastWithScenario(ctx, in.MilestoneID, state, scenario)
	if err != nil {
		return nil, ForecastScenarioOutput{}, err
	}
	out := ForecastScenarioOutput{Baseline: *baseline, Scenario: *withScenario}
	return textResult(fmt.Sprintf("baseline p80=%dd, scenario p80=%dd", baseline.DeltaP80Days, withScenario.DeltaP80Days)), out, nil
}

// --- forecast_mitigation_preview ---

type ForecastMitigationPreviewInput struct {
	MilestoneID                  string  `json:"milestone_id"`
	RiskID                       string  `json:"risk_id"`
	ExpectedImpactReductionDays  float64 `json:"expected_impact_reduction_days"`
}

type ForecastMitigationPreviewOutput struct {
	Current            forecast.Result `json:"current"`
	WithMitigation      forecast.Result `json:"with_mitigation"`
	ImprovementDaysOnP80 float64         `json:"improvement_days_on_p80"`
}

func (s *Server) handleForecastMitigationPreview(ctx context.Context, req *mcp.CallToolRequest, in ForecastMitigationPreviewInput) (*mcp.CallToolResult, ForecastMitigationPreviewOutput, error) {
	state, err := s.loader.Load()
	if err != nil {
		return nil, ForecastMitigationPreviewOutput{}, err
	}
	current, withMitigation, improvement, err := forecast.ForecastMitigationImpact(ctx, in.MilestoneID, state, in.RiskID, in.ExpectedImpactReductionDays)
	if err != nil {
		return nil, ForecastMitigationPreviewOutput{}, err
	}
	out := ForecastMitigationPreviewOutput{Current: *current, WithMitigation: *withMitigation, ImprovementDaysOnP80: improvement}
	return textResult(fmt.Sprintf("mitigation improves p80 by %.1fd", improvement)), out, nil
}

// --- process_event ---

type ProcessEventInput struct {
	EventID            string     `json:"event_id"`
	EventType          string     `json:"event_type"`
	Timestamp          time.Time  `json:"timestamp"`
	ActorID            string     `json:"actor_id,omitempty"`
	DependencyID       string     `json:"dependency_id,omitempty"`
	WorkItemID         string     `json:"work_item_id,omitempty"`
	NewStatus          string     `json:"new_status,omitempty"`
	RiskID             string     `json:"risk_id,omitempty"`
	DecisionID         string     `json:"decision_id,omitempty"`
	DecisionType       string     `json:"decision_type,omitempty"`
	MitigationAction   string     `json:"mitigation_action,omitempty"`
	MitigationDueDate  *time.Time `json:"mitigation_due_date,omitempty"`
	MilestoneID        string     `json:"milestone_id,omitempty"`
	IssueID            string     `json:"issue_id,omitempty"`
}

type ProcessEventOutput struct {
	Commands []rules.Command `json:"commands"`
}

func (s *Server) handleProcessEvent(ctx context.Context, req *mcp.CallToolRequest, in ProcessEventInput) (*mcp.CallToolResult, ProcessEventOutput, error) {
	state, err := s.loader.Load()
	if err != nil {
		return nil, ProcessEventOutput{}, err
	}
	event := rules.Event{
		ID:                in.EventID,
		Type:              rules.EventType(in.EventType),
		Timestamp:         in.Timestamp,
		ActorID:           in.ActorID,
		DependencyID:      in.DependencyID,
		WorkItemID:        in.WorkItemID,
		NewStatus:         snapshot.WorkItemStatus(in.NewStatus),
		RiskID:            in.RiskID,
		DecisionID:        in.DecisionID,
		DecisionType:      snapshot.DecisionType(in.DecisionType),
		MitigationAction:  in.MitigationAction,
		MitigationDueDate: in.MitigationDueDate,
		MilestoneID:       in.MilestoneID,
		IssueID:           in.IssueID,
	}
	commands := s.engine.ProcessEvent(event, state)
	return textResult(fmt.Sprintf("%d command(s) emitted", len(commands))), ProcessEventOutput{Commands: commands}, nil
}

// --- engine_health ---

type EngineHealthInput struct{}

type EngineHealthOutput struct {
	Status     string `json:"status"`
	RulesLoaded int    `json:"rules_loaded"`
}

func (s *Server) handleEngineHealth(ctx context.Context, req *mcp.CallToolRequest, in EngineHealthInput) (*mcp.CallToolResult, EngineHealthOutput, error) {
	out := EngineHealthOutput{Status: "ok", RulesLoaded: len(s.engine.Registry())}
	return textResult(fmt.Sprintf("status=ok rules_loaded=%d", out.RulesLoaded)), out, nil
}

// --- engine_rules ---

type EngineRulesInput struct{}

type EngineRulesOutput struct {
	Rules []rules.RuleInfo `json:"rules"`
}

func (s *Server) handleEngineRules(ctx context.Context, req *mcp.CallToolRequest, in EngineRulesInput) (*mcp.CallToolResult, EngineRulesOutput, error) {
	return textResult("rule registry"), EngineRulesOutput{Rules: s.engine.Registry()}, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func summarize(r forecast.Result) string {
	return fmt.Sprintf("%s: p50=%s p80=%s (+%dd/+%dd)", r.MilestoneID, r.P50Date.Format("2006-01-02"), r.P80Date.Format("2006-01-02"), r.DeltaP50Days, r.DeltaP80Days)
}
