// Package mcpserver exposes the forecast and rule engines as MCP tools over
// stdio, using the SDK the teacher's own go.mod already declares
// (github.com/modelcontextprotocol/go-sdk) in place of the teacher's
// hand-rolled JSON-RPC loop (internal/mcp/server.go in the retrieved pack).
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"deliverycore/internal/rules"
	"deliverycore/internal/source"
)

// Server wraps an *mcp.Server configured with this core's tool surface.
type Server struct {
	mcp       *mcp.Server
	loader    source.Loader
	engine    *rules.Engine
	version   string
}

// New builds the server and registers every tool in SPEC_FULL.md §5.3:
// forecast_milestone, forecast_scenario, forecast_mitigation_preview,
// process_event, engine_health, engine_rules.
func New(loader source.Loader, engine *rules.Engine, version string) *Server {
	impl := &mcp.Implementation{
		Name:    "deliverycore-mcp",
		Version: version,
	}
	s := &Server{
		mcp:     mcp.NewServer(impl, nil),
		loader:  loader,
		engine:  engine,
		version: version,
	}
	s.registerTools()
	return s
}

// Serve blocks, handling requests over stdio until ctx is cancelled or the
// transport closes.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("version", s.version).Msg("deliverycore-mcp serving over stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "forecast_milestone",
		Description: "Return the baseline P50/P80 completion forecast for a milestone with its causal contribution breakdown.",
	}, s.handleForecastMilestone)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "forecast_scenario",
		Description: "Run a baseline and a what-if scenario forecast (dependency_delay, scope_change or capacity_change) for a milestone.",
	}, s.handleForecastScenario)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "forecast_mitigation_preview",
		Description: "Preview the P80 improvement from hypothetically reducing one risk's impact by a number of days.",
	}, s.handleForecastMitigationPreview)

	processEventTool := &mcp.Tool{
		Name:        "process_event",
		Description: "Run one event through the rule engine and return the resulting commands without executing them.",
	}
	attachExplicitSchema(processEventTool, processEventInputSchema())
	mcp.AddTool(s.mcp, processEventTool, s.handleProcessEvent)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "engine_health",
		Description: "Report engine liveness and the number of rules loaded.",
	}, s.handleEngineHealth)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "engine_rules",
		Description: "List the rule registry in fixed registration order.",
	}, s.handleEngineRules)
}
