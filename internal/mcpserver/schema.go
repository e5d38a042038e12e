package mcpserver

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// explicitSchema builds an input schema for a tool whose JSON-RPC payload
// benefits from more documentation than struct tags alone carry (the
// process_event event envelope has the widest sparse-field surface of any
// tool here). Every other tool lets mcp.AddTool derive its schema directly
// from the generic input type, which already uses jsonschema-go under the
// hood; this one constructs it explicitly so field descriptions can be
// attached per event family.
func explicitSchema[T any](descriptions map[string]string) *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to derive explicit input schema, falling back to inferred schema")
		return nil
	}
	for field, desc := range descriptions {
		if prop, ok := schema.Properties[field]; ok {
			prop.Description = desc
		}
	}
	return schema
}

func processEventInputSchema() *jsonschema.Schema {
	return explicitSchema[ProcessEventInput](map[string]string{
		"event_type":    "one of the 19 closed event types, e.g. DEPENDENCY_BLOCKED, DECISION_APPROVED, WORK_ITEM_STATUS_CHANGED",
		"decision_type": "populated only for DECISION_* events: accept_risk, mitigate_risk, change_scope, ...",
		"new_status":    "populated only for WORK_ITEM_STATUS_CHANGED events",
	})
}

// attachExplicitSchema overrides a registered tool's InputSchema after
// registration, used only for process_event.
func attachExplicitSchema(tool *mcp.Tool, schema *jsonschema.Schema) {
	if schema != nil {
		tool.InputSchema = schema
	}
}
