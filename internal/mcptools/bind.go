// Package mcptools is the thin MCP tool surface: it binds mcp-go tool-call
// arguments to validated request structs, delegates to internal/store and
// internal/authz, and shapes responses into the envelope from spec §6,
// composing role reminders and etiquette hints here rather than in the
// engine.
package mcptools

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/idguard"
)

// bind decodes a tool call's arguments into dst, rejecting unknown fields
// so a caller's typo in a field name surfaces as a validation error instead
// of being silently ignored.
func bind(request mcp.CallToolRequest, dst any) error {
	raw, err := json.Marshal(request.GetArguments())
	if err != nil {
		return fmt.Errorf("marshaling tool arguments: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// validateIDs runs idguard.ValidateID over every id, returning the first
// failure. Used on project_id/agent_name/resource_id arguments before they
// reach the storage engine.
func validateIDs(ids ...string) error {
	for _, id := range ids {
		if err := idguard.ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}
