package mcptools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/authz"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/store"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/waiter"
)

func sendMessageTool() mcp.Tool {
	return mcp.NewTool("send_message",
		mcp.WithDescription("Send a direct or broadcast message to project members' inboxes."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("from_agent", mcp.Required(), mcp.Description("Sending agent's name; must equal actor")),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Calling agent's name; must equal from_agent")),
		mcp.WithString("to_agent", mcp.Description("Recipient agent name; required unless broadcast is true")),
		mcp.WithBoolean("broadcast", mcp.Description("Deliver to every member except from_agent")),
		mcp.WithBoolean("reply_expected", mcp.Description("Hint that the recipient should reply")),
		mcp.WithString("type", mcp.Description("Message type; handoff/handoff_accepted/handoff_rejected are role-gated")),
		mcp.WithObject("payload", mcp.Description("Arbitrary JSON payload")),
	)
}

type sendMessageRequest struct {
	ProjectID     string          `json:"project_id"`
	FromAgent     string          `json:"from_agent"`
	Actor         string          `json:"actor"`
	ToAgent       string          `json:"to_agent,omitempty"`
	Broadcast     bool            `json:"broadcast,omitempty"`
	ReplyExpected bool            `json:"reply_expected,omitempty"`
	Type          string          `json:"type,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

type sendMessageResponse struct {
	Delivered     []*store.Message `json:"delivered"`
	ReplyWarnings []string         `json:"reply_warnings,omitempty"`
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req sendMessageRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID, req.FromAgent); err != nil {
		return s.fail(err)
	}
	if req.ToAgent != "" {
		if err := validateIDs(req.ToAgent); err != nil {
			return s.fail(err)
		}
	}
	if err := authz.RequireWriterIdentity(req.Actor, req.FromAgent); err != nil {
		return s.fail(err)
	}
	if err := s.requireMember(req.ProjectID, req.FromAgent); err != nil {
		return s.fail(err)
	}
	if err := authz.CheckHandoffAuthority(ctx, s.engine, req.ProjectID, req.FromAgent, req.Type); err != nil {
		return s.fail(err)
	}

	delivered, err := s.engine.SendMessage(ctx, store.SendMessageInput{
		ProjectID:     req.ProjectID,
		FromAgent:     req.FromAgent,
		ToAgent:       req.ToAgent,
		Broadcast:     req.Broadcast,
		ReplyExpected: req.ReplyExpected,
		Type:          req.Type,
		Payload:       req.Payload,
	})
	if err != nil {
		return s.fail(err)
	}

	resp := sendMessageResponse{Delivered: delivered}
	if req.Type == store.MessageTypeHandoff {
		resp.ReplyWarnings = []string{
			"The recipient coordinator must reply with handoff_accepted or handoff_rejected, " +
				"not handoff: only a coordinator may send those two types.",
		}
	}
	return ok(resp)
}

func receiveMessagesTool() mcp.Tool {
	return mcp.NewTool("receive_messages",
		mcp.WithDescription("Drain an agent's inbox, archiving every message read. Supports long-poll wait for new arrivals."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("Receiving agent's name")),
		mcp.WithBoolean("wait", mcp.Description("Block until the inbox is non-empty")),
		mcp.WithNumber("timeout_seconds", mcp.Description("Wait deadline in seconds, default 300, max 3600")),
	)
}

type receiveMessagesRequest struct {
	ProjectID      string  `json:"project_id"`
	AgentName      string  `json:"agent_name"`
	Wait           bool    `json:"wait,omitempty"`
	TimeoutSeconds float64 `json:"timeout_seconds,omitempty"`
}

type receiveMessagesResponse struct {
	Messages      []*store.Message `json:"messages"`
	TimedOut      bool             `json:"timed_out,omitempty"`
	HandoffAlerts []string         `json:"handoff_alerts,omitempty"`
}

func (s *Server) handleReceiveMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req receiveMessagesRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID, req.AgentName); err != nil {
		return s.fail(err)
	}
	if err := s.requireMember(req.ProjectID, req.AgentName); err != nil {
		return s.fail(err)
	}

	if req.Wait {
		satisfied, err := s.wait.Wait(ctx, s.waitDeadline(req.TimeoutSeconds), waiter.InboxNonEmpty(s.engine, req.ProjectID, req.AgentName))
		if err != nil {
			return s.fail(err)
		}
		if !satisfied {
			return ok(receiveMessagesResponse{TimedOut: true})
		}
	}

	messages, err := s.engine.ReceiveMessages(ctx, store.ReceiveMessagesInput{
		ProjectID: req.ProjectID, AgentName: req.AgentName,
	})
	if err != nil {
		return s.fail(err)
	}

	resp := receiveMessagesResponse{Messages: messages}
	for _, m := range messages {
		if m.Type == store.MessageTypeHandoff {
			resp.HandoffAlerts = append(resp.HandoffAlerts,
				"A handoff request arrived from "+m.FromAgent+"; reply with handoff_accepted or handoff_rejected.")
		}
	}
	return ok(resp)
}
