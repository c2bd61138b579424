package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/authz"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/store"
)

func joinProjectTool() mcp.Tool {
	return mcp.NewTool("join_project",
		mcp.WithDescription("Join a project under a stable agent_name, adopting a legacy slot if one exists."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("Stable agent name within the project")),
		mcp.WithString("working_directory", mcp.Description("Caller's working directory, used to derive client identity")),
	)
}

type joinProjectRequest struct {
	ProjectID        string `json:"project_id"`
	AgentName        string `json:"agent_name"`
	WorkingDirectory string `json:"working_directory,omitempty"`
}

type joinProjectResponse struct {
	Member           *store.Member `json:"member"`
	RoleReminder     string        `json:"role_reminder,omitempty"`
	IdentityReminder string        `json:"identity_reminder"`
}

func (s *Server) handleJoinProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req joinProjectRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID, req.AgentName); err != nil {
		return s.fail(err)
	}

	clientID, err := s.resolveClientID(req.WorkingDirectory)
	if err != nil {
		return s.fail(err)
	}

	member, err := s.engine.JoinProject(ctx, store.JoinInput{
		ProjectID: req.ProjectID,
		AgentName: req.AgentName,
		ClientID:  clientID,
	})
	if err != nil {
		return s.fail(err)
	}

	resp := joinProjectResponse{
		Member: member,
		IdentityReminder: "client_id " + clientID + " now maps to agent_name " + req.AgentName +
			" in project " + req.ProjectID + "; reuse the same working_directory to remain this agent.",
	}
	if member.Role == store.RoleCoordinator {
		resp.RoleReminder = "You joined as coordinator. Only a coordinator may reply to a handoff with " +
			"handoff_accepted or handoff_rejected."
	}
	return ok(resp)
}

func leaveProjectTool() mcp.Tool {
	return mcp.NewTool("leave_project",
		mcp.WithDescription("Leave a project. A coordinator must hand over the role first."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("Calling agent's name")),
		mcp.WithString("working_directory", mcp.Description("Caller's working directory, used to derive client identity")),
	)
}

type leaveProjectRequest struct {
	ProjectID        string `json:"project_id"`
	AgentName        string `json:"agent_name"`
	WorkingDirectory string `json:"working_directory,omitempty"`
}

func (s *Server) handleLeaveProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req leaveProjectRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID, req.AgentName); err != nil {
		return s.fail(err)
	}

	clientID, err := s.resolveClientID(req.WorkingDirectory)
	if err != nil {
		return s.fail(err)
	}

	if err := s.engine.LeaveProject(ctx, req.ProjectID, req.AgentName, clientID); err != nil {
		return s.fail(err)
	}
	return ok(map[string]any{"left": true})
}

func handoverCoordinatorTool() mcp.Tool {
	return mcp.NewTool("handover_coordinator",
		mcp.WithDescription("Transfer the coordinator role to another member. Only the current coordinator may call this."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("from_agent", mcp.Required(), mcp.Description("Current coordinator's agent name")),
		mcp.WithString("to_agent", mcp.Required(), mcp.Description("Member receiving the coordinator role")),
	)
}

type handoverCoordinatorRequest struct {
	ProjectID string `json:"project_id"`
	FromAgent string `json:"from_agent"`
	ToAgent   string `json:"to_agent"`
}

func (s *Server) handleHandoverCoordinator(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req handoverCoordinatorRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID, req.FromAgent, req.ToAgent); err != nil {
		return s.fail(err)
	}
	if err := authz.RequireCoordinator(s.engine, req.ProjectID, req.FromAgent); err != nil {
		return s.fail(err)
	}

	if err := s.engine.HandoverCoordinator(ctx, req.ProjectID, req.FromAgent, req.ToAgent); err != nil {
		return s.fail(err)
	}
	return ok(map[string]any{"handed_over": true, "coordinator": req.ToAgent})
}
