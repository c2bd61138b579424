package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/store"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/waiter"
)

func versionTool() mcp.Tool {
	return mcp.NewTool("version", mcp.WithDescription("Return the Brainstorm server version."))
}

type versionResponse struct {
	Version string `json:"version"`
}

func (s *Server) handleVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return ok(versionResponse{Version: Version})
}

func statusTool() mcp.Tool {
	return mcp.NewTool("status",
		mcp.WithDescription("List every project this client belongs to, with role and an unread indicator: unread_count is 1 when the inbox holds any unread message and 0 otherwise, not an exact count."),
		mcp.WithString("working_directory", mcp.Description("Caller's working directory, used to derive client identity when BRAINSTORM_CLIENT_ID is unset")),
	)
}

type statusRequest struct {
	WorkingDirectory string `json:"working_directory,omitempty"`
}

type statusProject struct {
	ProjectID        string `json:"project_id"`
	ProjectName      string `json:"project_name"`
	AgentName        string `json:"agent_name"`
	Role             string `json:"role,omitempty"`
	UnreadCount      int    `json:"unread_count"`
}

type statusResponse struct {
	ClientID         string          `json:"client_id"`
	Projects         []statusProject `json:"projects"`
	IdentityReminder string          `json:"identity_reminder"`
	CriticalReminder string          `json:"critical_reminder"`
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req statusRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	clientID, err := s.resolveClientID(req.WorkingDirectory)
	if err != nil {
		return s.fail(err)
	}

	memberships, err := s.engine.ListMemberships(clientID)
	if err != nil {
		return s.fail(err)
	}

	out := make([]statusProject, 0, len(memberships))
	for _, m := range memberships {
		if err := s.engine.EnsureProjectHasCoordinator(ctx, m.ProjectID); err != nil {
			s.logger.Warn("coordinator backfill failed", "project_id", m.ProjectID, "error", err)
		}
		member, err := s.engine.GetMember(m.ProjectID, m.AgentName)
		if err != nil {
			continue
		}
		unread := 0
		if s.engine.InboxHasMessages(m.ProjectID, m.AgentName) {
			unread = 1 // InboxHasMessages reports presence only, so this is an indicator, not a count
		}
		out = append(out, statusProject{
			ProjectID:   m.ProjectID,
			ProjectName: m.ProjectName,
			AgentName:   m.AgentName,
			Role:        member.Role,
			UnreadCount: unread,
		})
	}

	return ok(statusResponse{
		ClientID: clientID,
		Projects: out,
		IdentityReminder: "Your client_id is derived from BRAINSTORM_CLIENT_ID or your working directory; " +
			"keep the same working directory across calls in one session to stay the same client.",
		CriticalReminder: "Always pass the same working_directory you used to join a project, or your " +
			"membership will resolve to a different client_id.",
	})
}

func createProjectTool() mcp.Tool {
	return mcp.NewTool("create_project",
		mcp.WithDescription("Create a new project and auto-join the caller as coordinator."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Stable project identifier")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Human-readable project name")),
		mcp.WithString("created_by", mcp.Description("Agent name to auto-join as coordinator")),
		mcp.WithString("working_directory", mcp.Description("Creator's working directory, used to derive client identity for the auto-join")),
	)
}

type createProjectRequest struct {
	ProjectID        string `json:"project_id"`
	Name             string `json:"name"`
	CreatedBy        string `json:"created_by,omitempty"`
	WorkingDirectory string `json:"working_directory,omitempty"`
}

func (s *Server) handleCreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req createProjectRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID); err != nil {
		return s.fail(err)
	}

	var clientID string
	if req.CreatedBy != "" {
		if err := validateIDs(req.CreatedBy); err != nil {
			return s.fail(err)
		}
		resolved, err := s.resolveClientID(req.WorkingDirectory)
		if err != nil {
			return s.fail(err)
		}
		clientID = resolved
	}

	p, err := s.engine.CreateProject(ctx, store.CreateProjectInput{
		ProjectID: req.ProjectID, Name: req.Name, CreatedBy: req.CreatedBy, ClientID: clientID,
	})
	if err != nil {
		return s.fail(err)
	}
	return ok(p)
}

func listProjectsTool() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("Paginated list of projects, lexicographic by project_id."),
		mcp.WithNumber("offset", mcp.Description("Pagination offset")),
		mcp.WithNumber("limit", mcp.Description("Page size, clamped to [1, 1000], default 100")),
		mcp.WithBoolean("include_archived", mcp.Description("Include archived projects")),
	)
}

type listProjectsRequest struct {
	Offset          int  `json:"offset,omitempty"`
	Limit           int  `json:"limit,omitempty"`
	IncludeArchived bool `json:"include_archived,omitempty"`
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req listProjectsRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	projects, err := s.engine.ListProjects(store.ListProjectsInput{
		Offset: req.Offset, Limit: req.Limit, IncludeArchived: req.IncludeArchived,
	})
	if err != nil {
		return s.fail(err)
	}
	return ok(map[string]any{"projects": projects})
}

func getProjectInfoTool() mcp.Tool {
	return mcp.NewTool("get_project_info",
		mcp.WithDescription("Fetch project metadata and members; supports long-poll wait for project creation."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithBoolean("wait", mcp.Description("Block until the project exists")),
		mcp.WithNumber("timeout_seconds", mcp.Description("Wait deadline in seconds, default 300, max 3600")),
	)
}

type getProjectInfoRequest struct {
	ProjectID      string  `json:"project_id"`
	Wait           bool    `json:"wait,omitempty"`
	TimeoutSeconds float64 `json:"timeout_seconds,omitempty"`
}

type projectInfoResponse struct {
	Project     *store.Project  `json:"project"`
	Members     []*store.Member `json:"members"`
	TimedOut    bool            `json:"timed_out,omitempty"`
}

func (s *Server) handleGetProjectInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req getProjectInfoRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID); err != nil {
		return s.fail(err)
	}

	if req.Wait {
		satisfied, err := s.wait.Wait(ctx, s.waitDeadline(req.TimeoutSeconds), waiter.ProjectAppears(s.engine, req.ProjectID))
		if err != nil {
			return s.fail(err)
		}
		if !satisfied {
			return ok(projectInfoResponse{TimedOut: true})
		}
	}

	if err := s.engine.EnsureProjectHasCoordinator(ctx, req.ProjectID); err != nil {
		return s.fail(err)
	}
	p, err := s.engine.GetProject(req.ProjectID)
	if err != nil {
		return s.fail(err)
	}
	members, err := s.engine.ListMembers(req.ProjectID)
	if err != nil {
		return s.fail(err)
	}
	return ok(projectInfoResponse{Project: p, Members: members})
}

func deleteProjectTool() mcp.Tool {
	return mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project. Creator-only."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Calling agent's name; must be the project creator")),
	)
}

type deleteProjectRequest struct {
	ProjectID string `json:"project_id"`
	Actor     string `json:"actor"`
}

func (s *Server) handleDeleteProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req deleteProjectRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID); err != nil {
		return s.fail(err)
	}
	if err := s.engine.DeleteProject(ctx, req.ProjectID, req.Actor); err != nil {
		return s.fail(err)
	}
	return ok(map[string]any{"deleted": true})
}

func archiveProjectTool() mcp.Tool {
	return mcp.NewTool("archive_project",
		mcp.WithDescription("Archive a project. Creator-only."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Calling agent's name; must be the project creator")),
		mcp.WithString("reason", mcp.Description("Why the project is being archived")),
	)
}

type archiveProjectRequest struct {
	ProjectID string `json:"project_id"`
	Actor     string `json:"actor"`
	Reason    string `json:"reason,omitempty"`
}

func (s *Server) handleArchiveProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req archiveProjectRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID); err != nil {
		return s.fail(err)
	}
	p, err := s.engine.ArchiveProject(ctx, req.ProjectID, req.Actor, req.Reason)
	if err != nil {
		return s.fail(err)
	}
	return ok(p)
}
