package mcptools

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/authz"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/config"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/identity"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/store"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/toolerr"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/waiter"
)

// Version is the server's self-reported version, returned by the `version`
// tool and printed by `brainstorm version`. Overridden at build time.
var Version = "dev"

// Server holds everything a tool handler needs: the storage engine, the
// long-poll coordinator, resolved config, and the error scrubber.
type Server struct {
	engine *store.Engine
	wait   *waiter.Coordinator
	cfg    *config.Config
	scrub  *toolerr.Scrubber
	logger *slog.Logger
}

// New builds a Server bound to engine, wait and cfg.
func New(engine *store.Engine, wait *waiter.Coordinator, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine: engine,
		wait:   wait,
		cfg:    cfg,
		scrub:  toolerr.NewScrubber(engine.DataRoot()),
		logger: logger.With("component", "mcptools"),
	}
}

// Register adds all 15 tools to mcpServer.
func (s *Server) Register(mcpServer *server.MCPServer) {
	mcpServer.AddTool(versionTool(), s.handleVersion)
	mcpServer.AddTool(statusTool(), s.handleStatus)
	mcpServer.AddTool(createProjectTool(), s.handleCreateProject)
	mcpServer.AddTool(listProjectsTool(), s.handleListProjects)
	mcpServer.AddTool(getProjectInfoTool(), s.handleGetProjectInfo)
	mcpServer.AddTool(deleteProjectTool(), s.handleDeleteProject)
	mcpServer.AddTool(archiveProjectTool(), s.handleArchiveProject)
	mcpServer.AddTool(joinProjectTool(), s.handleJoinProject)
	mcpServer.AddTool(leaveProjectTool(), s.handleLeaveProject)
	mcpServer.AddTool(handoverCoordinatorTool(), s.handleHandoverCoordinator)
	mcpServer.AddTool(storeResourceTool(), s.handleStoreResource)
	mcpServer.AddTool(getResourceTool(), s.handleGetResource)
	mcpServer.AddTool(listResourcesTool(), s.handleListResources)
	mcpServer.AddTool(sendMessageTool(), s.handleSendMessage)
	mcpServer.AddTool(receiveMessagesTool(), s.handleReceiveMessages)
}

// resolveClientID derives this call's client identity from the server's
// env override or, failing that, the caller-supplied working_directory.
func (s *Server) resolveClientID(workingDirectory string) (string, error) {
	return identity.ResolveClientID(s.cfg.ClientID, workingDirectory)
}

// ok builds a successful tool result from any JSON-marshalable payload.
func ok(payload any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError("failed to marshal response"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// fail builds the `{error: {code, message, details?}}` envelope (§6-§7)
// from a storage/authorization error, scrubbing the data root's absolute
// path out of the message.
func (s *Server) fail(err error) (*mcp.CallToolResult, error) {
	env := s.scrub.Envelope(err)
	data, marshalErr := json.Marshal(env)
	if marshalErr != nil {
		return mcp.NewToolResultError(env.Error.Message), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// waitDeadline caps a caller-supplied timeout_seconds at the configured
// MaxTimeout, defaulting to cfg.DefaultTimeout when zero or negative.
// Positive values below one second are used as given.
func (s *Server) waitDeadline(timeoutSeconds float64) time.Duration {
	if timeoutSeconds <= 0 {
		return s.cfg.DefaultTimeout
	}
	max := s.cfg.MaxTimeout.Seconds()
	if timeoutSeconds > max {
		timeoutSeconds = max
	}
	return time.Duration(timeoutSeconds * float64(time.Second))
}

// requireMember is shared across member-scoped tool handlers.
func (s *Server) requireMember(projectID, agentName string) error {
	return authz.RequireMember(s.engine, projectID, agentName)
}
