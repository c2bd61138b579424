package mcptools

import (
	"context"
	"encoding/base64"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/store"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/waiter"
)

// "*" read/write permissions mean "any project member", never "any caller"
// (spec §3/§4.6) — every handler below enforces membership before the
// engine ever evaluates a resource's ACL.

func storeResourceTool() mcp.Tool {
	return mcp.NewTool("store_resource",
		mcp.WithDescription("Create or update a versioned resource. Updates require the current etag."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("resource_id", mcp.Required(), mcp.Description("Resource identifier")),
		mcp.WithString("name", mcp.Description("Human-readable resource name")),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Calling agent's name")),
		mcp.WithString("etag", mcp.Description("Current etag, required on update")),
		mcp.WithString("content_base64", mcp.Description("Inline content, base64-encoded; mutually exclusive with source_path")),
		mcp.WithString("source_path", mcp.Description("Absolute path under the caller's home directory; mutually exclusive with content_base64")),
		mcp.WithArray("read", mcp.Description("Agent names (or \"*\") allowed to read this resource")),
		mcp.WithArray("write", mcp.Description("Agent names (or \"*\") allowed to write this resource")),
	)
}

type storeResourceRequest struct {
	ProjectID     string   `json:"project_id"`
	ResourceID    string   `json:"resource_id"`
	Name          string   `json:"name,omitempty"`
	Actor         string   `json:"actor"`
	ETag          string   `json:"etag,omitempty"`
	ContentBase64 string   `json:"content_base64,omitempty"`
	SourcePath    string   `json:"source_path,omitempty"`
	Read          []string `json:"read,omitempty"`
	Write         []string `json:"write,omitempty"`
}

func (s *Server) handleStoreResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req storeResourceRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID, req.ResourceID, req.Actor); err != nil {
		return s.fail(err)
	}
	if err := s.requireMember(req.ProjectID, req.Actor); err != nil {
		return s.fail(err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	in := store.StoreResourceInput{
		ProjectID:  req.ProjectID,
		ResourceID: req.ResourceID,
		Name:       req.Name,
		Actor:      req.Actor,
		ETag:       req.ETag,
		Home:       home,
	}

	if req.ContentBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ContentBase64)
		if err != nil {
			return mcp.NewToolResultError("content_base64 is not valid base64"), nil
		}
		in.Content = data
		in.HasContent = true
	}
	if req.SourcePath != "" {
		in.SourcePath = req.SourcePath
		in.HasSourcePath = true
	}
	if req.Read != nil || req.Write != nil {
		in.Permissions = &store.Permissions{Read: req.Read, Write: req.Write}
		in.HasPermissions = true
	}

	r, err := s.engine.StoreResource(ctx, in)
	if err != nil {
		return s.fail(err)
	}
	return ok(r)
}

func getResourceTool() mcp.Tool {
	return mcp.NewTool("get_resource",
		mcp.WithDescription("Fetch a resource's manifest and inline payload; supports long-poll wait for creation."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("resource_id", mcp.Required(), mcp.Description("Resource identifier")),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Calling agent's name, checked against the resource's read list")),
		mcp.WithBoolean("wait", mcp.Description("Block until the resource exists")),
		mcp.WithNumber("timeout_seconds", mcp.Description("Wait deadline in seconds, default 300, max 3600")),
	)
}

type getResourceRequest struct {
	ProjectID      string  `json:"project_id"`
	ResourceID     string  `json:"resource_id"`
	Actor          string  `json:"actor"`
	Wait           bool    `json:"wait,omitempty"`
	TimeoutSeconds float64 `json:"timeout_seconds,omitempty"`
}

type getResourceResponse struct {
	Resource      *store.Resource `json:"resource"`
	ContentBase64 string          `json:"content_base64,omitempty"`
	TimedOut      bool            `json:"timed_out,omitempty"`
}

func (s *Server) handleGetResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req getResourceRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID, req.ResourceID, req.Actor); err != nil {
		return s.fail(err)
	}
	if err := s.requireMember(req.ProjectID, req.Actor); err != nil {
		return s.fail(err)
	}

	if req.Wait {
		satisfied, err := s.wait.Wait(ctx, s.waitDeadline(req.TimeoutSeconds), waiter.ResourceAppears(s.engine, req.ProjectID, req.ResourceID))
		if err != nil {
			return s.fail(err)
		}
		if !satisfied {
			return ok(getResourceResponse{TimedOut: true})
		}
	}

	r, content, err := s.engine.GetResource(req.ProjectID, req.ResourceID, req.Actor)
	if err != nil {
		return s.fail(err)
	}
	resp := getResourceResponse{Resource: r}
	if content != nil {
		resp.ContentBase64 = base64.StdEncoding.EncodeToString(content)
	}
	return ok(resp)
}

func listResourcesTool() mcp.Tool {
	return mcp.NewTool("list_resources",
		mcp.WithDescription("List resource manifests readable by actor, paginated."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("actor", mcp.Required(), mcp.Description("Calling agent's name, used to filter by read permission")),
		mcp.WithNumber("offset", mcp.Description("Pagination offset")),
		mcp.WithNumber("limit", mcp.Description("Page size, clamped to [1, 1000], default 100")),
	)
}

type listResourcesRequest struct {
	ProjectID string `json:"project_id"`
	Actor     string `json:"actor"`
	Offset    int    `json:"offset,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

func (s *Server) handleListResources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req listResourcesRequest
	if err := bind(request, &req); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validateIDs(req.ProjectID, req.Actor); err != nil {
		return s.fail(err)
	}
	if err := s.requireMember(req.ProjectID, req.Actor); err != nil {
		return s.fail(err)
	}

	resources, err := s.engine.ListResources(store.ListResourcesInput{
		ProjectID: req.ProjectID, Actor: req.Actor, Offset: req.Offset, Limit: req.Limit,
	})
	if err != nil {
		return s.fail(err)
	}
	return ok(map[string]any{"resources": resources})
}
