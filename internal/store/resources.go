package store

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/atomicio"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/idguard"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// StoreResourceInput describes a store_resource request. Content and
// SourcePath are mutually exclusive; when neither Has* flag is set, the
// update preserves the existing payload and its storage-managed fields.
type StoreResourceInput struct {
	ProjectID  string
	ResourceID string
	Name       string
	Actor      string
	ETag       string // required, and checked, on update only

	Content    []byte
	HasContent bool

	SourcePath    string
	HasSourcePath bool
	Home          string // user home directory, for source_path containment

	Permissions    *Permissions
	HasPermissions bool
}

// StoreResource creates or updates a resource. See spec §4.4 for the full
// contract: ETag optimistic concurrency, immutable creator_agent,
// permissions only settable by the creator, a fresh ETag on every write.
func (e *Engine) StoreResource(ctx context.Context, in StoreResourceInput) (*Resource, error) {
	lock, err := atomicio.Lock(ctx, e.resourceLockPath(in.ProjectID, in.ResourceID), e.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	if in.HasContent && in.HasSourcePath {
		return nil, storeerr.New(storeerr.InvalidID, "content and source_path are mutually exclusive")
	}
	if in.HasContent {
		if err := validatePayloadSize(in.Content, e.inlineContentLimit); err != nil {
			return nil, err
		}
		if err := validateJSONDepth(in.Content); err != nil {
			return nil, err
		}
	}

	manifestPath := e.resourceManifestPath(in.ProjectID, in.ResourceID)
	now := time.Now().UTC()

	var current Resource
	hasCurrent := readJSON(manifestPath, &current) == nil

	if !hasCurrent {
		return e.createResource(in, now)
	}
	return e.updateResource(in, &current, now)
}

func (e *Engine) createResource(in StoreResourceInput, now time.Time) (*Resource, error) {
	r := &Resource{
		ProjectID:    in.ProjectID,
		ResourceID:   in.ResourceID,
		Name:         in.Name,
		CreatorAgent: in.Actor,
		CreatedAt:    now,
		UpdatedAt:    now,
		ETag:         freshETag(),
		Permissions:  in.Permissions,
	}

	if err := e.writeResourcePayload(in, r); err != nil {
		return nil, err
	}
	if err := writeJSON(e.resourceManifestPath(in.ProjectID, in.ResourceID), r); err != nil {
		return nil, err
	}

	e.recordAudit("store_resource", in.Actor, in.ProjectID, in.ResourceID, "created")
	e.logger.Info("resource created", "project_id", in.ProjectID, "resource_id", in.ResourceID, "actor", in.Actor)
	return r, nil
}

func (e *Engine) updateResource(in StoreResourceInput, current *Resource, now time.Time) (*Resource, error) {
	if in.ETag != current.ETag {
		e.recordAudit("store_resource", in.Actor, in.ProjectID, in.ResourceID, "etag_mismatch")
		return nil, storeerr.New(storeerr.ETagMismatch, "resource was modified concurrently; re-read and retry")
	}
	if !current.Permissions.CanWrite(in.Actor) {
		e.recordAudit("store_resource", in.Actor, in.ProjectID, in.ResourceID, "forbidden")
		return nil, storeerr.New(storeerr.InsufficientWrite, "actor is not in the resource's write list")
	}

	updated := *current
	updated.UpdatedAt = now
	updated.ETag = freshETag()
	// creator_agent is immutable after first write.
	updated.CreatorAgent = current.CreatorAgent

	if in.Actor == current.CreatorAgent && in.HasPermissions {
		updated.Permissions = in.Permissions
	} // else: silently preserve existing permissions

	if in.Name != "" {
		updated.Name = in.Name
	}

	if in.HasContent || in.HasSourcePath {
		// New payload: storage-managed fields are fully recomputed.
		updated.MimeType = ""
		updated.SizeBytes = 0
		updated.SourcePath = ""
		if err := e.writeResourcePayload(in, &updated); err != nil {
			return nil, err
		}
	}
	// else: preserve existing size_bytes / mime_type / source_path (§4.4-g).

	if err := writeJSON(e.resourceManifestPath(in.ProjectID, in.ResourceID), &updated); err != nil {
		return nil, err
	}

	e.recordAudit("store_resource", in.Actor, in.ProjectID, in.ResourceID, "updated")
	return &updated, nil
}

func (e *Engine) writeResourcePayload(in StoreResourceInput, r *Resource) error {
	switch {
	case in.HasContent:
		r.SizeBytes = int64(len(in.Content))
		if err := atomicio.WriteFile(e.resourceInlinePayloadPath(in.ProjectID, in.ResourceID), in.Content, 0o644); err != nil {
			return storeerr.New(storeerr.IOError, "writing resource payload")
		}
		// A previously file-referenced resource switching to inline content
		// must not leave a stale ref pointer behind.
		_ = os.Remove(e.resourceRefPayloadPath(in.ProjectID, in.ResourceID))
		return nil

	case in.HasSourcePath:
		home := in.Home
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		resolved, err := idguard.ResolveSourcePath(home, in.SourcePath, e.resourceFileCap)
		if err != nil {
			return err
		}
		r.SourcePath = resolved.Absolute
		r.SizeBytes = resolved.Size
		if err := atomicio.WriteFile(e.resourceRefPayloadPath(in.ProjectID, in.ResourceID), []byte(resolved.Absolute), 0o644); err != nil {
			return storeerr.New(storeerr.IOError, "writing resource reference")
		}
		_ = os.Remove(e.resourceInlinePayloadPath(in.ProjectID, in.ResourceID))
		return nil

	default:
		return nil
	}
}

// GetResource loads a resource's manifest and, if stored inline, its
// payload, after checking actor against the resource's read list.
func (e *Engine) GetResource(projectID, resourceID, actor string) (*Resource, []byte, error) {
	var r Resource
	if err := readJSON(e.resourceManifestPath(projectID, resourceID), &r); err != nil {
		return nil, nil, err
	}
	if r.Permissions == nil {
		return nil, nil, storeerr.New(storeerr.NoPermissionsDefined, "resource has no permissions defined")
	}
	if !r.Permissions.CanRead(actor) {
		return nil, nil, storeerr.New(storeerr.InsufficientRead, "actor is not in the resource's read list")
	}

	var content []byte
	if exists(e.resourceInlinePayloadPath(projectID, resourceID)) {
		data, err := os.ReadFile(e.resourceInlinePayloadPath(projectID, resourceID))
		if err != nil {
			return nil, nil, storeerr.New(storeerr.IOError, "reading resource payload")
		}
		content = data
	}

	return &r, content, nil
}

// ResourceExists backs the long-poll "resource appears" wait condition.
func (e *Engine) ResourceExists(projectID, resourceID string) bool {
	return exists(e.resourceManifestPath(projectID, resourceID))
}

// ListResourcesInput configures pagination for list_resources.
type ListResourcesInput struct {
	ProjectID string
	Actor     string
	Offset    int
	Limit     int
}

// ListResources loads manifests only (never payloads), filtered to those
// readable by Actor, paginated with a default/limit of 100/1000.
func (e *Engine) ListResources(in ListResourcesInput) ([]*Resource, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	dir := e.resourcesDir(in.ProjectID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Resource{}, nil
		}
		return nil, storeerr.New(storeerr.IOError, "listing resources")
	}

	var ids []string
	for _, ent := range entries {
		if ent.IsDir() {
			ids = append(ids, ent.Name())
		}
	}
	sort.Strings(ids)

	var readable []*Resource
	for _, id := range ids {
		var r Resource
		if err := readJSON(e.resourceManifestPath(in.ProjectID, id), &r); err != nil {
			continue
		}
		if r.Permissions == nil || !r.Permissions.CanRead(in.Actor) {
			continue
		}
		readable = append(readable, &r)
	}

	if in.Offset >= len(readable) {
		return []*Resource{}, nil
	}
	end := in.Offset + limit
	if end > len(readable) {
		end = len(readable)
	}
	return readable[in.Offset:end], nil
}

// freshETag generates a new random 16-hex ETag, regenerated on every
// resource write.
func freshETag() string {
	return strings.ToLower(randomHex(16))
}
