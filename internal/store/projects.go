package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/atomicio"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// CreateProjectInput describes a create_project request.
type CreateProjectInput struct {
	ProjectID string
	Name      string
	CreatedBy string // if set, the creator is also auto-joined as coordinator
	ClientID  string // creator's client identity, for the membership index
}

// CreateProject creates a new project, failing ALREADY_EXISTS if one with
// this id already exists. If CreatedBy is set, the creator is written as a
// member with role coordinator in the same call (§4.4).
func (e *Engine) CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error) {
	lock, err := atomicio.Lock(ctx, e.projectsLockPath(), e.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	p := &Project{
		ProjectID:     in.ProjectID,
		Name:          in.Name,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
	}

	if err := createJSONExclusive(e.projectMetadataPath(in.ProjectID), p); err != nil {
		e.recordAudit("create_project", in.CreatedBy, in.ProjectID, "", "error:"+string(codeOrIO(err)))
		return nil, err
	}

	if in.CreatedBy != "" {
		member := &Member{
			ProjectID: in.ProjectID,
			AgentName: in.CreatedBy,
			AgentID:   uuid.NewString(),
			ClientID:  in.ClientID,
			JoinedAt:  p.CreatedAt,
			LastSeen:  p.CreatedAt,
			Online:    true,
			Role:      RoleCoordinator,
		}
		if err := writeJSON(e.memberPath(in.ProjectID, in.CreatedBy), member); err != nil {
			e.logger.Warn("auto-join creator as coordinator failed", "project_id", in.ProjectID, "error", err)
		} else {
			e.recordJoinMembership(ctx, JoinInput{ProjectID: in.ProjectID, AgentName: in.CreatedBy, ClientID: in.ClientID}, p)
		}
	}

	e.recordAudit("create_project", in.CreatedBy, in.ProjectID, "", "ok")
	e.logger.Info("project created", "project_id", in.ProjectID, "created_by", in.CreatedBy)
	return p, nil
}

// GetProject loads project metadata, NOT_FOUND if absent.
func (e *Engine) GetProject(projectID string) (*Project, error) {
	var p Project
	if err := readJSON(e.projectMetadataPath(projectID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProjectExists is a fast existence check backing the long-poll "project
// appears" wait condition.
func (e *Engine) ProjectExists(projectID string) bool {
	return exists(e.projectMetadataPath(projectID))
}

// DeleteProject removes the project tree and sweeps client membership
// index entries. Requires actor == the project's created_by.
func (e *Engine) DeleteProject(ctx context.Context, projectID, actor string) error {
	p, err := e.GetProject(projectID)
	if err != nil {
		return err
	}
	if p.CreatedBy == "" || p.CreatedBy != actor {
		e.recordAudit("delete_project", actor, projectID, "", "forbidden")
		return storeerr.New(storeerr.Forbidden, "only the project creator may delete the project")
	}

	members, err := e.listMembersUnlocked(projectID)
	if err != nil {
		members = nil
	}

	if err := os.RemoveAll(e.projectDir(projectID)); err != nil {
		return storeerr.New(storeerr.IOError, "removing project directory")
	}
	if err := atomicio.FsyncDir(filepath.Dir(e.projectDir(projectID))); err != nil {
		e.logger.Warn("fsync projects directory after delete failed", "error", err)
	}

	for _, m := range members {
		if m.ClientID == "" {
			continue
		}
		if err := e.removeMembership(m.ClientID, projectID, m.AgentName); err != nil {
			e.logger.Warn("sweeping client membership index failed", "client_id", m.ClientID, "error", err)
		}
	}

	e.recordAudit("delete_project", actor, projectID, "", "ok")
	e.logger.Info("project deleted", "project_id", projectID, "actor", actor)
	return nil
}

// ArchiveProject sets archived=true with the same authorization as delete.
func (e *Engine) ArchiveProject(ctx context.Context, projectID, actor, reason string) (*Project, error) {
	p, err := e.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if p.CreatedBy == "" || p.CreatedBy != actor {
		e.recordAudit("archive_project", actor, projectID, "", "forbidden")
		return nil, storeerr.New(storeerr.Forbidden, "only the project creator may archive the project")
	}

	now := time.Now().UTC()
	p.Archived = true
	p.ArchivedAt = &now
	p.ArchivedBy = actor
	p.ArchiveReason = reason

	if err := writeJSON(e.projectMetadataPath(projectID), p); err != nil {
		return nil, err
	}

	e.recordAudit("archive_project", actor, projectID, "", "ok")
	e.logger.Info("project archived", "project_id", projectID, "actor", actor, "reason", reason)
	return p, nil
}

// ListProjectsInput configures pagination and archive filtering.
type ListProjectsInput struct {
	Offset           int
	Limit            int
	IncludeArchived  bool
}

// ListProjects returns projects in lexicographic order by project_id. A
// non-positive limit means 100; a limit above 1000 is capped at 1000.
func (e *Engine) ListProjects(in ListProjectsInput) ([]*Project, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	base := filepath.Join(e.dataRoot, "projects")
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Project{}, nil
		}
		return nil, storeerr.New(storeerr.IOError, "listing projects")
	}

	var ids []string
	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		ids = append(ids, ent.Name())
	}
	sort.Strings(ids)

	var out []*Project
	for _, id := range ids {
		p, err := e.GetProject(id)
		if err != nil {
			continue
		}
		if p.Archived && !in.IncludeArchived {
			continue
		}
		out = append(out, p)
	}

	if in.Offset >= len(out) {
		return []*Project{}, nil
	}
	end := in.Offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[in.Offset:end], nil
}

func codeOrIO(err error) storeerr.Code {
	if code, ok := storeerr.CodeOf(err); ok {
		return code
	}
	return storeerr.IOError
}
