package store

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/atomicio"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// JoinInput describes a join_project request.
type JoinInput struct {
	ProjectID string
	AgentName string
	ClientID  string
}

// JoinProject creates the member record on first join. A legacy slot (an
// existing record with no client_id) is adopted: agent_id and joined_at
// are preserved and client_id is backfilled. A slot held by a different
// client conflicts. Subsequent joins by the same client update last_seen
// and online.
func (e *Engine) JoinProject(ctx context.Context, in JoinInput) (*Member, error) {
	proj, err := e.GetProject(in.ProjectID)
	if err != nil {
		return nil, err
	}

	lock, err := atomicio.Lock(ctx, e.memberLockPath(in.ProjectID, in.AgentName), e.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	now := time.Now().UTC()
	path := e.memberPath(in.ProjectID, in.AgentName)

	var existing Member
	if err := readJSON(path, &existing); err == nil {
		switch {
		case existing.ClientID == "":
			// Legacy slot: adopt it, preserving identity fields.
			existing.ClientID = in.ClientID
			existing.LastSeen = now
			existing.Online = true
			if err := writeJSON(path, &existing); err != nil {
				return nil, err
			}
			e.recordAudit("join_project", in.AgentName, in.ProjectID, in.AgentName, "adopted")
			e.recordJoinMembership(ctx, in, proj)
			return &existing, nil
		case existing.ClientID == in.ClientID:
			existing.LastSeen = now
			existing.Online = true
			if err := writeJSON(path, &existing); err != nil {
				return nil, err
			}
			e.recordAudit("join_project", in.AgentName, in.ProjectID, in.AgentName, "rejoined")
			e.recordJoinMembership(ctx, in, proj)
			return &existing, nil
		default:
			e.recordAudit("join_project", in.AgentName, in.ProjectID, in.AgentName, "conflict")
			return nil, storeerr.New(storeerr.Conflict, "agent name is already claimed by a different client")
		}
	}

	m := &Member{
		ProjectID: in.ProjectID,
		AgentName: in.AgentName,
		AgentID:   uuid.NewString(),
		ClientID:  in.ClientID,
		JoinedAt:  now,
		LastSeen:  now,
		Online:    true,
	}
	if err := writeJSON(path, m); err != nil {
		return nil, err
	}

	e.recordAudit("join_project", in.AgentName, in.ProjectID, in.AgentName, "created")
	e.logger.Info("member joined", "project_id", in.ProjectID, "agent_name", in.AgentName)
	e.recordJoinMembership(ctx, in, proj)
	return m, nil
}

// recordJoinMembership registers the client and appends a membership-index
// entry so `status` can enumerate the client's projects. Best-effort: a
// failure here must not fail the join itself, since the member record is
// already committed.
func (e *Engine) recordJoinMembership(ctx context.Context, in JoinInput, proj *Project) {
	if in.ClientID == "" {
		return
	}
	if _, err := e.GetOrCreateClient(ctx, in.ClientID); err != nil {
		e.logger.Warn("registering client identity failed", "error", err)
		return
	}
	if err := e.RecordMembership(ctx, in.ClientID, Membership{
		ProjectID:   in.ProjectID,
		AgentName:   in.AgentName,
		ProjectName: proj.Name,
	}); err != nil {
		e.logger.Warn("recording client membership failed", "error", err)
	}
}

// LeaveProject removes the member record and purges the client's
// membership-index entry. Fails COORDINATOR_HANDOVER_REQUIRED if the
// leaving member currently holds the coordinator role.
func (e *Engine) LeaveProject(ctx context.Context, projectID, agentName, clientID string) error {
	lock, err := atomicio.Lock(ctx, e.membersLockPath(projectID), e.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	var m Member
	path := e.memberPath(projectID, agentName)
	if err := readJSON(path, &m); err != nil {
		return err
	}

	if m.Role == RoleCoordinator {
		candidates, _ := e.listMembersUnlocked(projectID)
		var names []string
		for _, c := range candidates {
			if c.AgentName != agentName {
				names = append(names, c.AgentName)
			}
		}
		e.recordAudit("leave_project", agentName, projectID, agentName, "handover_required")
		return storeerr.WithDetails(storeerr.CoordinatorHandoverRequired,
			"coordinator must hand over the role before leaving", names)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return storeerr.New(storeerr.IOError, "removing member record")
	}
	if err := atomicio.FsyncDir(e.membersDir(projectID)); err != nil {
		e.logger.Warn("fsync members directory after leave failed", "error", err)
	}

	if clientID != "" {
		if err := e.removeMembership(clientID, projectID, agentName); err != nil {
			e.logger.Warn("removing client membership entry failed", "error", err)
		}
	}

	e.recordAudit("leave_project", agentName, projectID, agentName, "ok")
	return nil
}

// HandoverCoordinator atomically transfers the coordinator role. The
// single-coordinator invariant is enforced by locking the members
// directory and re-reading every member's role before committing, so no
// observer ever sees two coordinators even under concurrent calls.
func (e *Engine) HandoverCoordinator(ctx context.Context, projectID, fromAgent, toAgent string) error {
	lock, err := atomicio.Lock(ctx, e.membersLockPath(projectID), e.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	members, err := e.listMembersUnlocked(projectID)
	if err != nil {
		return err
	}

	var from, to *Member
	for _, m := range members {
		if m.AgentName == fromAgent {
			from = m
		}
		if m.AgentName == toAgent {
			to = m
		}
	}
	if from == nil || to == nil {
		return storeerr.New(storeerr.NotFound, "from_agent or to_agent is not a member of this project")
	}
	if from.Role != RoleCoordinator {
		return storeerr.New(storeerr.Forbidden, "only the current coordinator may hand over the role")
	}

	from.Role = ""
	to.Role = RoleCoordinator

	if err := writeJSON(e.memberPath(projectID, fromAgent), from); err != nil {
		return err
	}
	if err := writeJSON(e.memberPath(projectID, toAgent), to); err != nil {
		// Best-effort rollback: restore the source's role so we never end
		// up with zero coordinators because of a partial failure.
		from.Role = RoleCoordinator
		_ = writeJSON(e.memberPath(projectID, fromAgent), from)
		return err
	}

	e.recordAudit("handover_coordinator", fromAgent, projectID, toAgent, "ok")
	e.logger.Info("coordinator handover", "project_id", projectID, "from", fromAgent, "to", toAgent)
	return nil
}

// UpdateMemberHeartbeat updates last_seen and online. Lost-update races on
// these two booleans are acceptable; identity fields are never touched
// here.
func (e *Engine) UpdateMemberHeartbeat(ctx context.Context, projectID, agentName string, online bool) error {
	lock, err := atomicio.Lock(ctx, e.memberLockPath(projectID, agentName), e.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	var m Member
	path := e.memberPath(projectID, agentName)
	if err := readJSON(path, &m); err != nil {
		return err
	}
	m.LastSeen = time.Now().UTC()
	m.Online = online
	return writeJSON(path, &m)
}

// GetMember loads a single member record, NOT_FOUND if absent.
func (e *Engine) GetMember(projectID, agentName string) (*Member, error) {
	var m Member
	if err := readJSON(e.memberPath(projectID, agentName), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// IsMember reports whether agentName is a current member of projectID.
func (e *Engine) IsMember(projectID, agentName string) bool {
	return exists(e.memberPath(projectID, agentName))
}

// ListMembers returns every member of a project, sorted by agent_name.
func (e *Engine) ListMembers(projectID string) ([]*Member, error) {
	return e.listMembersUnlocked(projectID)
}

func (e *Engine) listMembersUnlocked(projectID string) ([]*Member, error) {
	dir := e.membersDir(projectID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storeerr.New(storeerr.IOError, "listing members")
	}

	var out []*Member
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, ".json") || atomicio.IsTempName(name) {
			continue
		}
		var m Member
		if err := readJSON(e.memberPath(projectID, strings.TrimSuffix(name, ".json")), &m); err != nil {
			continue
		}
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentName < out[j].AgentName })
	return out, nil
}

// EnsureProjectHasCoordinator implements the backward-compat migration in
// §4.6: if the project has a created_by who is still a member, and no
// member currently holds the coordinator role, the creator is assigned
// role=coordinator. Idempotent; safe to call unconditionally on every
// project access path (status, get_project_info, join_project,
// send_message, receive_messages).
func (e *Engine) EnsureProjectHasCoordinator(ctx context.Context, projectID string) error {
	p, err := e.GetProject(projectID)
	if err != nil {
		return err
	}
	if p.CreatedBy == "" {
		return nil
	}

	lock, err := atomicio.Lock(ctx, e.membersLockPath(projectID), e.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	members, err := e.listMembersUnlocked(projectID)
	if err != nil {
		return err
	}

	var hasCoordinator bool
	var creator *Member
	for _, m := range members {
		if m.Role == RoleCoordinator {
			hasCoordinator = true
		}
		if m.AgentName == p.CreatedBy {
			creator = m
		}
	}

	if hasCoordinator || creator == nil {
		return nil
	}

	creator.Role = RoleCoordinator
	return writeJSON(e.memberPath(projectID, creator.AgentName), creator)
}
