package store

import (
	"context"
	"time"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/atomicio"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// GetOrCreateClient loads a client's identity record, creating it (with
// FirstSeen stamped now) if this is the first time clientID has been seen.
func (e *Engine) GetOrCreateClient(ctx context.Context, clientID string) (*ClientIdentity, error) {
	lock, err := atomicio.Lock(ctx, e.clientLockPath(clientID), e.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	var ci ClientIdentity
	if err := readJSON(e.clientIdentityPath(clientID), &ci); err == nil {
		return &ci, nil
	}

	ci = ClientIdentity{ClientID: clientID, FirstSeen: time.Now().UTC()}
	if err := writeJSON(e.clientIdentityPath(clientID), &ci); err != nil {
		return nil, err
	}
	return &ci, nil
}

// RecordMembership appends {project_id, agent_name, project_name} to the
// client's memberships file under a lock, deduplicating by
// (project_id, agent_name).
func (e *Engine) RecordMembership(ctx context.Context, clientID string, m Membership) error {
	lock, err := atomicio.Lock(ctx, e.clientLockPath(clientID), e.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	memberships, err := e.readMembershipsUnlocked(clientID)
	if err != nil {
		return err
	}

	for _, existing := range memberships {
		if existing.ProjectID == m.ProjectID && existing.AgentName == m.AgentName {
			return nil // already recorded
		}
	}

	memberships = append(memberships, m)
	return writeJSON(e.clientMembershipsPath(clientID), memberships)
}

// ListMemberships returns every membership a client has recorded, used by
// the `status` tool to enumerate "all projects for caller's client_id".
func (e *Engine) ListMemberships(clientID string) ([]Membership, error) {
	return e.readMembershipsUnlocked(clientID)
}

func (e *Engine) readMembershipsUnlocked(clientID string) ([]Membership, error) {
	var memberships []Membership
	if err := readJSON(e.clientMembershipsPath(clientID), &memberships); err != nil {
		if code, ok := storeerr.CodeOf(err); ok && code == storeerr.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return memberships, nil
}

// removeMembership deletes a single membership entry, used when a project
// is deleted or a member leaves.
func (e *Engine) removeMembership(clientID, projectID, agentName string) error {
	lock, err := atomicio.Lock(context.Background(), e.clientLockPath(clientID), e.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	memberships, err := e.readMembershipsUnlocked(clientID)
	if err != nil {
		return err
	}

	kept := make([]Membership, 0, len(memberships))
	for _, m := range memberships {
		if m.ProjectID == projectID && m.AgentName == agentName {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == len(memberships) {
		return nil // nothing matched, avoid an unnecessary write
	}
	return writeJSON(e.clientMembershipsPath(clientID), kept)
}
