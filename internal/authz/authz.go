// Package authz evaluates the engine-level authorization rules from spec
// §4.6 that sit above plain resource ACLs: writer-identity enforcement and
// the handoff message-type authority rule. Resource-level read/write ACL
// checks live on store.Permissions itself; this package covers the rules
// that depend on role state rather than a single resource's manifest.
package authz

import (
	"context"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/store"
)

// MemberSource is the subset of *store.Engine the role engine needs.
type MemberSource interface {
	GetMember(projectID, agentName string) (*store.Member, error)
	EnsureProjectHasCoordinator(ctx context.Context, projectID string) error
}

// RequireWriterIdentity enforces that a caller can only act as the agent
// name they actually claimed when joining: actor must equal claimedAgent.
// creator_agent is never accepted from the caller, so this check alone is
// what stands between a caller and identity spoofing on writes.
func RequireWriterIdentity(actor, claimedAgent string) error {
	if actor != claimedAgent {
		return storeerr.New(storeerr.Forbidden, "actor must match the caller's claimed agent identity")
	}
	return nil
}

// CheckHandoffAuthority enforces the (deliberately inverted) rule: a
// contributor may send "handoff"; the coordinator may only reply with
// "handoff_accepted" or "handoff_rejected". Any other combination of
// sender role and message type fails HANDOFF_AUTHORITY_ERROR. Non-handoff
// message types are unrestricted by this check.
func CheckHandoffAuthority(ctx context.Context, src MemberSource, projectID, fromAgent, messageType string) error {
	switch messageType {
	case store.MessageTypeHandoff, store.MessageTypeHandoffAccepted, store.MessageTypeHandoffRejected:
	default:
		return nil
	}

	if err := src.EnsureProjectHasCoordinator(ctx, projectID); err != nil {
		return err
	}
	m, err := src.GetMember(projectID, fromAgent)
	if err != nil {
		return err
	}

	isCoordinator := m.Role == store.RoleCoordinator
	switch messageType {
	case store.MessageTypeHandoff:
		if isCoordinator {
			return storeerr.New(storeerr.HandoffAuthorityError, "only a contributor may send a handoff message")
		}
	case store.MessageTypeHandoffAccepted, store.MessageTypeHandoffRejected:
		if !isCoordinator {
			return storeerr.New(storeerr.HandoffAuthorityError, "only the coordinator may send handoff_accepted or handoff_rejected")
		}
	}
	return nil
}

// RequireCoordinator fails FORBIDDEN unless agentName currently holds the
// coordinator role for projectID (used by handover_coordinator's source
// check ahead of the store-level re-verification under lock).
func RequireCoordinator(src MemberSource, projectID, agentName string) error {
	m, err := src.GetMember(projectID, agentName)
	if err != nil {
		return err
	}
	if m.Role != store.RoleCoordinator {
		return storeerr.New(storeerr.Forbidden, "only the current coordinator may perform this action")
	}
	return nil
}

// RequireMember fails FORBIDDEN unless agentName is a current member of
// projectID, used ahead of operations that are member-only but not
// role-gated (e.g. send_message, store_resource).
func RequireMember(src interface {
	IsMember(projectID, agentName string) bool
}, projectID, agentName string) error {
	if !src.IsMember(projectID, agentName) {
		return storeerr.New(storeerr.Forbidden, "agent is not a member of this project")
	}
	return nil
}
