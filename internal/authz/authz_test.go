package authz_test

import (
	"context"
	"testing"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/audit"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/authz"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/store"
)

func newTestEngine(t *testing.T) *store.Engine {
	t.Helper()
	return store.New(t.TempDir(), audit.New(t.TempDir(), nil))
}

func TestRequireWriterIdentity(t *testing.T) {
	if err := authz.RequireWriterIdentity("alice", "alice"); err != nil {
		t.Errorf("matching identities should be allowed, got %v", err)
	}
	err := authz.RequireWriterIdentity("alice", "bob")
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.Forbidden {
		t.Fatalf("mismatched identities error = %v, want FORBIDDEN", err)
	}
}

func TestCheckHandoffAuthority_ContributorSendsHandoff(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	if _, err := e.CreateProject(ctx, store.CreateProjectInput{ProjectID: "p", Name: "p", CreatedBy: "alice"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := e.JoinProject(ctx, store.JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "c"}); err != nil {
		t.Fatalf("JoinProject: %v", err)
	}

	if err := authz.CheckHandoffAuthority(ctx, e, "p", "bob", store.MessageTypeHandoff); err != nil {
		t.Errorf("contributor sending handoff should be allowed, got %v", err)
	}
	err := authz.CheckHandoffAuthority(ctx, e, "p", "alice", store.MessageTypeHandoff)
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.HandoffAuthorityError {
		t.Fatalf("coordinator sending handoff error = %v, want HANDOFF_AUTHORITY_ERROR", err)
	}
}

func TestCheckHandoffAuthority_CoordinatorRepliesOnly(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	if _, err := e.CreateProject(ctx, store.CreateProjectInput{ProjectID: "p", Name: "p", CreatedBy: "alice"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := e.JoinProject(ctx, store.JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "c"}); err != nil {
		t.Fatalf("JoinProject: %v", err)
	}

	if err := authz.CheckHandoffAuthority(ctx, e, "p", "alice", store.MessageTypeHandoffAccepted); err != nil {
		t.Errorf("coordinator sending handoff_accepted should be allowed, got %v", err)
	}
	err := authz.CheckHandoffAuthority(ctx, e, "p", "bob", store.MessageTypeHandoffRejected)
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.HandoffAuthorityError {
		t.Fatalf("contributor sending handoff_rejected error = %v, want HANDOFF_AUTHORITY_ERROR", err)
	}
}

func TestCheckHandoffAuthority_NonHandoffTypesUnrestricted(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	if _, err := e.CreateProject(ctx, store.CreateProjectInput{ProjectID: "p", Name: "p", CreatedBy: "alice"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if err := authz.CheckHandoffAuthority(ctx, e, "p", "alice", "note"); err != nil {
		t.Errorf("non-handoff message types should be unrestricted, got %v", err)
	}
}
