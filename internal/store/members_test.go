package store

import (
	"context"
	"testing"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

func mustCreateProject(t *testing.T, e *Engine, id, creator string) {
	t.Helper()
	if _, err := e.CreateProject(context.Background(), CreateProjectInput{ProjectID: id, Name: id, CreatedBy: creator}); err != nil {
		t.Fatalf("CreateProject(%s): %v", id, err)
	}
}

func TestJoinProject_ConflictOnDifferentClient(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	if _, err := e.JoinProject(ctx, JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "client-a"}); err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, err := e.JoinProject(ctx, JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "client-b"})
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.Conflict {
		t.Fatalf("second join error = %v, want CONFLICT", err)
	}
}

func TestJoinProject_LegacySlotAdoption(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	legacy := &Member{ProjectID: "p", AgentName: "bob", AgentID: "legacy-id"}
	if err := writeJSON(e.memberPath("p", "bob"), legacy); err != nil {
		t.Fatalf("seeding legacy member: %v", err)
	}

	m, err := e.JoinProject(ctx, JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "client-a"})
	if err != nil {
		t.Fatalf("JoinProject: %v", err)
	}
	if m.AgentID != "legacy-id" {
		t.Errorf("agent_id = %q, want legacy-id preserved", m.AgentID)
	}
	if m.ClientID != "client-a" {
		t.Errorf("client_id = %q, want backfilled to client-a", m.ClientID)
	}
}

func TestJoinProject_RecordsClientMembership(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	if _, err := e.JoinProject(ctx, JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "client-b"}); err != nil {
		t.Fatalf("JoinProject: %v", err)
	}

	memberships, err := e.ListMemberships("client-b")
	if err != nil {
		t.Fatalf("ListMemberships: %v", err)
	}
	if len(memberships) != 1 || memberships[0].ProjectID != "p" || memberships[0].AgentName != "bob" {
		t.Fatalf("memberships = %+v, want a single entry for p/bob", memberships)
	}

	// Rejoining the same client must not duplicate the membership entry.
	if _, err := e.JoinProject(ctx, JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "client-b"}); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	memberships, err = e.ListMemberships("client-b")
	if err != nil {
		t.Fatalf("ListMemberships after rejoin: %v", err)
	}
	if len(memberships) != 1 {
		t.Fatalf("memberships after rejoin = %d, want 1", len(memberships))
	}
}

func TestLeaveProject_CoordinatorRequiresHandover(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	err := e.LeaveProject(ctx, "p", "alice", "")
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.CoordinatorHandoverRequired {
		t.Fatalf("LeaveProject by coordinator error = %v, want COORDINATOR_HANDOVER_REQUIRED", err)
	}
}

func TestHandoverCoordinator_TransfersRoleAtomically(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")
	if _, err := e.JoinProject(ctx, JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "client-b"}); err != nil {
		t.Fatalf("JoinProject: %v", err)
	}

	if err := e.HandoverCoordinator(ctx, "p", "alice", "bob"); err != nil {
		t.Fatalf("HandoverCoordinator: %v", err)
	}

	alice, err := e.GetMember("p", "alice")
	if err != nil {
		t.Fatalf("GetMember(alice): %v", err)
	}
	bob, err := e.GetMember("p", "bob")
	if err != nil {
		t.Fatalf("GetMember(bob): %v", err)
	}
	if alice.Role == RoleCoordinator {
		t.Error("alice should no longer be coordinator")
	}
	if bob.Role != RoleCoordinator {
		t.Error("bob should now be coordinator")
	}
}

func TestHandoverCoordinator_RejectsNonCoordinatorSource(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")
	if _, err := e.JoinProject(ctx, JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "client-b"}); err != nil {
		t.Fatalf("JoinProject: %v", err)
	}

	err := e.HandoverCoordinator(ctx, "p", "bob", "alice")
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.Forbidden {
		t.Fatalf("handover from non-coordinator error = %v, want FORBIDDEN", err)
	}
}

func TestEnsureProjectHasCoordinator_BackfillsFromCreator(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreateProject(ctx, CreateProjectInput{ProjectID: "p", Name: "p", CreatedBy: "alice"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	// Simulate a legacy project whose creator member record predates roles.
	m, err := e.GetMember("p", "alice")
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	m.Role = ""
	if err := writeJSON(e.memberPath("p", "alice"), m); err != nil {
		t.Fatalf("clearing role: %v", err)
	}

	if err := e.EnsureProjectHasCoordinator(ctx, "p"); err != nil {
		t.Fatalf("EnsureProjectHasCoordinator: %v", err)
	}

	m, err = e.GetMember("p", "alice")
	if err != nil {
		t.Fatalf("GetMember after backfill: %v", err)
	}
	if m.Role != RoleCoordinator {
		t.Errorf("role after backfill = %q, want coordinator", m.Role)
	}

	// Idempotent: calling again must not error or duplicate anything.
	if err := e.EnsureProjectHasCoordinator(ctx, "p"); err != nil {
		t.Fatalf("second EnsureProjectHasCoordinator: %v", err)
	}
}
