package store

import (
	"context"
	"testing"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

func TestStoreResource_CreateThenUpdateWithETag(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	perms := &Permissions{Read: []string{"*"}, Write: []string{"alice"}}
	r, err := e.StoreResource(ctx, StoreResourceInput{
		ProjectID: "p", ResourceID: "r1", Name: "notes", Actor: "alice",
		Content: []byte("hello"), HasContent: true,
		Permissions: perms, HasPermissions: true,
	})
	if err != nil {
		t.Fatalf("create StoreResource: %v", err)
	}
	if r.CreatorAgent != "alice" {
		t.Errorf("creator_agent = %q, want alice", r.CreatorAgent)
	}
	firstETag := r.ETag

	updated, err := e.StoreResource(ctx, StoreResourceInput{
		ProjectID: "p", ResourceID: "r1", Actor: "alice", ETag: firstETag,
		Content: []byte("hello again"), HasContent: true,
	})
	if err != nil {
		t.Fatalf("update StoreResource: %v", err)
	}
	if updated.ETag == firstETag {
		t.Error("ETag should change on every write")
	}
}

func TestStoreResource_StaleETagRejected(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	_, err := e.StoreResource(ctx, StoreResourceInput{
		ProjectID: "p", ResourceID: "r1", Actor: "alice",
		Content: []byte("v1"), HasContent: true,
		Permissions: &Permissions{Read: []string{"*"}, Write: []string{"alice"}}, HasPermissions: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = e.StoreResource(ctx, StoreResourceInput{
		ProjectID: "p", ResourceID: "r1", Actor: "alice", ETag: "stale-etag",
		Content: []byte("v2"), HasContent: true,
	})
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.ETagMismatch {
		t.Fatalf("update with stale etag error = %v, want ETAG_MISMATCH", err)
	}
}

func TestStoreResource_RejectsMutuallyExclusivePayload(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	_, err := e.StoreResource(ctx, StoreResourceInput{
		ProjectID: "p", ResourceID: "r1", Actor: "alice",
		Content: []byte("v1"), HasContent: true,
		SourcePath: "/etc/hosts", HasSourcePath: true,
	})
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.InvalidID {
		t.Fatalf("mutually exclusive payload error = %v", err)
	}
}

func TestGetResource_NilPermissionsAlwaysDenies(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	if _, err := e.StoreResource(ctx, StoreResourceInput{
		ProjectID: "p", ResourceID: "r1", Actor: "alice",
		Content: []byte("v1"), HasContent: true,
	}); err != nil {
		t.Fatalf("create without permissions: %v", err)
	}

	_, _, err := e.GetResource("p", "r1", "alice")
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.NoPermissionsDefined {
		t.Fatalf("get with nil permissions error = %v, want NO_PERMISSIONS_DEFINED", err)
	}
}

func TestGetResource_WriteOnlyActorCannotRead(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	if _, err := e.StoreResource(ctx, StoreResourceInput{
		ProjectID: "p", ResourceID: "r1", Actor: "alice",
		Content: []byte("v1"), HasContent: true,
		Permissions: &Permissions{Read: []string{"alice"}, Write: []string{"alice", "bob"}}, HasPermissions: true,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, _, err := e.GetResource("p", "r1", "bob")
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.InsufficientRead {
		t.Fatalf("get by write-only actor error = %v, want INSUFFICIENT_READ", err)
	}
}

func TestStoreResource_OnlyCreatorCanChangePermissions(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")

	r, err := e.StoreResource(ctx, StoreResourceInput{
		ProjectID: "p", ResourceID: "r1", Actor: "alice",
		Content: []byte("v1"), HasContent: true,
		Permissions: &Permissions{Read: []string{"*"}, Write: []string{"*"}}, HasPermissions: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := e.StoreResource(ctx, StoreResourceInput{
		ProjectID: "p", ResourceID: "r1", Actor: "bob", ETag: r.ETag,
		Permissions: &Permissions{Read: []string{"bob"}, Write: []string{"bob"}}, HasPermissions: true,
	})
	if err != nil {
		t.Fatalf("update by non-creator: %v", err)
	}
	if len(updated.Permissions.Read) != 1 || updated.Permissions.Read[0] != "*" {
		t.Errorf("non-creator permissions change should be silently ignored, got %+v", updated.Permissions)
	}
}
