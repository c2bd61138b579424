package identity

import (
	"strings"
	"testing"
)

func TestResolveClientID_EnvOverride(t *testing.T) {
	id, err := ResolveClientID("my-explicit-client", "/some/dir")
	if err != nil {
		t.Fatal(err)
	}
	if id != "my-explicit-client" {
		t.Errorf("id = %q, want verbatim env value", id)
	}
}

func TestResolveClientID_OverlongEnvRejected(t *testing.T) {
	long := strings.Repeat("a", 257)
	_, err := ResolveClientID(long, "/some/dir")
	if err == nil {
		t.Fatal("expected overlong client id to be rejected")
	}
}

func TestResolveClientID_DeterministicHash(t *testing.T) {
	id1, err := ResolveClientID("", "/home/alice/project")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := ResolveClientID("", "/home/alice/project")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("hash must be deterministic: %q != %q", id1, id2)
	}

	id3, _ := ResolveClientID("", "/home/bob/project")
	if id1 == id3 {
		t.Error("different working directories must hash differently")
	}

	want := "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	if len(id1) != len(want) {
		t.Errorf("id shape = %q, want length matching %q", id1, want)
	}
}

func TestMembershipKey(t *testing.T) {
	m1 := Membership{ProjectID: "p1", AgentName: "alice"}
	m2 := Membership{ProjectID: "p1", AgentName: "alice"}
	m3 := Membership{ProjectID: "p1", AgentName: "bob"}
	if m1.Key() != m2.Key() {
		t.Error("identical memberships must share a key")
	}
	if m1.Key() == m3.Key() {
		t.Error("distinct agent names must not share a key")
	}
}
