package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

func TestValidateJSONDepth_AcceptsExactlyMaxDepth(t *testing.T) {
	raw := []byte(strings.Repeat("[", maxPayloadDepth) + strings.Repeat("]", maxPayloadDepth))
	if err := validateJSONDepth(raw); err != nil {
		t.Fatalf("expected %d levels of nesting to be accepted, got %v", maxPayloadDepth, err)
	}
}

func TestValidateJSONDepth_RejectsOneOverMax(t *testing.T) {
	raw := []byte(strings.Repeat("[", maxPayloadDepth+1) + strings.Repeat("]", maxPayloadDepth+1))
	err := validateJSONDepth(raw)
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.PayloadTooDeep {
		t.Errorf("code = %q, want PAYLOAD_TOO_DEEP", code)
	}
}

func TestValidateJSONDepth_PlainTextPassesThrough(t *testing.T) {
	if err := validateJSONDepth([]byte("not json at all")); err != nil {
		t.Fatalf("plain text should not be depth-checked, got %v", err)
	}
}

func TestSendMessage_RejectsOversizedPayload(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	mustCreateProject(t, e, "p", "alice")
	if _, err := e.JoinProject(ctx, JoinInput{ProjectID: "p", AgentName: "bob", ClientID: "c"}); err != nil {
		t.Fatalf("JoinProject: %v", err)
	}

	huge, _ := json.Marshal(strings.Repeat("x", int(e.messagePayloadCap)+1))
	_, err := e.SendMessage(ctx, SendMessageInput{
		ProjectID: "p", FromAgent: "alice", ToAgent: "bob",
		Type: "note", Payload: json.RawMessage(huge),
	})
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.PayloadTooLarge {
		t.Errorf("code = %q, want PAYLOAD_TOO_LARGE", code)
	}
}

func TestStoreResource_RejectsOversizedInlineContent(t *testing.T) {
	e := newTestEngine(t)
	mustCreateProject(t, e, "p", "alice")

	_, err := e.StoreResource(context.Background(), StoreResourceInput{
		ProjectID: "p", ResourceID: "r", Actor: "alice",
		Content: make([]byte, e.inlineContentLimit+1), HasContent: true,
		Permissions: &Permissions{Read: []string{"alice"}, Write: []string{"alice"}}, HasPermissions: true,
	})
	if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.PayloadTooLarge {
		t.Errorf("code = %q, want PAYLOAD_TOO_LARGE", code)
	}
}
