package audit

import (
	"testing"
	"time"
)

func TestRecordAndTail(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, nil)

	l.Record(Entry{Op: "create_project", Actor: "alice", ProjectID: "p1", Result: "ok"})
	l.Record(Entry{Op: "join_project", Actor: "bob", ProjectID: "p1", Result: "ok"})

	entries, err := l.Tail(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Op != "create_project" || entries[1].Op != "join_project" {
		t.Errorf("unexpected order/content: %+v", entries)
	}
	for _, e := range entries {
		if e.Timestamp.IsZero() {
			t.Error("expected timestamp to be stamped")
		}
	}
}

func TestTail_NoLogYet(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, nil)
	entries, err := l.Tail(5)
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Errorf("expected nil for missing log, got %v", entries)
	}
}

func TestTail_Truncates(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, nil)
	for i := 0; i < 5; i++ {
		l.Record(Entry{Op: "op", Actor: "a", Result: "ok", Timestamp: time.Now().UTC()})
	}
	entries, err := l.Tail(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}
