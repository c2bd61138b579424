package idguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

func TestValidateID(t *testing.T) {
	cases := []struct {
		id      string
		wantErr bool
	}{
		{"race-test", false},
		{"alice", false},
		{"a", false},
		{"A1_b-2", false},
		{"", true},
		{"-leading-dash", true},
		{"has.dot", true},
		{"has/slash", true},
		{"has\\backslash", true},
		{"../../etc/passwd", true},
		{"..", true},
	}
	for _, c := range cases {
		err := ValidateID(c.id)
		if (err != nil) != c.wantErr {
			t.Errorf("ValidateID(%q) error = %v, wantErr %v", c.id, err, c.wantErr)
		}
		if err != nil {
			if code, ok := storeerr.CodeOf(err); !ok || code != storeerr.InvalidID {
				t.Errorf("ValidateID(%q) code = %v, want INVALID_ID", c.id, code)
			}
		}
	}
}

func TestValidateID_TooLong(t *testing.T) {
	long := make([]byte, maxShortID+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidateID(string(long)); err == nil {
		t.Error("expected overlong id to fail")
	}
}

func TestValidateClientID_LengthBounds(t *testing.T) {
	ok := make([]byte, maxClientID)
	for i := range ok {
		ok[i] = 'a'
	}
	if err := ValidateClientID(string(ok)); err != nil {
		t.Errorf("256-char client id should be valid: %v", err)
	}
	tooLong := string(ok) + "a"
	if err := ValidateClientID(tooLong); err == nil {
		t.Error("expected 257-char client id to fail")
	}
}

func TestResolveSourcePath_Escape(t *testing.T) {
	home := t.TempDir()
	evilSibling := home + "_evil"
	if err := os.MkdirAll(evilSibling, 0o755); err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(evilSibling)
	evilFile := filepath.Join(evilSibling, "secret.txt")
	if err := os.WriteFile(evilFile, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A prefix-string check would wrongly allow this: evilSibling has home
	// as a string prefix but is not a subdirectory of it.
	_, err := ResolveSourcePath(home, evilFile, 1<<20)
	if err == nil {
		t.Fatal("expected PATH_ESCAPE for sibling directory sharing a string prefix")
	}
	if code, _ := storeerr.CodeOf(err); code != storeerr.PathEscape {
		t.Errorf("code = %v, want PATH_ESCAPE", code)
	}
}

func TestResolveSourcePath_WithinHome(t *testing.T) {
	home := t.TempDir()
	sub := filepath.Join(home, "docs")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "note.txt")
	if err := os.WriteFile(file, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	resolved, err := ResolveSourcePath(home, file, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Size != 5 {
		t.Errorf("size = %d, want 5", resolved.Size)
	}
}

func TestResolveSourcePath_TooLarge(t *testing.T) {
	home := t.TempDir()
	file := filepath.Join(home, "big.bin")
	if err := os.WriteFile(file, make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ResolveSourcePath(home, file, 10)
	if err == nil {
		t.Fatal("expected PAYLOAD_TOO_LARGE")
	}
	if code, _ := storeerr.CodeOf(err); code != storeerr.PayloadTooLarge {
		t.Errorf("code = %v, want PAYLOAD_TOO_LARGE", code)
	}
}
