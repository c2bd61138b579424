package toolerr

import (
	"errors"
	"testing"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

func TestEnvelope_ScrubsDataRootPath(t *testing.T) {
	s := NewScrubber("/home/agent/.brainstorm")
	err := storeerr.New(storeerr.NotFound, "file /home/agent/.brainstorm/projects/p/metadata.json not found")

	env := s.Envelope(err)
	if env.Error.Code != string(storeerr.NotFound) {
		t.Errorf("code = %q, want NOT_FOUND", env.Error.Code)
	}
	if want := "file <data-root>/projects/p/metadata.json not found"; env.Error.Message != want {
		t.Errorf("message = %q, want %q", env.Error.Message, want)
	}
}

func TestEnvelope_UnrecognizedErrorBecomesIOError(t *testing.T) {
	s := NewScrubber("/home/agent/.brainstorm")
	env := s.Envelope(errors.New("boom"))
	if env.Error.Code != string(storeerr.IOError) {
		t.Errorf("code = %q, want IO_ERROR", env.Error.Code)
	}
}
