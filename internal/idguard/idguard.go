// Package idguard validates externally supplied identifiers and resolves
// file-reference paths against path-escape rules. Every identifier that
// reaches the storage engine has already passed through here.
package idguard

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// idPattern matches project_id, agent_name, resource_id and client_id
// bodies once the length bound has been checked separately. It forbids
// '.', '..', '/', '\\' and a leading '-' by construction: the character
// class never admits '.', '/' or '\\', and the first character must be
// alphanumeric.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]*$`)

const (
	maxShortID  = 128 // project_id, agent_name, resource_id
	maxClientID = 256
)

// ValidateID checks project_id, agent_name and resource_id values (max 128 chars).
func ValidateID(id string) error {
	return validate(id, maxShortID)
}

// ValidateClientID checks client_id values (max 256 chars).
func ValidateClientID(id string) error {
	return validate(id, maxClientID)
}

func validate(id string, maxLen int) error {
	if id == "" {
		return storeerr.New(storeerr.InvalidID, "identifier must not be empty")
	}
	if len(id) > maxLen {
		return storeerr.New(storeerr.InvalidID, "identifier exceeds maximum length")
	}
	if !idPattern.MatchString(id) {
		return storeerr.New(storeerr.InvalidID, "identifier contains disallowed characters")
	}
	return nil
}

// ResolvedPath is the result of resolving and checking a source_path against
// the caller's home directory.
type ResolvedPath struct {
	Absolute string
	Size     int64
}

// ResolveSourcePath canonicalizes path, verifies it is a regular, readable
// file within home (via a true relative-path computation, never a prefix
// string match — "/home/user_evil" must not pass for home "/home/user"),
// and enforces maxSize.
func ResolveSourcePath(home, path string, maxSize int64) (*ResolvedPath, error) {
	absHome, err := filepath.Abs(home)
	if err != nil {
		return nil, storeerr.New(storeerr.IOError, "resolving home directory")
	}
	absHome, err = filepath.EvalSymlinks(absHome)
	if err != nil {
		return nil, storeerr.New(storeerr.IOError, "resolving home directory")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, storeerr.New(storeerr.PathEscape, "invalid source path")
	}
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, storeerr.New(storeerr.NotFound, "source path does not exist")
	}

	rel, err := filepath.Rel(absHome, resolved)
	if err != nil {
		return nil, storeerr.New(storeerr.PathEscape, "source path is not under home")
	}
	if rel == ".." || hasDotDotPrefix(rel) {
		return nil, storeerr.New(storeerr.PathEscape, "source path escapes home directory")
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, storeerr.New(storeerr.NotFound, "source path does not exist")
	}
	if !info.Mode().IsRegular() {
		return nil, storeerr.New(storeerr.PathEscape, "source path is not a regular file")
	}
	if f, err := os.Open(resolved); err != nil {
		return nil, storeerr.New(storeerr.PathEscape, "source path is not readable")
	} else {
		f.Close()
	}
	if info.Size() > maxSize {
		return nil, storeerr.New(storeerr.PayloadTooLarge, "referenced file exceeds the configured size limit")
	}

	return &ResolvedPath{Absolute: resolved, Size: info.Size()}, nil
}

// hasDotDotPrefix reports whether rel climbs out of its base via a leading
// ".." path segment, the only way filepath.Rel signals escape when it
// doesn't return exactly "..".
func hasDotDotPrefix(rel string) bool {
	if len(rel) < 2 {
		return false
	}
	if rel[0] != '.' || rel[1] != '.' {
		return false
	}
	return len(rel) == 2 || rel[2] == filepath.Separator
}
