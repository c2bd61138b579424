// Package identity resolves a deterministic client identity from either an
// explicit environment override or a hash of the caller's stable working
// directory, and defines the entry type of a client's membership index.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/idguard"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

const (
	minClientIDLen = 1
	maxClientIDLen = 256
)

// ResolveClientID implements §4.7: an explicit BRAINSTORM_CLIENT_ID wins
// verbatim when non-empty, within bounds and a valid client_id for
// idguard; otherwise the working directory is hashed into a deterministic
// UUID-shaped identifier.
func ResolveClientID(envClientID, workingDirectory string) (string, error) {
	if envClientID != "" {
		if len(envClientID) > maxClientIDLen {
			return "", storeerr.New(storeerr.InvalidID, "BRAINSTORM_CLIENT_ID exceeds maximum length")
		}
		if len(envClientID) < minClientIDLen {
			return hashWorkingDirectory(workingDirectory), nil
		}
		if err := idguard.ValidateClientID(envClientID); err != nil {
			return "", err
		}
		return envClientID, nil
	}
	return hashWorkingDirectory(workingDirectory), nil
}

// hashWorkingDirectory formats SHA-256(workingDirectory) as a
// UUID-shaped identifier: aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee, taken from
// the first 32 hex characters of the digest.
func hashWorkingDirectory(workingDirectory string) string {
	sum := sha256.Sum256([]byte(workingDirectory))
	hexDigest := hex.EncodeToString(sum[:])[:32]
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hexDigest[0:8], hexDigest[8:12], hexDigest[12:16], hexDigest[16:20], hexDigest[20:32])
}

// Membership is one entry in a client's membership index.
type Membership struct {
	ProjectID   string `json:"project_id"`
	AgentName   string `json:"agent_name"`
	ProjectName string `json:"project_name"`
}

// Key returns the (project_id, agent_name) dedup key for this membership.
func (m Membership) Key() string {
	return m.ProjectID + "\x00" + m.AgentName
}
