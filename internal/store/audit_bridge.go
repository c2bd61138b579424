package store

import "github.com/TheodorStorm/brainstorm-mcp-sub001/internal/audit"

func auditEntry(op, actor, projectID, target, result string) audit.Entry {
	return audit.Entry{
		Op:        op,
		Actor:     actor,
		ProjectID: projectID,
		Target:    target,
		Result:    result,
	}
}
