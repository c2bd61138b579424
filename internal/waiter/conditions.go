package waiter

// conditionSource is the subset of *store.Engine the wait conditions need.
// Defined here (rather than importing store directly) to keep waiter
// dependency-free of the storage engine's full surface.
type conditionSource interface {
	ProjectExists(projectID string) bool
	InboxHasMessages(projectID, agentName string) bool
	ResourceExists(projectID, resourceID string) bool
}

// ProjectAppears waits for R/projects/<id>/metadata.json to exist.
func ProjectAppears(src conditionSource, projectID string) Condition {
	return func() (bool, error) { return src.ProjectExists(projectID), nil }
}

// InboxNonEmpty waits for an agent's inbox to hold at least one
// non-archive, non-temp message.
func InboxNonEmpty(src conditionSource, projectID, agentName string) Condition {
	return func() (bool, error) { return src.InboxHasMessages(projectID, agentName), nil }
}

// ResourceAppears waits for a resource manifest to exist.
func ResourceAppears(src conditionSource, projectID, resourceID string) Condition {
	return func() (bool, error) { return src.ResourceExists(projectID, resourceID), nil }
}
