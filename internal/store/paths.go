package store

import "path/filepath"

func (e *Engine) projectDir(projectID string) string {
	return filepath.Join(e.dataRoot, "projects", projectID)
}

func (e *Engine) projectMetadataPath(projectID string) string {
	return filepath.Join(e.projectDir(projectID), "metadata.json")
}

func (e *Engine) projectsLockPath() string {
	return filepath.Join(e.dataRoot, "projects", ".lock")
}

func (e *Engine) membersDir(projectID string) string {
	return filepath.Join(e.projectDir(projectID), "members")
}

func (e *Engine) memberPath(projectID, agentName string) string {
	return filepath.Join(e.membersDir(projectID), agentName+".json")
}

func (e *Engine) membersLockPath(projectID string) string {
	return filepath.Join(e.membersDir(projectID), ".lock")
}

func (e *Engine) memberLockPath(projectID, agentName string) string {
	return filepath.Join(e.membersDir(projectID), "."+agentName+".lock")
}

func (e *Engine) resourcesDir(projectID string) string {
	return filepath.Join(e.projectDir(projectID), "resources")
}

func (e *Engine) resourceDir(projectID, resourceID string) string {
	return filepath.Join(e.resourcesDir(projectID), resourceID)
}

func (e *Engine) resourceManifestPath(projectID, resourceID string) string {
	return filepath.Join(e.resourceDir(projectID, resourceID), "manifest.json")
}

func (e *Engine) resourcePayloadDir(projectID, resourceID string) string {
	return filepath.Join(e.resourceDir(projectID, resourceID), "payload")
}

func (e *Engine) resourceInlinePayloadPath(projectID, resourceID string) string {
	return filepath.Join(e.resourcePayloadDir(projectID, resourceID), "data")
}

func (e *Engine) resourceRefPayloadPath(projectID, resourceID string) string {
	return filepath.Join(e.resourcePayloadDir(projectID, resourceID), "ref")
}

func (e *Engine) resourceLockPath(projectID, resourceID string) string {
	return filepath.Join(e.resourceDir(projectID, resourceID), ".lock")
}

func (e *Engine) messagesDir(projectID string) string {
	return filepath.Join(e.projectDir(projectID), "messages")
}

func (e *Engine) inboxDir(projectID, agentName string) string {
	return filepath.Join(e.messagesDir(projectID), agentName)
}

func (e *Engine) inboxArchiveDir(projectID, agentName string) string {
	return filepath.Join(e.inboxDir(projectID, agentName), "archive")
}

func (e *Engine) inboxLockPath(projectID, agentName string) string {
	return filepath.Join(e.inboxDir(projectID, agentName), ".lock")
}

func (e *Engine) clientDir(clientID string) string {
	return filepath.Join(e.dataRoot, "clients", clientID)
}

func (e *Engine) clientIdentityPath(clientID string) string {
	return filepath.Join(e.clientDir(clientID), "identity.json")
}

func (e *Engine) clientMembershipsPath(clientID string) string {
	return filepath.Join(e.clientDir(clientID), "memberships.json")
}

func (e *Engine) clientLockPath(clientID string) string {
	return filepath.Join(e.clientDir(clientID), ".lock")
}
