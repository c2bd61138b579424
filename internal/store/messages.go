package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/atomicio"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// SendMessageInput describes a send_message request.
type SendMessageInput struct {
	ProjectID     string
	FromAgent     string
	ToAgent       string // empty when Broadcast is true
	Broadcast     bool
	ReplyExpected bool
	Type          string
	Payload       json.RawMessage
}

// SendMessage writes one file per recipient inbox: a direct message writes
// one file in the recipient's inbox, a broadcast expands to one file per
// project member other than the sender. Broadcast fan-out is not atomic
// across recipients — each per-recipient file is itself atomic, but a
// crash between writes may leave a broadcast partially delivered.
func (e *Engine) SendMessage(ctx context.Context, in SendMessageInput) ([]*Message, error) {
	if err := validatePayloadSize(in.Payload, e.messagePayloadCap); err != nil {
		return nil, err
	}
	if err := validateJSONDepth(in.Payload); err != nil {
		return nil, err
	}

	var recipients []string
	if in.Broadcast {
		members, err := e.listMembersUnlocked(in.ProjectID)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if m.AgentName != in.FromAgent {
				recipients = append(recipients, m.AgentName)
			}
		}
	} else {
		if in.ToAgent == "" {
			return nil, storeerr.New(storeerr.InvalidID, "to_agent is required for a direct message")
		}
		recipients = []string{in.ToAgent}
	}

	now := time.Now().UTC()
	var delivered []*Message
	for _, recipient := range recipients {
		msg := &Message{
			MessageID:     uuid.NewString(),
			ProjectID:     in.ProjectID,
			FromAgent:     in.FromAgent,
			ToAgent:       recipient,
			Broadcast:     in.Broadcast,
			ReplyExpected: in.ReplyExpected,
			Type:          in.Type,
			Payload:       in.Payload,
			Timestamp:     now,
		}
		filename := messageFilename(now, msg.MessageID)
		path := filepath.Join(e.inboxDir(in.ProjectID, recipient), filename)
		if err := writeJSON(path, msg); err != nil {
			e.logger.Warn("broadcast delivery to recipient failed", "project_id", in.ProjectID, "recipient", recipient, "error", err)
			continue
		}
		delivered = append(delivered, msg)
	}

	if len(delivered) == 0 && len(recipients) > 0 {
		return nil, storeerr.New(storeerr.IOError, "message delivery failed for all recipients")
	}

	e.recordAudit("send_message", in.FromAgent, in.ProjectID, strings.Join(recipients, ","), "ok")
	return delivered, nil
}

func messageFilename(ts time.Time, messageID string) string {
	return ts.Format("20060102T150405.000000000Z") + "-" + messageID + ".json"
}

// ReceiveMessagesInput describes a receive_messages request (minus the
// wait/timeout handling, which lives in the waiter package).
type ReceiveMessagesInput struct {
	ProjectID string
	AgentName string
}

// ReceiveMessages acquires the inbox lock, lists non-archive, non-temp
// files, reads each, then moves it to archive/ (auto-archive-on-read),
// releasing the lock before returning.
func (e *Engine) ReceiveMessages(ctx context.Context, in ReceiveMessagesInput) ([]*Message, error) {
	lock, err := atomicio.Lock(ctx, e.inboxLockPath(in.ProjectID, in.AgentName), e.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	dir := e.inboxDir(in.ProjectID, in.AgentName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, storeerr.New(storeerr.IOError, "listing inbox")
	}

	var names []string
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || atomicio.IsTempName(name) || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names) // arrival order: filenames are monotonic by timestamp

	archiveDir := e.inboxArchiveDir(in.ProjectID, in.AgentName)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return nil, storeerr.New(storeerr.IOError, "creating archive directory")
	}

	var out []*Message
	for _, name := range names {
		src := filepath.Join(dir, name)
		var msg Message
		if err := readJSON(src, &msg); err != nil {
			e.logger.Warn("skipping unreadable inbox file", "path", name, "error", err)
			continue
		}
		dst := filepath.Join(archiveDir, name)
		if err := os.Rename(src, dst); err != nil {
			e.logger.Warn("archiving inbox message failed", "path", name, "error", err)
			continue
		}
		out = append(out, &msg)
	}
	if len(names) > 0 {
		if err := atomicio.FsyncDir(archiveDir); err != nil {
			e.logger.Warn("fsync archive directory failed", "error", err)
		}
		if err := atomicio.FsyncDir(dir); err != nil {
			e.logger.Warn("fsync inbox directory failed", "error", err)
		}
	}

	if len(out) > 0 {
		e.recordAudit("receive_messages", in.AgentName, in.ProjectID, "", "ok")
	}
	return out, nil
}

// InboxHasMessages backs the long-poll "new message" wait condition: true
// iff the inbox contains at least one non-archive, non-temp file.
func (e *Engine) InboxHasMessages(projectID, agentName string) bool {
	entries, err := os.ReadDir(e.inboxDir(projectID, agentName))
	if err != nil {
		return false
	}
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || atomicio.IsTempName(name) || !strings.HasSuffix(name, ".json") {
			continue
		}
		return true
	}
	return false
}
