package store

import (
	"log/slog"
	"time"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/audit"
)

// Engine is the filesystem-backed storage engine rooted at a single data
// directory. It holds no in-memory mutable state between calls — every
// read and write goes to disk, guarded by the advisory locks described in
// spec §4.2. Safe for concurrent use by many goroutines and many OS
// processes pointed at the same data root.
type Engine struct {
	dataRoot string

	lockTimeout time.Duration

	inlineContentLimit int64
	messagePayloadCap  int64
	resourceFileCap    int64

	audit  *audit.Logger
	logger *slog.Logger
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLockTimeout overrides the default 5s advisory-lock acquisition
// timeout.
func WithLockTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.lockTimeout = d
		}
	}
}

// WithPayloadCaps overrides the inline-content, message-payload and
// referenced-file size ceilings.
func WithPayloadCaps(inlineContent, messagePayload, resourceFile int64) Option {
	return func(e *Engine) {
		if inlineContent > 0 {
			e.inlineContentLimit = inlineContent
		}
		if messagePayload > 0 {
			e.messagePayloadCap = messagePayload
		}
		if resourceFile > 0 {
			e.resourceFileCap = resourceFile
		}
	}
}

// WithLogger sets the structured logger the engine annotates every
// mutation with.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds an Engine rooted at dataRoot that records state changes
// through auditor; a nil auditor disables audit recording.
func New(dataRoot string, auditor *audit.Logger, opts ...Option) *Engine {
	e := &Engine{
		dataRoot:           dataRoot,
		lockTimeout:        5 * time.Second,
		inlineContentLimit: 50 * 1024,
		messagePayloadCap:  500 * 1024,
		resourceFileCap:    500 * 1024,
		audit:              auditor,
		logger:             slog.Default().With("component", "store.engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DataRoot returns the engine's root directory, for the doctor CLI command
// and for scrubbing absolute paths out of error messages (§7).
func (e *Engine) DataRoot() string {
	return e.dataRoot
}

func (e *Engine) recordAudit(op, actor, projectID, target, result string) {
	if e.audit == nil {
		return
	}
	e.audit.Record(auditEntry(op, actor, projectID, target, result))
}
