// Package toolerr maps storage-engine errors onto the RPC error envelope
// from spec §6-§7, scrubbing the data root's absolute path out of any
// message before it reaches an agent.
package toolerr

import (
	"strings"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// Envelope is the `{error: {code, message, details?}}` shape every failed
// tool call returns.
type Envelope struct {
	Error Body `json:"error"`
}

// Body is the inner object of Envelope.
type Body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Scrubber removes a known absolute prefix (the data root) from error text.
type Scrubber struct {
	dataRoot string
}

// NewScrubber builds a Scrubber bound to dataRoot.
func NewScrubber(dataRoot string) *Scrubber {
	return &Scrubber{dataRoot: strings.TrimRight(dataRoot, "/")}
}

// Scrub replaces every occurrence of the data root's absolute path with the
// logical marker "<data-root>" so responses never leak filesystem layout.
func (s *Scrubber) Scrub(text string) string {
	if s.dataRoot == "" {
		return text
	}
	return strings.ReplaceAll(text, s.dataRoot, "<data-root>")
}

// Envelope converts err into the RPC error envelope. Unrecognized errors
// (not a *storeerr.StoreError) are reported as IO_ERROR without leaking
// their underlying message, since they may carry raw OS path text.
func (s *Scrubber) Envelope(err error) Envelope {
	se, ok := storeerr.From(err)
	if !ok {
		return Envelope{Error: Body{Code: string(storeerr.IOError), Message: "an internal error occurred"}}
	}
	return Envelope{Error: Body{
		Code:    string(se.Code),
		Message: s.Scrub(se.Message),
		Details: se.Details,
	}}
}
