package store

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
)

// maxPayloadDepth is the JSON nesting ceiling (spec §4.3): any object/array
// nesting deeper than this is rejected regardless of size.
const maxPayloadDepth = 100

// validatePayloadSize rejects data larger than limit with PAYLOAD_TOO_LARGE.
func validatePayloadSize(data []byte, limit int64) error {
	if int64(len(data)) > limit {
		return storeerr.New(storeerr.PayloadTooLarge, "payload exceeds the configured size limit")
	}
	return nil
}

// validateJSONDepth walks raw as a JSON token stream and rejects nesting
// deeper than maxPayloadDepth with PAYLOAD_TOO_DEEP. Plain-text payloads
// are not JSON and are accepted without depth-checking, per §4.3.
func validateJSONDepth(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// Not valid JSON: treat as an opaque plain-text payload.
			return nil
		}
		delim, ok := tok.(json.Delim)
		if !ok {
			continue
		}
		switch delim {
		case '{', '[':
			depth++
			if depth > maxPayloadDepth {
				return storeerr.New(storeerr.PayloadTooDeep, "payload nesting exceeds the maximum depth")
			}
		case '}', ']':
			depth--
		}
	}
}
