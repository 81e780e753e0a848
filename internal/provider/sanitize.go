package provider

import "encoding/json"

// stripContextManagement deletes a top-level "context_management" field
// from an Anthropic request body when present. This is a compatibility
// shim for upstreams that reject accounts lacking a preview entitlement;
// every other field is preserved unchanged.
//
// On any decode failure the body is passed through unmodified — the
// sanitizer is best-effort and must never block a request the upstream
// itself would otherwise accept or reject on its own terms.
func stripContextManagement(body []byte) ([]byte, bool) {
	if len(body) == 0 {
		return body, false
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return body, false
	}

	if _, ok := doc["context_management"]; !ok {
		return body, false
	}

	delete(doc, "context_management")
	out, err := json.Marshal(doc)
	if err != nil {
		return body, false
	}
	return out, true
}
