package domain

import "encoding/json"

// ParseOptions accepts an options mapping either as a JSON object or as a string holding one.
// Anything malformed yields an empty mapping.
func ParseOptions(raw json.RawMessage) map[string]interface{} {
	out := map[string]interface{}{}
	if len(raw) == 0 {
		return out
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed == nil {
		return out
	}
	return parsed
}
