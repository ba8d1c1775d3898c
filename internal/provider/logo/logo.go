// Package logo finds token logo URLs in provider payloads, which name the
// field differently from endpoint to endpoint.
package logo

import "encoding/json"

// Keys are tried in order.
var Keys = []string{"logo_uri", "logoUrl", "logoURI", "logo_url", "logo"}

// Find returns the first non-empty string among Keys in the JSON object
// data. Non-object input is an error; a missing logo is "".
func Find(data []byte) (string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", err
	}
	return FirstString(raw, Keys), nil
}

// FirstString returns the first key of raw holding a non-empty string.
func FirstString(raw map[string]json.RawMessage, keys []string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
