package api

import "encoding/json"

// envelope covers the wrapper shapes the upstream API has been observed to
// use around collections.
type envelope struct {
	Data     json.RawMessage `json:"data"`
	Items    json.RawMessage `json:"items"`
	Cart     json.RawMessage `json:"cart"`
	Products json.RawMessage `json:"products"`
}

// ExtractList unwraps a collection from a response payload and decodes it
// into out (a pointer to a slice). The server is not consistent about the
// envelope, so the candidates are tried in a fixed precedence order:
//
//	data, items, cart, products, then the bare payload itself.
//
// A wrapper field may itself be wrapped (data.items and the like); nesting is
// followed recursively. The return value reports whether a collection was
// recognized at all; out is left empty otherwise.
func ExtractList(raw json.RawMessage, out interface{}) bool {
	emptyList(out)

	payload := trimmed(raw)
	if len(payload) == 0 {
		return false
	}

	if payload[0] == '[' {
		return json.Unmarshal(payload, out) == nil
	}
	if payload[0] != '{' {
		return false
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return false
	}
	for _, candidate := range []json.RawMessage{env.Data, env.Items, env.Cart, env.Products} {
		inner := trimmed(candidate)
		if len(inner) == 0 || string(inner) == "null" {
			continue
		}
		if inner[0] == '[' {
			if json.Unmarshal(inner, out) == nil {
				return true
			}
			emptyList(out)
			return false
		}
		if inner[0] == '{' {
			return ExtractList(inner, out)
		}
	}
	return false
}

func emptyList(out interface{}) {
	_ = json.Unmarshal([]byte("[]"), out)
}

func trimmed(raw json.RawMessage) []byte {
	start := 0
	for start < len(raw) {
		switch raw[start] {
		case ' ', '\t', '\n', '\r':
			start++
		default:
			return raw[start:]
		}
	}
	return nil
}
