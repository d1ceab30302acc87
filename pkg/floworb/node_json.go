package floworb

import (
	"encoding/json"
	"fmt"
)

type nodeJSON struct {
	ID       string          `json:"id"`
	Kind     Kind            `json:"kind"`
	Label    string          `json:"label"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the envelope with the payload under "data".
func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:       n.ID,
		Kind:     n.Kind,
		Label:    n.Label,
		Position: n.Position,
	}
	if n.Data != nil {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", n.Kind, err)
		}
		out.Data = data
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the envelope and picks the payload type from "kind".
func (n *Node) UnmarshalJSON(b []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	payload, err := DecodePayload(in.Kind, in.Data)
	if err != nil {
		return err
	}
	*n = Node{
		ID:       in.ID,
		Kind:     in.Kind,
		Label:    in.Label,
		Position: in.Position,
		Data:     payload,
	}
	return nil
}

// DecodePayload decodes raw JSON into the payload type for kind.
// Empty input yields the zero payload.
func DecodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	payload, err := NewPayload(kind)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return payload, nil
	}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return payload, nil
}
