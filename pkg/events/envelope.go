package events

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope kinds pushed by the node.
const (
	KindNewBlock = "new_block"
	KindReceipt  = "receipt"
	KindContract = "contract"
	KindError    = "error"
)

// payloadSeparator splits a payload item into contract ID and event data.
const payloadSeparator = ": "

// Envelope is one message from the node event feed.
type Envelope struct {
	Kind      string   `json:"kind"`
	Issuer    string   `json:"issuer"`
	RequestID string   `json:"requestID"`
	ChainID   string   `json:"chainID"`
	Payload   []string `json:"payload"`
}

// rawEnvelope detects missing fields, which make a message malformed.
type rawEnvelope struct {
	Kind      *string   `json:"kind"`
	Issuer    *string   `json:"issuer"`
	RequestID *string   `json:"requestID"`
	ChainID   *string   `json:"chainID"`
	Payload   *[]string `json:"payload"`
}

// ParseEnvelope decodes a feed message. Every field must be present.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}

	var missing []string
	if raw.Kind == nil {
		missing = append(missing, "kind")
	}
	if raw.Issuer == nil {
		missing = append(missing, "issuer")
	}
	if raw.RequestID == nil {
		missing = append(missing, "requestID")
	}
	if raw.ChainID == nil {
		missing = append(missing, "chainID")
	}
	if raw.Payload == nil {
		missing = append(missing, "payload")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("malformed envelope: missing %s", strings.Join(missing, ", "))
	}

	return &Envelope{
		Kind:      *raw.Kind,
		Issuer:    *raw.Issuer,
		RequestID: *raw.RequestID,
		ChainID:   *raw.ChainID,
		Payload:   *raw.Payload,
	}, nil
}

// ContractEvent is one decoded payload item.
type ContractEvent struct {
	ChainID    string
	ContractID string
	Data       string
}

// SplitPayloadItem splits item at the first ": ". Items without the
// separator are rejected.
func SplitPayloadItem(chainID, item string) (ContractEvent, bool) {
	contractID, data, ok := strings.Cut(item, payloadSeparator)
	if !ok {
		return ContractEvent{}, false
	}
	return ContractEvent{ChainID: chainID, ContractID: contractID, Data: data}, true
}

// ContractEvents decodes every payload item of env in order and reports how
// many items were dropped.
func (env *Envelope) ContractEvents() ([]ContractEvent, int) {
	out := make([]ContractEvent, 0, len(env.Payload))
	dropped := 0
	for _, item := range env.Payload {
		evt, ok := SplitPayloadItem(env.ChainID, item)
		if !ok {
			dropped++
			continue
		}
		out = append(out, evt)
	}
	return out, dropped
}
