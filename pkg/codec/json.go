package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// JSONItem is one key/value pair with both sides hex encoded.
type JSONItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// JSONDict is the JSON form of Args exchanged with the node.
type JSONDict struct {
	Items []JSONItem `json:"Items"`
}

// ToJSONDict converts args to their JSON form, items in key order.
func (a Args) ToJSONDict() JSONDict {
	dict := JSONDict{Items: make([]JSONItem, 0, len(a))}
	for _, k := range a.Keys() {
		dict.Items = append(dict.Items, JSONItem{
			Key:   hexutil.Encode([]byte(k)),
			Value: hexutil.Encode(a[k]),
		})
	}
	return dict
}

// ArgsFromJSONDict converts the JSON form back to args.
func ArgsFromJSONDict(dict JSONDict) (Args, error) {
	out := NewArgs()
	for i, item := range dict.Items {
		key, err := hexutil.Decode(item.Key)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid key %q: %w", i, item.Key, err)
		}
		value, err := decodeHexValue(item.Value)
		if err != nil {
			return nil, fmt.Errorf("item %d: invalid value: %w", i, err)
		}
		if _, dup := out[string(key)]; dup {
			return nil, fmt.Errorf("item %d: duplicate key %q", i, key)
		}
		out[string(key)] = value
	}
	return out, nil
}

// hexutil.Decode rejects "0x" for empty values, which the node sends.
func decodeHexValue(s string) ([]byte, error) {
	if s == "0x" || s == "" {
		return []byte{}, nil
	}
	return hexutil.Decode(s)
}

type resultEnvelope struct {
	Result json.RawMessage `json:"result"`
	Items  []JSONItem      `json:"Items"`
}

// DecodeResult decodes a successful view call body. Accepted shapes:
//
//	{"result":"0x<args bytes>"}
//	{"result":{"Items":[...]}}
//	{"Items":[...]}
func DecodeResult(body []byte) (Args, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("decode result: empty body")
	}

	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	raw := bytes.TrimSpace(env.Result)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return ArgsFromJSONDict(JSONDict{Items: env.Items})
	case raw[0] == '"':
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		b, err := decodeHexValue(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		return ArgsFromBytes(b)
	case raw[0] == '{':
		var dict JSONDict
		if err := json.Unmarshal(raw, &dict); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		return ArgsFromJSONDict(dict)
	default:
		return nil, fmt.Errorf("decode result: unexpected result %s", raw)
	}
}
