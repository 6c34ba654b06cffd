package codec

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
)

// Args maps argument keys to encoded values. Keys are unique and order is
// irrelevant; Bytes always encodes in key order.
type Args map[string][]byte

type kv struct {
	Key   []byte
	Value []byte
}

// NewArgs returns an empty argument set.
func NewArgs() Args {
	return make(Args)
}

func (a Args) Set(key string, value []byte) Args {
	a[key] = value
	return a
}

func (a Args) Get(key string) ([]byte, bool) {
	v, ok := a[key]
	return v, ok
}

// MustGet returns the value under key or an error naming the missing key.
func (a Args) MustGet(key string) ([]byte, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("missing key %q", key)
	}
	return v, nil
}

// Keys returns the keys in ascending byte order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

func (a Args) Equal(other Args) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		ov, ok := other[k]
		if !ok || !bytes.Equal(v, ov) {
			return false
		}
	}
	return true
}

// Bytes returns the canonical encoding: an RLP list of key/value pairs
// sorted by key.
func (a Args) Bytes() []byte {
	pairs := make([]kv, 0, len(a))
	for _, k := range a.Keys() {
		pairs = append(pairs, kv{Key: []byte(k), Value: a[k]})
	}
	b, err := rlp.EncodeToBytes(pairs)
	if err != nil {
		// byte slices always encode
		panic(fmt.Sprintf("codec: encode args: %v", err))
	}
	return b
}

// ArgsFromBytes decodes the output of Args.Bytes. Empty input is an empty set.
func ArgsFromBytes(b []byte) (Args, error) {
	out := NewArgs()
	if len(b) == 0 {
		return out, nil
	}
	var pairs []kv
	if err := rlp.DecodeBytes(b, &pairs); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	for _, p := range pairs {
		key := string(p.Key)
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("decode args: duplicate key %q", key)
		}
		out[key] = p.Value
	}
	return out, nil
}
