package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
)

func EncodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// DecodeUint64 reads a little endian u64. Empty input decodes to 0.
func DecodeUint64(b []byte) (uint64, error) {
	switch len(b) {
	case 0:
		return 0, nil
	case 8:
		return binary.LittleEndian.Uint64(b), nil
	default:
		return 0, fmt.Errorf("invalid uint64 length %d", len(b))
	}
}

func EncodeAgentID(a chain.AgentID) []byte {
	return a.Bytes()
}

func DecodeAgentID(b []byte) (chain.AgentID, error) {
	return chain.AgentIDFromBytes(b)
}

func EncodeHname(h chain.Hname) []byte {
	return h.Bytes()
}

func DecodeHname(b []byte) (chain.Hname, error) {
	if len(b) != 4 {
		return chain.HnameNil, fmt.Errorf("invalid hname length %d", len(b))
	}
	return chain.Hname(binary.LittleEndian.Uint32(b)), nil
}

func (a Args) SetUint64(key string, v uint64) Args {
	return a.Set(key, EncodeUint64(v))
}

// GetUint64 decodes the value under key; a missing key reads as 0.
func (a Args) GetUint64(key string) (uint64, error) {
	return DecodeUint64(a[key])
}

func (a Args) SetAgentID(key string, agent chain.AgentID) Args {
	return a.Set(key, EncodeAgentID(agent))
}
