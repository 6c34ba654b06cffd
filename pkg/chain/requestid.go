package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

// RequestIDLength is a 32 byte digest followed by a 2 byte output index.
const RequestIDLength = blake2b.Size256 + 2

// RequestID correlates a submitted request with its processing on the node.
type RequestID [RequestIDLength]byte

// NewRequestID derives the ID of an off-ledger request from its signed bytes.
func NewRequestID(signed []byte) RequestID {
	var id RequestID
	digest := blake2b.Sum256(signed)
	copy(id[:], digest[:])
	binary.LittleEndian.PutUint16(id[blake2b.Size256:], 0)
	return id
}

// RequestIDFromHex parses the 0x-prefixed form produced by String.
func RequestIDFromHex(s string) (RequestID, error) {
	var id RequestID
	b, err := hexutil.Decode(s)
	if err != nil {
		return id, fmt.Errorf("invalid request id %q: %w", s, err)
	}
	if len(b) != RequestIDLength {
		return id, fmt.Errorf("invalid request id %q: expected %d bytes, got %d", s, RequestIDLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id RequestID) Bytes() []byte {
	return id[:]
}

// OutputIndex is always 0 for off-ledger requests.
func (id RequestID) OutputIndex() uint16 {
	return binary.LittleEndian.Uint16(id[blake2b.Size256:])
}

func (id RequestID) String() string {
	return hexutil.Encode(id[:])
}

func (id RequestID) IsZero() bool {
	return id == RequestID{}
}
