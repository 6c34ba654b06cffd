package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ChainIDLength is the byte length of a chain identifier.
const ChainIDLength = 32

// ChainID identifies one ledger instance on the node.
type ChainID [ChainIDLength]byte

// ChainIDFromHex parses a 0x-prefixed hex chain identifier.
func ChainIDFromHex(s string) (ChainID, error) {
	var id ChainID
	b, err := hexutil.Decode(s)
	if err != nil {
		return id, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	if len(b) != ChainIDLength {
		return id, fmt.Errorf("invalid chain id %q: expected %d bytes, got %d", s, ChainIDLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ChainIDFromBytes copies b into a ChainID.
func ChainIDFromBytes(b []byte) (ChainID, error) {
	var id ChainID
	if len(b) != ChainIDLength {
		return id, fmt.Errorf("invalid chain id: expected %d bytes, got %d", ChainIDLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id ChainID) Bytes() []byte {
	return id[:]
}

func (id ChainID) String() string {
	return hexutil.Encode(id[:])
}

func (id ChainID) IsZero() bool {
	return id == ChainID{}
}

func (id ChainID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ChainID) UnmarshalText(text []byte) error {
	parsed, err := ChainIDFromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
