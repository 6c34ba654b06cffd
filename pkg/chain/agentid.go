package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AgentIDKind tags the address type carried by an AgentID.
type AgentIDKind byte

const (
	AgentIDKindNil             AgentIDKind = 0
	AgentIDKindAddress         AgentIDKind = 1
	AgentIDKindEthereumAddress AgentIDKind = 3
)

// AgentID is an account owner on the chain, encoded as a kind byte followed
// by the raw address.
type AgentID struct {
	kind    AgentIDKind
	address []byte
}

// NewAddressAgentID wraps a 32 byte L1 address.
func NewAddressAgentID(address []byte) AgentID {
	return AgentID{kind: AgentIDKindAddress, address: append([]byte(nil), address...)}
}

// NewEthereumAgentID wraps a 20 byte Ethereum address.
func NewEthereumAgentID(address common.Address) AgentID {
	return AgentID{kind: AgentIDKindEthereumAddress, address: address.Bytes()}
}

// AgentIDFromBytes decodes the output of Bytes.
func AgentIDFromBytes(b []byte) (AgentID, error) {
	if len(b) == 0 {
		return AgentID{}, fmt.Errorf("empty agent id")
	}
	kind := AgentIDKind(b[0])
	switch kind {
	case AgentIDKindNil:
		return AgentID{}, nil
	case AgentIDKindAddress:
		if len(b) != 33 {
			return AgentID{}, fmt.Errorf("invalid address agent id length %d", len(b))
		}
	case AgentIDKindEthereumAddress:
		if len(b) != 1+common.AddressLength {
			return AgentID{}, fmt.Errorf("invalid ethereum agent id length %d", len(b))
		}
	default:
		return AgentID{}, fmt.Errorf("unknown agent id kind %d", kind)
	}
	return AgentID{kind: kind, address: append([]byte(nil), b[1:]...)}, nil
}

func (a AgentID) Kind() AgentIDKind {
	return a.kind
}

func (a AgentID) Address() []byte {
	return a.address
}

func (a AgentID) Bytes() []byte {
	return append([]byte{byte(a.kind)}, a.address...)
}

func (a AgentID) String() string {
	return hexutil.Encode(a.Bytes())
}
