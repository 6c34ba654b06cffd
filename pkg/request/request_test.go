package request

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/codec"
	"github.com/DeBrosOfficial/chainclient/pkg/errors"
	"github.com/DeBrosOfficial/chainclient/pkg/identity"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

var (
	testChainID  = chain.ChainID{1, 2, 3}
	testContract = chain.HnameFromName("inccounter")
	testFunction = chain.HnameFromName("increment")
)

func testIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.FromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	return id
}

func baseRequest() *UnsignedRequest {
	args := codec.NewArgs().SetUint64("counter", 1)
	return New(testChainID, testContract, testFunction, args, 7).
		WithAllowance(chain.NewAssets(100))
}

func TestSignIsDeterministic(t *testing.T) {
	id := testIdentity(t)

	a, err := baseRequest().Sign(id)
	require.NoError(t, err)
	b, err := baseRequest().Sign(id)
	require.NoError(t, err)

	assert.Equal(t, a.Bytes(), b.Bytes())
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, chain.NewRequestID(a.Bytes()), a.ID())
}

func TestAnyFieldChangeChangesID(t *testing.T) {
	id := testIdentity(t)
	base, err := baseRequest().Sign(id)
	require.NoError(t, err)

	var token chain.NativeTokenID
	token[0] = 9

	variants := map[string]*UnsignedRequest{
		"nonce": New(testChainID, testContract, testFunction,
			codec.NewArgs().SetUint64("counter", 1), 8).WithAllowance(chain.NewAssets(100)),
		"argument": New(testChainID, testContract, testFunction,
			codec.NewArgs().SetUint64("counter", 2), 7).WithAllowance(chain.NewAssets(100)),
		"allowance": baseRequest().WithAllowance(chain.NewAssets(101)),
		"native token": baseRequest().WithAllowance(
			chain.NewAssets(100).AddNativeTokens(token, big.NewInt(1))),
		"function": New(testChainID, testContract, chain.HnameFromName("decrement"),
			codec.NewArgs().SetUint64("counter", 1), 7).WithAllowance(chain.NewAssets(100)),
		"gas budget": baseRequest().WithGasBudget(1000),
	}

	for name, req := range variants {
		t.Run(name, func(t *testing.T) {
			signed, err := req.Sign(id)
			require.NoError(t, err)
			assert.NotEqual(t, base.ID(), signed.ID())
		})
	}
}

func TestArgumentOrderDoesNotChangeID(t *testing.T) {
	id := testIdentity(t)
	a := codec.NewArgs().Set("x", []byte{1}).Set("y", []byte{2})
	b := codec.NewArgs().Set("y", []byte{2}).Set("x", []byte{1})

	sa, err := New(testChainID, testContract, testFunction, a, 1).Sign(id)
	require.NoError(t, err)
	sb, err := New(testChainID, testContract, testFunction, b, 1).Sign(id)
	require.NoError(t, err)
	assert.Equal(t, sa.ID(), sb.ID())
}

func TestFromBytesRoundTrip(t *testing.T) {
	id := testIdentity(t)
	signed, err := baseRequest().Sign(id)
	require.NoError(t, err)

	decoded, err := FromBytes(signed.Bytes())
	require.NoError(t, err)

	assert.Equal(t, signed.ID(), decoded.ID())
	assert.Equal(t, testChainID, decoded.ChainID())
	assert.Equal(t, testContract, decoded.Contract())
	assert.Equal(t, testFunction, decoded.EntryPoint())
	assert.Equal(t, uint64(7), decoded.Nonce())
	assert.Equal(t, uint64(GasBudgetMax), decoded.GasBudget())
	assert.Equal(t, uint64(100), decoded.Allowance().BaseTokens)

	counter, err := decoded.Args().GetUint64("counter")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), counter)

	assert.NoError(t, decoded.VerifySignature())
	assert.Equal(t, "0x", signed.Hex()[:2])
}

func TestVerifySignatureDetectsTampering(t *testing.T) {
	id := testIdentity(t)
	signed, err := baseRequest().Sign(id)
	require.NoError(t, err)
	require.NoError(t, signed.VerifySignature())

	tampered := *signed
	tampered.wire.Nonce++
	err = tampered.VerifySignature()
	assert.True(t, errors.IsSigning(err))
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	for _, b := range [][]byte{nil, {0x00}, {KindOffLedger, 0xff}} {
		_, err := FromBytes(b)
		assert.True(t, errors.IsValidation(err), "%x", b)
	}
}

type failingSigner struct{}

func (failingSigner) PublicKeyBytes() ([]byte, error) { return []byte{1}, nil }
func (failingSigner) Sign([]byte) ([]byte, error)     { return nil, fmt.Errorf("hsm offline") }

func TestSignFailureIsSigningError(t *testing.T) {
	_, err := baseRequest().Sign(failingSigner{})
	require.Error(t, err)
	assert.True(t, errors.IsSigning(err))
	assert.Contains(t, err.Error(), "hsm offline")

	_, err = baseRequest().Sign(nil)
	assert.True(t, errors.IsSigning(err))
}

func TestNewCopiesArgs(t *testing.T) {
	args := codec.NewArgs().SetUint64("counter", 1)
	req := New(testChainID, testContract, testFunction, args, 1)
	args.SetUint64("counter", 2)

	signed, err := req.Sign(testIdentity(t))
	require.NoError(t, err)
	v, err := signed.Args().GetUint64("counter")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}
