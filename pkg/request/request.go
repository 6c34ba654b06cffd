package request

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/codec"
	"github.com/DeBrosOfficial/chainclient/pkg/errors"
	"github.com/DeBrosOfficial/chainclient/pkg/identity"
)

// KindOffLedger prefixes the serialized form of an off-ledger request.
const KindOffLedger byte = 1

// GasBudgetMax is the default gas budget: no limit set by the client.
const GasBudgetMax = math.MaxUint64

// Signer produces signatures bound to a public key.
type Signer interface {
	PublicKeyBytes() ([]byte, error)
	Sign(data []byte) ([]byte, error)
}

// wireRequest is the RLP layout shared by the essence and the signed form.
type wireRequest struct {
	ChainID    []byte
	Contract   uint32
	EntryPoint uint32
	Args       []byte
	Nonce      uint64
	GasBudget  uint64
	Allowance  chain.Assets
	PublicKey  []byte
	Signature  []byte
}

// UnsignedRequest is an off-ledger request that has not been signed yet.
type UnsignedRequest struct {
	chainID    chain.ChainID
	contract   chain.Hname
	entryPoint chain.Hname
	args       codec.Args
	allowance  *chain.Assets
	nonce      uint64
	gasBudget  uint64
}

// New builds an unsigned request. nonce must be greater than any nonce
// previously used by the signing identity.
func New(chainID chain.ChainID, contract, entryPoint chain.Hname, args codec.Args, nonce uint64) *UnsignedRequest {
	if args == nil {
		args = codec.NewArgs()
	}
	return &UnsignedRequest{
		chainID:    chainID,
		contract:   contract,
		entryPoint: entryPoint,
		args:       args.Clone(),
		allowance:  chain.NewAssets(0),
		nonce:      nonce,
		gasBudget:  GasBudgetMax,
	}
}

// WithAllowance attaches the assets the request may move. nil clears it.
func (r *UnsignedRequest) WithAllowance(allowance *chain.Assets) *UnsignedRequest {
	if allowance == nil {
		r.allowance = chain.NewAssets(0)
		return r
	}
	r.allowance = allowance.Clone()
	return r
}

func (r *UnsignedRequest) WithGasBudget(gasBudget uint64) *UnsignedRequest {
	r.gasBudget = gasBudget
	return r
}

func (r *UnsignedRequest) Nonce() uint64 {
	return r.nonce
}

func (r *UnsignedRequest) wire(publicKey []byte) *wireRequest {
	return &wireRequest{
		ChainID:    r.chainID.Bytes(),
		Contract:   uint32(r.contract),
		EntryPoint: uint32(r.entryPoint),
		Args:       r.args.Bytes(),
		Nonce:      r.nonce,
		GasBudget:  r.gasBudget,
		Allowance:  *r.allowance.Canonical(),
		PublicKey:  publicKey,
	}
}

// Sign signs the request essence with signer. The essence covers every
// field including the nonce and the signer's public key.
func (r *UnsignedRequest) Sign(signer Signer) (*SignedRequest, error) {
	if signer == nil {
		return nil, errors.NewSigningError("no signer", errors.ErrInvalidInput)
	}
	pub, err := signer.PublicKeyBytes()
	if err != nil {
		return nil, errors.NewSigningError("failed to read public key", err)
	}

	w := r.wire(pub)
	essence, err := encode(w)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(essence)
	if err != nil {
		return nil, errors.NewSigningError("", err)
	}
	w.Signature = sig

	return newSignedRequest(w)
}

func encode(w *wireRequest) ([]byte, error) {
	body, err := rlp.EncodeToBytes(w)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode request", err).WithOperation("encode")
	}
	return append([]byte{KindOffLedger}, body...), nil
}

// SignedRequest is immutable once created.
type SignedRequest struct {
	wire    wireRequest
	chainID chain.ChainID
	bytes   []byte
	id      chain.RequestID
}

func newSignedRequest(w *wireRequest) (*SignedRequest, error) {
	chainID, err := chain.ChainIDFromBytes(w.ChainID)
	if err != nil {
		return nil, errors.NewValidationError("chainId", err.Error(), w.ChainID)
	}
	b, err := encode(w)
	if err != nil {
		return nil, err
	}
	return &SignedRequest{
		wire:    *w,
		chainID: chainID,
		bytes:   b,
		id:      chain.NewRequestID(b),
	}, nil
}

// FromBytes decodes a request produced by SignedRequest.Bytes.
func FromBytes(b []byte) (*SignedRequest, error) {
	if len(b) == 0 || b[0] != KindOffLedger {
		return nil, errors.NewValidationError("request", "not an off-ledger request", nil)
	}
	var w wireRequest
	if err := rlp.DecodeBytes(b[1:], &w); err != nil {
		return nil, errors.NewValidationError("request", fmt.Sprintf("malformed request: %v", err), nil)
	}
	if _, err := codec.ArgsFromBytes(w.Args); err != nil {
		return nil, errors.NewValidationError("request.args", err.Error(), nil)
	}
	return newSignedRequest(&w)
}

func (s *SignedRequest) ChainID() chain.ChainID {
	return s.chainID
}

func (s *SignedRequest) Contract() chain.Hname {
	return chain.Hname(s.wire.Contract)
}

func (s *SignedRequest) EntryPoint() chain.Hname {
	return chain.Hname(s.wire.EntryPoint)
}

func (s *SignedRequest) Nonce() uint64 {
	return s.wire.Nonce
}

func (s *SignedRequest) GasBudget() uint64 {
	return s.wire.GasBudget
}

func (s *SignedRequest) Args() codec.Args {
	args, err := codec.ArgsFromBytes(s.wire.Args)
	if err != nil {
		// validated on construction
		return codec.NewArgs()
	}
	return args
}

func (s *SignedRequest) Allowance() *chain.Assets {
	return s.wire.Allowance.Clone()
}

func (s *SignedRequest) PublicKey() []byte {
	return append([]byte(nil), s.wire.PublicKey...)
}

func (s *SignedRequest) Signature() []byte {
	return append([]byte(nil), s.wire.Signature...)
}

// Bytes returns the serialized signed request.
func (s *SignedRequest) Bytes() []byte {
	return append([]byte(nil), s.bytes...)
}

// Hex returns Bytes as the 0x-prefixed hex string posted to the node.
func (s *SignedRequest) Hex() string {
	return hexutil.Encode(s.bytes)
}

// ID is derived from Bytes only.
func (s *SignedRequest) ID() chain.RequestID {
	return s.id
}

// VerifySignature checks the signature against the embedded public key.
func (s *SignedRequest) VerifySignature() error {
	w := s.wire
	w.Signature = nil
	essence, err := encode(&w)
	if err != nil {
		return err
	}
	return identity.Verify(s.wire.PublicKey, essence, s.wire.Signature)
}
