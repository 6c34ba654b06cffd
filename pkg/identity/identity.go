package identity

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/errors"
)

// Scheme names a supported signature scheme.
type Scheme string

const (
	SchemeEd25519   Scheme = "ed25519"
	SchemeSecp256k1 Scheme = "secp256k1"
)

// ParseScheme accepts the config spelling of a scheme. Empty means ed25519.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeEd25519:
		return SchemeEd25519, nil
	case SchemeSecp256k1:
		return SchemeSecp256k1, nil
	default:
		return "", errors.NewValidationError("identity.scheme", fmt.Sprintf("unsupported scheme %q", s), s)
	}
}

// Identity is a key pair plus the address derived from it. The private key
// never leaves the value.
type Identity struct {
	priv    crypto.PrivKey
	pub     crypto.PubKey
	scheme  Scheme
	address []byte
	agent   chain.AgentID
	key     string
}

// Generate creates a fresh identity for the given scheme.
func Generate(scheme Scheme) (*Identity, error) {
	var keyType int
	switch scheme {
	case "", SchemeEd25519:
		keyType = crypto.Ed25519
	case SchemeSecp256k1:
		keyType = crypto.Secp256k1
	default:
		return nil, errors.NewValidationError("scheme", fmt.Sprintf("unsupported scheme %q", scheme), scheme)
	}

	priv, _, err := crypto.GenerateKeyPairWithReader(keyType, 2048, rand.Reader)
	if err != nil {
		return nil, errors.NewSigningError("failed to generate key pair", err)
	}
	return FromPrivateKey(priv)
}

// NewMnemonic returns a fresh 24 word mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// FromMnemonic derives an ed25519 identity from a BIP-39 mnemonic. The same
// mnemonic and passphrase always yield the same identity.
func FromMnemonic(mnemonic, passphrase string) (*Identity, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, errors.NewValidationError("mnemonic", err.Error(), nil)
	}
	priv, _, err := crypto.GenerateEd25519Key(bytes.NewReader(seed[:32]))
	if err != nil {
		return nil, errors.NewSigningError("failed to derive key from mnemonic", err)
	}
	return FromPrivateKey(priv)
}

// FromPrivateKey wraps an existing libp2p private key.
func FromPrivateKey(priv crypto.PrivKey) (*Identity, error) {
	pub := priv.GetPublic()
	raw, err := pub.Raw()
	if err != nil {
		return nil, errors.NewSigningError("failed to read public key", err)
	}

	id := &Identity{priv: priv, pub: pub, key: hexutil.Encode(raw)}
	switch priv.Type() {
	case crypto.Ed25519:
		digest := blake2b.Sum256(raw)
		id.scheme = SchemeEd25519
		id.address = digest[:]
		id.agent = chain.NewAddressAgentID(id.address)
	case crypto.Secp256k1:
		ecdsaPub, err := ethcrypto.DecompressPubkey(raw)
		if err != nil {
			return nil, errors.NewSigningError("failed to decompress secp256k1 key", err)
		}
		addr := ethcrypto.PubkeyToAddress(*ecdsaPub)
		id.scheme = SchemeSecp256k1
		id.address = addr.Bytes()
		id.agent = chain.NewEthereumAgentID(addr)
	default:
		return nil, errors.NewSigningError(fmt.Sprintf("unsupported key type %s", priv.Type()), nil)
	}
	return id, nil
}

func (id *Identity) Scheme() Scheme {
	return id.scheme
}

// Address is the account address derived from the public key.
func (id *Identity) Address() []byte {
	return append([]byte(nil), id.address...)
}

func (id *Identity) AgentID() chain.AgentID {
	return id.agent
}

// Key identifies the identity in the nonce cache: the hex raw public key.
func (id *Identity) Key() string {
	return id.key
}

func (id *Identity) PublicKey() crypto.PubKey {
	return id.pub
}

// PublicKeyBytes returns the typed, serialized public key embedded in
// signed requests.
func (id *Identity) PublicKeyBytes() ([]byte, error) {
	b, err := crypto.MarshalPublicKey(id.pub)
	if err != nil {
		return nil, errors.NewSigningError("failed to marshal public key", err)
	}
	return b, nil
}

// Sign signs data with the private key. Both schemes sign deterministically.
func (id *Identity) Sign(data []byte) ([]byte, error) {
	sig, err := id.priv.Sign(data)
	if err != nil {
		return nil, errors.NewSigningError("", err)
	}
	return sig, nil
}

func (id *Identity) String() string {
	return fmt.Sprintf("%s:%s", id.scheme, hexutil.Encode(id.address))
}

// Verify checks sig over data against a public key produced by PublicKeyBytes.
func Verify(publicKey, data, sig []byte) error {
	pub, err := crypto.UnmarshalPublicKey(publicKey)
	if err != nil {
		return errors.NewSigningError("invalid public key", err)
	}
	ok, err := pub.Verify(data, sig)
	if err != nil {
		return errors.NewSigningError("signature verification failed", err)
	}
	if !ok {
		return errors.NewSigningError("invalid signature", nil)
	}
	return nil
}

// Save writes the private key to path with owner-only permissions.
func (id *Identity) Save(path string) error {
	data, err := crypto.MarshalPrivateKey(id.priv)
	if err != nil {
		return errors.NewSigningError("failed to marshal private key", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Load reads an identity saved by Save.
func Load(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	priv, err := crypto.UnmarshalPrivateKey(data)
	if err != nil {
		return nil, errors.NewSigningError(fmt.Sprintf("invalid key file %s", path), err)
	}
	return FromPrivateKey(priv)
}
