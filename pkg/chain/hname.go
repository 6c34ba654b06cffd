package chain

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// Hname is the hashed form of a contract or function name used on the wire.
type Hname uint32

// HnameNil is reserved and never produced by HnameFromName.
const HnameNil = Hname(0)

// HnameFromName hashes a human-readable name. The first four bytes of the
// blake2b-256 digest are read little endian; the reserved values 0 and
// 0xffffffff are skipped by moving to the next four bytes.
func HnameFromName(name string) Hname {
	digest := blake2b.Sum256([]byte(name))
	for i := 0; i+4 <= len(digest); i += 4 {
		h := Hname(binary.LittleEndian.Uint32(digest[i : i+4]))
		if h != HnameNil && h != ^Hname(0) {
			return h
		}
	}
	return Hname(1)
}

// HnameFromString parses the 8 hex digit form produced by String.
func HnameFromString(s string) (Hname, error) {
	if len(s) != 8 {
		return HnameNil, fmt.Errorf("invalid hname %q: expected 8 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return HnameNil, fmt.Errorf("invalid hname %q: %w", s, err)
	}
	return Hname(v), nil
}

func (h Hname) Bytes() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(h))
	return b
}

func (h Hname) String() string {
	return fmt.Sprintf("%08x", uint32(h))
}

// Core contract identifiers used by the client itself.
var (
	CoreAccounts        = HnameFromName("accounts")
	ViewGetAccountNonce = HnameFromName("getAccountNonce")
)

// Parameter and result keys of accounts.getAccountNonce.
const (
	ParamAgentID      = "a"
	ParamAccountNonce = "n"
)
