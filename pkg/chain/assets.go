package chain

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// NativeTokenIDLength is the byte length of a native token identifier.
const NativeTokenIDLength = 38

// NativeTokenID identifies a non-base asset kind.
type NativeTokenID [NativeTokenIDLength]byte

// NativeToken is an amount of one asset kind.
type NativeToken struct {
	ID     NativeTokenID
	Amount *big.Int
}

// Assets is the allowance attached to a request: base tokens plus a set of
// native tokens with unique IDs.
type Assets struct {
	BaseTokens   uint64
	NativeTokens []NativeToken
}

// NewAssets returns an allowance holding only base tokens.
func NewAssets(baseTokens uint64) *Assets {
	return &Assets{BaseTokens: baseTokens}
}

// AddNativeTokens adds amount of id, merging with an existing entry.
func (a *Assets) AddNativeTokens(id NativeTokenID, amount *big.Int) *Assets {
	for i := range a.NativeTokens {
		if a.NativeTokens[i].ID == id {
			a.NativeTokens[i].Amount = new(big.Int).Add(a.NativeTokens[i].Amount, amount)
			return a
		}
	}
	a.NativeTokens = append(a.NativeTokens, NativeToken{ID: id, Amount: new(big.Int).Set(amount)})
	return a
}

func (a *Assets) IsEmpty() bool {
	if a == nil {
		return true
	}
	if a.BaseTokens != 0 {
		return false
	}
	for _, nt := range a.NativeTokens {
		if nt.Amount != nil && nt.Amount.Sign() != 0 {
			return false
		}
	}
	return true
}

// Canonical returns a copy with zero amounts removed and native tokens
// sorted by ID, so equal allowances encode to equal bytes.
func (a *Assets) Canonical() *Assets {
	if a == nil {
		return &Assets{}
	}
	out := &Assets{BaseTokens: a.BaseTokens}
	for _, nt := range a.NativeTokens {
		if nt.Amount == nil || nt.Amount.Sign() == 0 {
			continue
		}
		out.NativeTokens = append(out.NativeTokens, NativeToken{ID: nt.ID, Amount: new(big.Int).Set(nt.Amount)})
	}
	sort.Slice(out.NativeTokens, func(i, j int) bool {
		return bytes.Compare(out.NativeTokens[i].ID[:], out.NativeTokens[j].ID[:]) < 0
	})
	return out
}

func (a *Assets) Clone() *Assets {
	if a == nil {
		return nil
	}
	out := &Assets{BaseTokens: a.BaseTokens}
	for _, nt := range a.NativeTokens {
		amount := new(big.Int)
		if nt.Amount != nil {
			amount.Set(nt.Amount)
		}
		out.NativeTokens = append(out.NativeTokens, NativeToken{ID: nt.ID, Amount: amount})
	}
	return out
}

func (a *Assets) String() string {
	c := a.Canonical()
	var sb strings.Builder
	fmt.Fprintf(&sb, "base tokens: %d", c.BaseTokens)
	for _, nt := range c.NativeTokens {
		fmt.Fprintf(&sb, ", %x: %s", nt.ID[:], nt.Amount)
	}
	return sb.String()
}
