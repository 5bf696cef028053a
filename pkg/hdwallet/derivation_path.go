package hdwallet

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// DerivationPath is the binary form of a BIP44 derivation path.
type DerivationPath []uint32

// AddressDerivationPath returns m/44'/283'/account'/0/keyIndex.
func AddressDerivationPath(account, keyIndex uint32) DerivationPath {
	return DerivationPath{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 283,
		hdkeychain.HardenedKeyStart + account,
		0,
		keyIndex,
	}
}

// ParseDerivationPath converts a derivation path string, for example
// "m/44'/283'/0'/0/0", to its binary form.
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	if strings.TrimSpace(strPath) == "" {
		return nil, ErrNullDerivationPath
	}

	elems := strings.Split(strPath, "/")
	if strings.TrimSpace(elems[0]) != "m" {
		return nil, ErrInvalidDerivationPath
	}
	elems = elems[1:]
	if len(elems) == 0 {
		return nil, ErrMalformedDerivationPath
	}

	path := make(DerivationPath, 0, len(elems))
	for _, elem := range elems {
		elem = strings.TrimSpace(elem)
		if elem == "" {
			return nil, ErrMalformedDerivationPath
		}

		var value uint32
		if strings.HasSuffix(elem, "'") {
			value = hdkeychain.HardenedKeyStart
			elem = strings.TrimSpace(strings.TrimSuffix(elem, "'"))
		}

		bigval, ok := new(big.Int).SetString(elem, 0)
		if !ok {
			return nil, fmt.Errorf("invalid elem '%s' in path", elem)
		}

		max := math.MaxUint32 - value
		if bigval.Sign() < 0 || bigval.Cmp(big.NewInt(int64(max))) > 0 {
			if value == 0 {
				return nil, fmt.Errorf("elem %v must be in range [0, %d]", bigval, max)
			}
			return nil, fmt.Errorf("elem %v must be in hardened range [0, %d]", bigval, max)
		}
		path = append(path, value+uint32(bigval.Uint64()))
	}

	return path, nil
}

// String returns the canonical form of the path, hardened elems marked
// with a trailing "'".
func (path DerivationPath) String() string {
	if len(path) <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("m")
	for _, elem := range path {
		if elem >= hdkeychain.HardenedKeyStart {
			fmt.Fprintf(&b, "/%d'", elem-hdkeychain.HardenedKeyStart)
			continue
		}
		fmt.Fprintf(&b, "/%d", elem)
	}
	return b.String()
}
