// Package tba derives ERC-6551 token-bound account addresses without a
// registry round trip.
package tba

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/SergeyParamoshkin/house/internal/chain"
)

// ERC-1167 style proxy around the implementation, as deployed by the v0.2
// registry.
var (
	proxyPrefix = common.FromHex("3d60ad80600a3d3981f3363d3d373d3d3d363d73")
	proxySuffix = common.FromHex("5af43d82803e903d91602b57fd5bf3")
)

// CreationCode is the init code the registry deploys for q.
func CreationCode(q chain.AccountQuery) []byte {
	code := make([]byte, 0, len(proxyPrefix)+common.AddressLength+len(proxySuffix)+4*32)
	code = append(code, proxyPrefix...)
	code = append(code, q.Implementation.Bytes()...)
	code = append(code, proxySuffix...)
	code = append(code, word(q.Salt)...)
	code = append(code, word(q.ChainID)...)
	code = append(code, common.LeftPadBytes(q.TokenContract.Bytes(), 32)...)
	code = append(code, word(q.TokenID)...)

	return code
}

// Derive returns the CREATE2 address the registry at registry would report
// for q.
func Derive(registry common.Address, q chain.AccountQuery) common.Address {
	var salt [32]byte
	copy(salt[:], word(q.Salt))

	return crypto.CreateAddress2(registry, salt, crypto.Keccak256(CreationCode(q)))
}

func word(x *big.Int) []byte {
	if x == nil {
		return make([]byte, 32)
	}

	return math.U256Bytes(new(big.Int).Set(x))
}
