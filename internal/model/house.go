package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// House is everything the profile view knows about one token. Each field
// is filled independently, a nil field means its read has not succeeded.
type House struct {
	TokenID  *big.Int
	TokenURI string
	Metadata *Metadata
	Owner    *common.Address
	Account  *common.Address
}

// Ready reports whether the profile can leave its loading state.
func (h *House) Ready() bool {
	return h != nil && h.Metadata != nil
}
