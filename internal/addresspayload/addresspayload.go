package addresspayload

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SergeyParamoshkin/house/internal/explorer"
)

// AddressPayload is an on-chain address plus where to look at it.
type AddressPayload struct {
	Address     string `json:"address"`
	ExplorerURL string `json:"explorerUrl"`
}

// NewAddressPayload returns nil for a nil address so the field is omitted.
func NewAddressPayload(addr *common.Address, e explorer.Explorer) *AddressPayload {
	if addr == nil {
		return nil
	}

	return &AddressPayload{
		Address:     addr.Hex(),
		ExplorerURL: e.AddressURL(addr.Hex()),
	}
}

func (a *AddressPayload) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
