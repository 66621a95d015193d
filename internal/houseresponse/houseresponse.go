package houseresponse

import (
	"net/http"

	"github.com/samber/lo"

	"github.com/SergeyParamoshkin/house/internal/addresspayload"
	"github.com/SergeyParamoshkin/house/internal/articleresponse"
	"github.com/SergeyParamoshkin/house/internal/explorer"
	"github.com/SergeyParamoshkin/house/internal/ipfs"
	"github.com/SergeyParamoshkin/house/internal/model"
)

// HouseResponse is the profile view, shared by the JSON API and the page.
type HouseResponse struct {
	ID       string `json:"id"`
	TokenID  string `json:"tokenId"`
	TokenURI string `json:"tokenUri,omitempty"`

	// Loading mirrors the page placeholder: true until metadata arrives.
	Loading  bool            `json:"loading"`
	Metadata *model.Metadata `json:"metadata,omitempty"`

	Owner        *addresspayload.AddressPayload `json:"owner,omitempty"`
	HouseAddress *addresspayload.AddressPayload `json:"houseAddress,omitempty"`

	Articles []*articleresponse.ArticleResponse `json:"articles"`
}

func NewHouseResponse(
	id string,
	house *model.House,
	articles []*model.Article,
	resolver *ipfs.Resolver,
	e explorer.Explorer,
) *HouseResponse {
	resp := &HouseResponse{
		ID:       id,
		TokenID:  house.TokenID.String(),
		TokenURI: house.TokenURI,
		Loading:  !house.Ready(),
		Metadata: house.Metadata,

		Owner:        addresspayload.NewAddressPayload(house.Owner, e),
		HouseAddress: addresspayload.NewAddressPayload(house.Account, e),

		Articles: lo.Map(articles, func(a *model.Article, _ int) *articleresponse.ArticleResponse {
			return articleresponse.NewArticleResponse(a, id, resolver)
		}),
	}

	return resp
}

func (rd *HouseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	rd.Loading = rd.Metadata == nil

	return nil
}
