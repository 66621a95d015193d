package articleresponse

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/samber/lo"

	"github.com/SergeyParamoshkin/house/internal/ipfs"
	"github.com/SergeyParamoshkin/house/internal/model"
)

// ArticleResponse is the response payload for the Article data model.
//
// Image keeps the stored URI, ImageURL is what a browser can load.
type ArticleResponse struct {
	*model.Article

	ImageURL string `json:"imageUrl"`
	Link     string `json:"link,omitempty"`
}

func NewArticleListResponse(articles []*model.Article, houseID string, resolver *ipfs.Resolver) []render.Renderer {
	return lo.Map(articles, func(a *model.Article, _ int) render.Renderer {
		return NewArticleResponse(a, houseID, resolver)
	})
}

func NewArticleResponse(article *model.Article, houseID string, resolver *ipfs.Resolver) *ArticleResponse {
	return &ArticleResponse{
		Article:  article,
		ImageURL: resolver.First(article.Image),
		Link:     Link(houseID, article.Index),
	}
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Link is the page of article index under house houseID, "" without a house.
func Link(houseID string, index int) string {
	if houseID == "" {
		return ""
	}

	return "/house/" + houseID + "/article/" + strconv.Itoa(index)
}
