package house

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/house/internal/article"
	"github.com/SergeyParamoshkin/house/internal/articleresponse"
	"github.com/SergeyParamoshkin/house/internal/houseresponse"
	"github.com/SergeyParamoshkin/house/internal/logger"
)

// loadingRefresh is how often the placeholder reloads itself, in seconds.
const loadingRefresh = 5

type loadingPage struct {
	Refresh int
}

type articlePage struct {
	HouseID string
	*articleresponse.ArticleResponse
}

// LoadingPage is what a house without an id renders.
func (h *Handler) LoadingPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "loading", loadingPage{Refresh: loadingRefresh})
}

func (h *Handler) HousePage(w http.ResponseWriter, r *http.Request) {
	houseID := chi.URLParam(r, "houseID")
	house := h.load(r)

	if !house.Ready() {
		h.LoadingPage(w, r)
		return
	}

	h.renderPage(w, r, "house",
		houseresponse.NewHouseResponse(houseID, house, article.All(), h.cfg.Resolver, h.cfg.Explorer))
}

// ArticlePage expects ArticleCtx to have loaded the article.
func (h *Handler) ArticlePage(w http.ResponseWriter, r *http.Request) {
	houseID := chi.URLParam(r, "houseID")
	a, _ := article.FromContext(r.Context())

	h.renderPage(w, r, "article", articlePage{
		HouseID:         houseID,
		ArticleResponse: articleresponse.NewArticleResponse(a, houseID, h.cfg.Resolver),
	})
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		logger.FromContext(r.Context()).Errorw("render page", "page", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Errorw("write page", "page", name, "err", err)
	}
}
