package article

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/house/internal/articleresponse"
	"github.com/SergeyParamoshkin/house/internal/errresponse"
	"github.com/SergeyParamoshkin/house/internal/ipfs"
	"github.com/SergeyParamoshkin/house/internal/logger"
)

type API struct {
	resolver *ipfs.Resolver
}

func NewAPI(resolver *ipfs.Resolver) *API {
	return &API{resolver: resolver}
}

// Routes mounts under a house, e.g. /api/houses/{houseID}/articles.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.ListArticles)
	r.With(ArticleCtx).Get("/{articleIndex}", a.GetArticle)

	return r
}

func (a *API) ListArticles(w http.ResponseWriter, r *http.Request) {
	list := articleresponse.NewArticleListResponse(All(), chi.URLParam(r, "houseID"), a.resolver)
	if err := render.RenderList(w, r, list); err != nil {
		a.renderErr(w, r, err)
	}
}

// GetArticle expects ArticleCtx to have loaded the article. If it did not
// the Recoverer will save us.
func (a *API) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, _ := FromContext(r.Context())

	resp := articleresponse.NewArticleResponse(article, chi.URLParam(r, "houseID"), a.resolver)
	if err := render.Render(w, r, resp); err != nil {
		a.renderErr(w, r, err)
	}
}

// SearchArticles filters by ?tag=. Links point at ?house= when given.
func (a *API) SearchArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	list := articleresponse.NewArticleListResponse(ByTag(q.Get("tag")), q.Get("house"), a.resolver)
	if err := render.RenderList(w, r, list); err != nil {
		a.renderErr(w, r, err)
	}
}

func (a *API) renderErr(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Errorw("render articles", "err", err)

	if err := render.Render(w, r, errresponse.ErrRender(err)); err != nil {
		log.Errorw(err.Error())
	}
}
