package house

import (
	"context"
	"embed"
	"html/template"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/house/internal/article"
	"github.com/SergeyParamoshkin/house/internal/config"
	"github.com/SergeyParamoshkin/house/internal/errresponse"
	"github.com/SergeyParamoshkin/house/internal/explorer"
	"github.com/SergeyParamoshkin/house/internal/houseresponse"
	"github.com/SergeyParamoshkin/house/internal/ipfs"
	"github.com/SergeyParamoshkin/house/internal/logger"
	"github.com/SergeyParamoshkin/house/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

type Loader interface {
	Load(ctx context.Context, tokenID *big.Int) *model.House
}

type HandlerConfig struct {
	// TokenID is read for every house unless FollowRouteID is set.
	TokenID       *big.Int
	FollowRouteID bool
	LoadTimeout   time.Duration

	Resolver *ipfs.Resolver
	Explorer explorer.Explorer
}

type Handler struct {
	loader Loader
	cfg    HandlerConfig
	pages  *template.Template
}

type ctxKey int8

const ctxKeyTokenID ctxKey = iota

func NewHandler(loader Loader, cfg HandlerConfig) (*Handler, error) {
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	if cfg.TokenID == nil {
		cfg.TokenID = big.NewInt(0)
	}
	if cfg.Resolver == nil {
		cfg.Resolver = ipfs.NewResolver()
	}

	return &Handler{loader: loader, cfg: cfg, pages: pages}, nil
}

// PageRoutes is mounted at /house.
func (h *Handler) PageRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.LoadingPage)

	r.Route("/{houseID}", func(r chi.Router) {
		r.Use(h.HouseCtx)
		r.Get("/", h.HousePage)
		r.With(article.ArticleCtx).Get("/article/{articleIndex}", h.ArticlePage)
	})

	return r
}

// APIRoutes is mounted at /api/houses.
func (h *Handler) APIRoutes(articles *article.API) chi.Router {
	r := chi.NewRouter()

	r.Route("/{houseID}", func(r chi.Router) {
		r.Use(h.HouseCtx)
		r.Get("/", h.GetHouse)
		r.Mount("/articles", articles.Routes())
	})

	return r
}

// HouseCtx resolves which token a house route reads. Without
// FollowRouteID every id maps to the configured token.
func (h *Handler) HouseCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenID := h.cfg.TokenID

		if h.cfg.FollowRouteID {
			id, ok := config.ParseTokenID(chi.URLParam(r, "houseID"))
			if !ok {
				if err := render.Render(w, r, errresponse.ErrNotFound); err != nil {
					logger.FromContext(r.Context()).Errorw("render not found", "err", err)
				}

				return
			}
			tokenID = id
		}

		ctx := context.WithValue(r.Context(), ctxKeyTokenID, tokenID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenIDFromContext(ctx context.Context) *big.Int {
	id, _ := ctx.Value(ctxKeyTokenID).(*big.Int)
	return id
}

func (h *Handler) load(r *http.Request) *model.House {
	ctx := r.Context()
	if h.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.LoadTimeout)
		defer cancel()
	}

	return h.loader.Load(ctx, tokenIDFromContext(r.Context()))
}

func (h *Handler) GetHouse(w http.ResponseWriter, r *http.Request) {
	houseID := chi.URLParam(r, "houseID")
	resp := houseresponse.NewHouseResponse(houseID, h.load(r), article.All(), h.cfg.Resolver, h.cfg.Explorer)

	if err := render.Render(w, r, resp); err != nil {
		log := logger.FromContext(r.Context())
		log.Errorw("render house", "err", err)

		if err := render.Render(w, r, errresponse.ErrRender(err)); err != nil {
			log.Errorw(err.Error())
		}
	}
}
