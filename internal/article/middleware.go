package article

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/house/internal/errresponse"
	"github.com/SergeyParamoshkin/house/internal/logger"
	"github.com/SergeyParamoshkin/house/internal/model"
)

type ctxKey int8

const ctxKeyArticle ctxKey = iota

// ArticleCtx middleware is used to load an Article object from
// the URL parameters passed through as the request. In case
// the Article could not be found, we stop here and return a 404.
func ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		article, err := articleFromRequest(r)
		if err != nil {
			if err := render.Render(w, r, errresponse.ErrNotFound); err != nil {
				logger.FromContext(r.Context()).Errorw("render not found", "err", err)
			}

			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), article)))
	})
}

func articleFromRequest(r *http.Request) (*model.Article, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "articleIndex"))
	if err != nil {
		return nil, ErrNotFound
	}

	return ByIndex(index)
}

func NewContext(ctx context.Context, a *model.Article) context.Context {
	return context.WithValue(ctx, ctxKeyArticle, a)
}

// FromContext returns the article ArticleCtx loaded, if any.
func FromContext(ctx context.Context) (*model.Article, bool) {
	a, ok := ctx.Value(ctxKeyArticle).(*model.Article)
	return a, ok && a != nil
}
