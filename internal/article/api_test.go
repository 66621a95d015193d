package article

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/house/internal/ipfs"
)

type articleJSON struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Image    string   `json:"image"`
	ImageURL string   `json:"imageUrl"`
	Link     string   `json:"link"`
	Tags     []string `json:"tags"`
}

func newRouter() http.Handler {
	api := NewAPI(ipfs.NewResolver("https://gw.example.org"))

	r := chi.NewRouter()
	r.Mount("/api/houses/{houseID}/articles", api.Routes())
	r.Get("/api/articles/search", api.SearchArticles)

	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestListArticles(t *testing.T) {
	rec := get(t, newRouter(), "/api/houses/0/articles")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []articleJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, len(articles))

	assert.Equal(t, "/house/0/article/1", got[1].Link)
	assert.Equal(t, "https://gw.example.org/ipfs/bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", got[1].ImageURL)
	assert.Equal(t, articles[1].Image, got[1].Image)
}

func TestGetArticle(t *testing.T) {
	rec := get(t, newRouter(), "/api/houses/3/articles/2")
	require.Equal(t, http.StatusOK, rec.Code)

	var got articleJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Index)
	assert.Equal(t, articles[2].Name, got.Name)
	assert.Equal(t, "/house/3/article/2", got.Link)
}

func TestGetArticleNotFound(t *testing.T) {
	for _, path := range []string{
		"/api/houses/0/articles/99",
		"/api/houses/0/articles/-1",
		"/api/houses/0/articles/first",
	} {
		rec := get(t, newRouter(), path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"status":"Resource not found."}`, rec.Body.String(), path)
	}
}

func TestSearchArticles(t *testing.T) {
	rec := get(t, newRouter(), "/api/articles/search?tag=wallet")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []articleJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Index)
	assert.Empty(t, got[0].Link)

	rec = get(t, newRouter(), "/api/articles/search?tag=house&house=5")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "/house/5/article/0", got[0].Link)
}
