package house

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/house/internal/article"
	"github.com/SergeyParamoshkin/house/internal/explorer"
	"github.com/SergeyParamoshkin/house/internal/ipfs"
	"github.com/SergeyParamoshkin/house/internal/model"
)

const etherscan = "https://goerli.etherscan.io/address/"

type fakeLoader struct {
	house *model.House

	mu   sync.Mutex
	seen []*big.Int
}

func (f *fakeLoader) Load(_ context.Context, tokenID *big.Int) *model.House {
	f.mu.Lock()
	f.seen = append(f.seen, tokenID)
	f.mu.Unlock()

	h := *f.house
	h.TokenID = tokenID

	return &h
}

func readyHouse() *model.House {
	return &model.House{
		TokenURI: "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		Metadata: &model.Metadata{
			Name:        "Sunset Villa",
			Description: "A house on chain",
			Image:       "https://ipfs.io/ipfs/QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/banner.png",
		},
		Owner:   &ownerAddr,
		Account: &accountAddr,
	}
}

func newTestRouter(t *testing.T, loader Loader, follow bool) http.Handler {
	t.Helper()

	resolver := ipfs.NewResolver()
	h, err := NewHandler(loader, HandlerConfig{
		TokenID:       big.NewInt(0),
		FollowRouteID: follow,
		Resolver:      resolver,
		Explorer:      explorer.New(etherscan),
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/house", h.PageRoutes())
	r.Mount("/api/houses", h.APIRoutes(article.NewAPI(resolver)))

	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestHousePage(t *testing.T) {
	rec := get(t, newTestRouter(t, &fakeLoader{house: readyHouse()}, false), "/house/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Sunset Villa")
	assert.Contains(t, body, "A house on chain")
	assert.Contains(t, body, `href="`+etherscan+ownerAddr.Hex()+`"`)
	assert.Contains(t, body, `href="`+etherscan+accountAddr.Hex()+`"`)
	assert.Contains(t, body, `href="/house/0/article/2"`)
	assert.Contains(t, body, "https://ipfs.io/ipfs/QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")
	assert.NotContains(t, body, "Loading...")

	for _, a := range article.All() {
		assert.Contains(t, body, a.Name)
	}
}

func TestHousePageLoadingWithoutMetadata(t *testing.T) {
	house := readyHouse()
	house.Metadata = nil

	rec := get(t, newTestRouter(t, &fakeLoader{house: house}, false), "/house/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Loading...")
	assert.Contains(t, rec.Body.String(), `http-equiv="refresh"`)
	assert.NotContains(t, rec.Body.String(), ownerAddr.Hex())
}

func TestHousePageLoadingWithoutID(t *testing.T) {
	loader := &fakeLoader{house: readyHouse()}

	rec := get(t, newTestRouter(t, loader, false), "/house")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Loading...")
	assert.Empty(t, loader.seen)
}

func TestHouseRoutesReadConfiguredToken(t *testing.T) {
	loader := &fakeLoader{house: readyHouse()}

	rec := get(t, newTestRouter(t, loader, false), "/house/whatever")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, loader.seen, 1)
	assert.Equal(t, int64(0), loader.seen[0].Int64())
}

func TestHouseRoutesFollowRouteID(t *testing.T) {
	loader := &fakeLoader{house: readyHouse()}
	router := newTestRouter(t, loader, true)

	rec := get(t, router, "/house/12")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, loader.seen, 1)
	assert.Equal(t, int64(12), loader.seen[0].Int64())

	rec = get(t, router, "/house/not-a-number")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, router, "/api/houses/-3")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestArticlePage(t *testing.T) {
	router := newTestRouter(t, &fakeLoader{house: readyHouse()}, false)

	rec := get(t, router, "/house/0/article/1")
	require.Equal(t, http.StatusOK, rec.Code)

	a, err := article.ByIndex(1)
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), a.Name)
	assert.Contains(t, rec.Body.String(), `href="/house/0"`)

	rec = get(t, router, "/house/0/article/42")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHouseJSON(t *testing.T) {
	rec := get(t, newTestRouter(t, &fakeLoader{house: readyHouse()}, false), "/api/houses/0")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		ID       string `json:"id"`
		TokenID  string `json:"tokenId"`
		TokenURI string `json:"tokenUri"`
		Loading  bool   `json:"loading"`
		Metadata struct {
			Name  string `json:"name"`
			Image string `json:"image"`
		} `json:"metadata"`
		Owner struct {
			Address     string `json:"address"`
			ExplorerURL string `json:"explorerUrl"`
		} `json:"owner"`
		HouseAddress struct {
			Address string `json:"address"`
		} `json:"houseAddress"`
		Articles []struct {
			Link string `json:"link"`
		} `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "0", got.ID)
	assert.Equal(t, "0", got.TokenID)
	assert.False(t, got.Loading)
	assert.Equal(t, "Sunset Villa", got.Metadata.Name)
	assert.Equal(t, ownerAddr.Hex(), got.Owner.Address)
	assert.Equal(t, etherscan+ownerAddr.Hex(), got.Owner.ExplorerURL)
	assert.Equal(t, accountAddr.Hex(), got.HouseAddress.Address)
	require.Len(t, got.Articles, len(article.All()))
	assert.Equal(t, "/house/0/article/0", got.Articles[0].Link)
}

func TestGetHouseJSONLoading(t *testing.T) {
	rec := get(t, newTestRouter(t, &fakeLoader{house: &model.House{}}, false), "/api/houses/0")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, true, got["loading"])
	assert.NotContains(t, got, "metadata")
	assert.NotContains(t, got, "owner")
	assert.NotContains(t, got, "houseAddress")
}

func TestHouseArticlesAPI(t *testing.T) {
	rec := get(t, newTestRouter(t, &fakeLoader{house: readyHouse()}, false), "/api/houses/0/articles/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"link":"/house/0/article/0"`)
}
