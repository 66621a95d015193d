package house

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/SergeyParamoshkin/house/internal/chain"
	"github.com/SergeyParamoshkin/house/internal/model"
	"github.com/SergeyParamoshkin/house/internal/tba"
)

var (
	ownerAddr   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	accountAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")

	accountCfg = AccountConfig{
		Registry:       common.HexToAddress("0x02101dfB77FDE026414827Fdc604ddAF224F0921"),
		Implementation: common.HexToAddress("0xf999F659c5Ab90E42E466B367BB56e8BD56cE524"),
		TokenContract:  common.HexToAddress("0x9dfef6f53783c7185c69f45a51bede2c32e4ac3e"),
		ChainID:        big.NewInt(5),
		Salt:           big.NewInt(6551),
	}
)

type fakeReader struct {
	uri        string
	uriErr     error
	ownerErr   error
	accountErr error

	mu      sync.Mutex
	queries []chain.AccountQuery
}

func (f *fakeReader) TokenURI(_ context.Context, _ *big.Int) (string, error) {
	return f.uri, f.uriErr
}

func (f *fakeReader) OwnerOf(_ context.Context, _ *big.Int) (common.Address, error) {
	return ownerAddr, f.ownerErr
}

func (f *fakeReader) Account(_ context.Context, q chain.AccountQuery) (common.Address, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	return accountAddr, f.accountErr
}

type fakeFetcher struct {
	meta model.Metadata
	err  error
	got  string
}

func (f *fakeFetcher) Fetch(_ context.Context, uri string) (model.Metadata, error) {
	f.got = uri
	return f.meta, f.err
}

func TestLoadAllReadsSucceed(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader := &fakeReader{uri: "ipfs://house/0.json"}
	fetcher := &fakeFetcher{meta: model.Metadata{Name: "Sunset Villa"}}

	s := NewService(reader, fetcher, accountCfg, zaptest.NewLogger(t).Sugar())
	h := s.Load(context.Background(), big.NewInt(0))

	require.True(t, h.Ready())
	assert.Equal(t, "Sunset Villa", h.Metadata.Name)
	assert.Equal(t, "ipfs://house/0.json", h.TokenURI)
	assert.Equal(t, "ipfs://house/0.json", fetcher.got)
	assert.Equal(t, ownerAddr, *h.Owner)
	assert.Equal(t, accountAddr, *h.Account)

	require.Len(t, reader.queries, 1)
	q := reader.queries[0]
	assert.Equal(t, accountCfg.Implementation, q.Implementation)
	assert.Equal(t, accountCfg.TokenContract, q.TokenContract)
	assert.Equal(t, int64(5), q.ChainID.Int64())
	assert.Equal(t, int64(6551), q.Salt.Int64())
	assert.Equal(t, int64(0), q.TokenID.Int64())
}

func TestLoadFailuresAreIndependent(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader := &fakeReader{uri: "ipfs://house/0.json", ownerErr: errors.New("reverted")}
	fetcher := &fakeFetcher{err: errors.New("gateway timeout")}

	h := NewService(reader, fetcher, accountCfg, zaptest.NewLogger(t).Sugar()).
		Load(context.Background(), big.NewInt(0))

	assert.False(t, h.Ready())
	assert.Nil(t, h.Metadata)
	assert.Nil(t, h.Owner)
	assert.Equal(t, "ipfs://house/0.json", h.TokenURI)
	require.NotNil(t, h.Account)
	assert.Equal(t, accountAddr, *h.Account)
}

func TestLoadSkipsFetchWithoutTokenURI(t *testing.T) {
	reader := &fakeReader{uriErr: errors.New("nonexistent token")}
	fetcher := &fakeFetcher{}

	h := NewService(reader, fetcher, accountCfg, zaptest.NewLogger(t).Sugar()).
		Load(context.Background(), big.NewInt(9))

	assert.False(t, h.Ready())
	assert.Empty(t, fetcher.got)
	assert.Equal(t, int64(9), h.TokenID.Int64())
}

func TestLoadAccountFallback(t *testing.T) {
	reader := &fakeReader{accountErr: errors.New("rpc down")}

	cfg := accountCfg
	cfg.LocalFallback = true

	h := NewService(reader, &fakeFetcher{}, cfg, zaptest.NewLogger(t).Sugar()).
		Load(context.Background(), big.NewInt(0))

	require.NotNil(t, h.Account)
	want := tba.Derive(cfg.Registry, chain.AccountQuery{
		Implementation: cfg.Implementation,
		ChainID:        cfg.ChainID,
		TokenContract:  cfg.TokenContract,
		TokenID:        big.NewInt(0),
		Salt:           cfg.Salt,
	})
	assert.Equal(t, want, *h.Account)
}

func TestLoadAccountWithoutFallback(t *testing.T) {
	reader := &fakeReader{accountErr: errors.New("rpc down")}

	h := NewService(reader, &fakeFetcher{}, accountCfg, zaptest.NewLogger(t).Sugar()).
		Load(context.Background(), big.NewInt(0))

	assert.Nil(t, h.Account)
}

func TestLoadDoesNotAliasTokenID(t *testing.T) {
	id := big.NewInt(3)

	h := NewService(&fakeReader{}, &fakeFetcher{}, accountCfg, zaptest.NewLogger(t).Sugar()).
		Load(context.Background(), id)
	id.SetInt64(4)

	assert.Equal(t, int64(3), h.TokenID.Int64())
}
