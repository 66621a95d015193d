package house

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SergeyParamoshkin/house/internal/chain"
	"github.com/SergeyParamoshkin/house/internal/model"
	"github.com/SergeyParamoshkin/house/internal/tba"
)

type ChainReader interface {
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
	Account(ctx context.Context, q chain.AccountQuery) (common.Address, error)
}

type MetadataFetcher interface {
	Fetch(ctx context.Context, uri string) (model.Metadata, error)
}

// AccountConfig fixes every registry argument except the token id.
type AccountConfig struct {
	Registry       common.Address
	Implementation common.Address
	TokenContract  common.Address
	ChainID        *big.Int
	Salt           *big.Int

	// LocalFallback derives the account offline when the registry read fails.
	LocalFallback bool
}

type Service struct {
	reader  ChainReader
	fetcher MetadataFetcher
	account AccountConfig
	log     *zap.SugaredLogger
}

func NewService(reader ChainReader, fetcher MetadataFetcher, account AccountConfig, log *zap.SugaredLogger) *Service {
	return &Service{
		reader:  reader,
		fetcher: fetcher,
		account: account,
		log:     log,
	}
}

// Load runs the three reads for tokenID concurrently. A failed read is
// logged and leaves its field nil, it never affects the other reads.
func (s *Service) Load(ctx context.Context, tokenID *big.Int) *model.House {
	h := &model.House{TokenID: new(big.Int).Set(tokenID)}
	log := s.log.With("tokenId", tokenID.String())

	var g errgroup.Group

	g.Go(func() error {
		uri, err := s.reader.TokenURI(ctx, tokenID)
		if err != nil {
			log.Errorw("failed to read token uri", "err", err)
			return nil
		}
		h.TokenURI = uri

		meta, err := s.fetcher.Fetch(ctx, uri)
		if err != nil {
			log.Errorw("failed to fetch publication", "uri", uri, "err", err)
			return nil
		}
		h.Metadata = &meta

		return nil
	})

	g.Go(func() error {
		owner, err := s.reader.OwnerOf(ctx, tokenID)
		if err != nil {
			log.Errorw("failed to read owner", "err", err)
			return nil
		}
		h.Owner = &owner

		return nil
	})

	g.Go(func() error {
		account, err := s.houseAccount(ctx, tokenID)
		if err != nil {
			log.Errorw("failed to read house address", "err", err)
			return nil
		}
		h.Account = &account

		return nil
	})

	_ = g.Wait()

	return h
}

func (s *Service) houseAccount(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	q := chain.AccountQuery{
		Implementation: s.account.Implementation,
		ChainID:        s.account.ChainID,
		TokenContract:  s.account.TokenContract,
		TokenID:        tokenID,
		Salt:           s.account.Salt,
	}

	account, err := s.reader.Account(ctx, q)
	if err == nil || !s.account.LocalFallback {
		return account, err
	}

	derived := tba.Derive(s.account.Registry, q)
	s.log.Warnw("registry read failed, using derived house address",
		"tokenId", tokenID.String(), "address", derived.Hex(), "err", err)

	return derived, nil
}
