package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/SergeyParamoshkin/house/internal/metrics"
)

var (
	ErrEmptyResult      = errors.New("contract returned no data")
	ErrUnexpectedOutput = errors.New("unexpected contract output")
)

// Caller is the eth_call half of bind.ContractCaller. *ethclient.Client
// satisfies it.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// AccountQuery is the argument list of the ERC-6551 registry account call.
type AccountQuery struct {
	Implementation common.Address
	ChainID        *big.Int
	TokenContract  common.Address
	TokenID        *big.Int
	Salt           *big.Int
}

type Reader struct {
	caller   Caller
	nft      common.Address
	registry common.Address

	nftABI      abi.ABI
	registryABI abi.ABI

	metrics *metrics.Metrics
}

func NewReader(caller Caller, nft, registry common.Address, m *metrics.Metrics) (*Reader, error) {
	const op = "chain.NewReader"

	nftABI, err := abi.JSON(strings.NewReader(nftABIJSON))
	if err != nil {
		return nil, fmt.Errorf("%s: nft abi: %w", op, err)
	}

	registryABI, err := abi.JSON(strings.NewReader(registryABIJSON))
	if err != nil {
		return nil, fmt.Errorf("%s: registry abi: %w", op, err)
	}

	return &Reader{
		caller:      caller,
		nft:         nft,
		registry:    registry,
		nftABI:      nftABI,
		registryABI: registryABI,
		metrics:     m,
	}, nil
}

func (r *Reader) NFT() common.Address      { return r.nft }
func (r *Reader) Registry() common.Address { return r.registry }

func (r *Reader) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	const op = "chain.TokenURI"

	out, err := r.call(ctx, r.nft, r.nftABI, FuncTokenURI, tokenID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uri, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("%s: %w: %T", op, ErrUnexpectedOutput, out[0])
	}

	return uri, nil
}

func (r *Reader) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	const op = "chain.OwnerOf"

	out, err := r.call(ctx, r.nft, r.nftABI, FuncOwnerOf, tokenID)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", op, err)
	}

	owner, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: %w: %T", op, ErrUnexpectedOutput, out[0])
	}

	return owner, nil
}

func (r *Reader) Account(ctx context.Context, q AccountQuery) (common.Address, error) {
	const op = "chain.Account"

	out, err := r.call(ctx, r.registry, r.registryABI, FuncAccount,
		q.Implementation, q.ChainID, q.TokenContract, q.TokenID, q.Salt)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", op, err)
	}

	account, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: %w: %T", op, ErrUnexpectedOutput, out[0])
	}

	return account, nil
}

// call packs method(args...), runs eth_call against the latest block and
// unpacks a single return value.
func (r *Reader) call(ctx context.Context, to common.Address, contract abi.ABI, method string, args ...interface{}) (out []interface{}, err error) {
	defer func() { r.metrics.ContractCall(ctx, method, err) }()

	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	raw, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), err)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("call %s on %s: %w", method, to.Hex(), ErrEmptyResult)
	}

	out, err = contract.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}

	if len(out) != 1 {
		return nil, fmt.Errorf("unpack %s: %w: %d values", method, ErrUnexpectedOutput, len(out))
	}

	return out, nil
}
