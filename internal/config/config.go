package config

import (
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

const EnvPrefix = "HOUSE"

type Config struct {
	Addr     string `hcl:"addr" env:"ADDR" flag:"addr" default:":3333" usage:"application port"`
	DiagAddr string `hcl:"diag_addr" env:"DIAG_ADDR" flag:"diag_addr" default:":9999" usage:"diag port"`
	Routes   bool   `hcl:"routes" env:"ROUTES" flag:"routes" default:"false" usage:"Generate router documentation"`
	Debug    bool   `hcl:"debug" env:"DEBUG" flag:"debug" default:"false" usage:"development logger"`

	RPCURL         string `hcl:"rpc_url" env:"RPC_URL" flag:"rpc_url" default:"https://rpc.ankr.com/eth_goerli" usage:"ethereum JSON-RPC endpoint"`
	ChainID        int64  `hcl:"chain_id" env:"CHAIN_ID" flag:"chain_id" default:"5"`
	NFTContract    string `hcl:"nft_contract" env:"NFT_CONTRACT" flag:"nft_contract" default:"0x9dfef6f53783c7185c69f45a51bede2c32e4ac3e"`
	Registry       string `hcl:"registry" env:"REGISTRY" flag:"registry" default:"0x02101dfB77FDE026414827Fdc604ddAF224F0921"`
	Implementation string `hcl:"implementation" env:"IMPLEMENTATION" flag:"implementation" default:"0xf999F659c5Ab90E42E466B367BB56e8BD56cE524"`
	Salt           int64  `hcl:"salt" env:"SALT" flag:"salt" default:"6551"`

	TokenID              string `hcl:"token_id" env:"TOKEN_ID" flag:"token_id" default:"0" usage:"token shown on every house page"`
	FollowRouteID        bool   `hcl:"follow_route_id" env:"FOLLOW_ROUTE_ID" flag:"follow_route_id" default:"false" usage:"use the route id as token id"`
	LocalAccountFallback bool   `hcl:"local_account_fallback" env:"LOCAL_ACCOUNT_FALLBACK" flag:"local_account_fallback" default:"true"`

	Gateways         []string      `hcl:"gateways" env:"GATEWAYS" flag:"gateways" default:"https://ipfs.io"`
	ExplorerBaseURL  string        `hcl:"explorer_base_url" env:"EXPLORER_BASE_URL" flag:"explorer_base_url" default:"https://goerli.etherscan.io/address/"`
	LoadTimeout      time.Duration `hcl:"load_timeout" env:"LOAD_TIMEOUT" flag:"load_timeout" default:"10s"`
	FetchTimeout     time.Duration `hcl:"fetch_timeout" env:"FETCH_TIMEOUT" flag:"fetch_timeout" default:"5s"`
	MetadataCacheTTL time.Duration `hcl:"metadata_cache_ttl" env:"METADATA_CACHE_TTL" flag:"metadata_cache_ttl" default:"10m"`
}

// Load reads defaults, then house.hcl files, then HOUSE_* env, then args.
func Load(args []string) (Config, error) {
	var cfg Config

	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: EnvPrefix,
		Args:      expandBoolFlags(args),
		Files:     []string{"./house.hcl", "./house.local.hcl"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// expandBoolFlags rewrites a bare bool flag such as -routes to -routes=true,
// so bool fields behave like flag.Bool.
func expandBoolFlags(args []string) []string {
	bools := boolFlagNames()

	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}

		name := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
		if strings.HasPrefix(arg, "-") && lo.Contains(bools, name) {
			arg = "-" + name + "=true"
		}
		out = append(out, arg)
	}

	return out
}

func boolFlagNames() []string {
	t := reflect.TypeOf(Config{})

	var names []string
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Type.Kind() == reflect.Bool {
			names = append(names, f.Tag.Get("flag"))
		}
	}

	return names
}

func (c Config) Validate() error {
	for name, addr := range map[string]string{
		"nft_contract":   c.NFTContract,
		"registry":       c.Registry,
		"implementation": c.Implementation,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("config: %s %q is not a hex address", name, addr)
		}
	}

	if _, ok := c.Token(); !ok {
		return fmt.Errorf("config: token_id %q is not a decimal uint256", c.TokenID)
	}

	if len(c.Gateways) == 0 {
		return errors.New("config: at least one gateway is required")
	}

	for _, gw := range c.Gateways {
		u, err := url.Parse(gw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: gateway %q is not an http(s) URL", gw)
		}
	}

	return nil
}

// Token parses TokenID.
func (c Config) Token() (*big.Int, bool) {
	return ParseTokenID(c.TokenID)
}

// ParseTokenID accepts a decimal string in the uint256 range.
func ParseTokenID(s string) (*big.Int, bool) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 || id.BitLen() > 256 {
		return nil, false
	}

	return id, true
}
