// Package ipfs turns content-addressed URIs into fetchable HTTP URLs.
package ipfs

import (
	"net/url"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/samber/lo"
)

const (
	DefaultGateway = "https://ipfs.io"
	ArweaveGateway = "https://arweave.net"
)

type Resolver struct {
	gateways []string
}

// NewResolver keeps gateways in the given order. With none given it
// falls back to DefaultGateway.
func NewResolver(gateways ...string) *Resolver {
	gws := lo.Uniq(lo.FilterMap(gateways, func(gw string, _ int) (string, bool) {
		gw = strings.TrimRight(strings.TrimSpace(gw), "/")
		return gw, gw != ""
	}))
	if len(gws) == 0 {
		gws = []string{DefaultGateway}
	}

	return &Resolver{gateways: gws}
}

func (r *Resolver) Gateways() []string {
	return append([]string(nil), r.gateways...)
}

// Purify returns zero or more HTTP(S) URLs for uri, most preferred first.
func (r *Resolver) Purify(uri string) []string {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}

	lower := strings.ToLower(uri)
	switch {
	case strings.HasPrefix(lower, "ipfs://"):
		rest := strings.TrimLeft(uri[len("ipfs://"):], "/")
		if strings.HasPrefix(strings.ToLower(rest), "ipfs/") {
			rest = rest[len("ipfs/"):]
		}
		return r.viaGateways("ipfs", rest)
	case strings.HasPrefix(lower, "ipns://"):
		return r.viaGateways("ipns", strings.TrimLeft(uri[len("ipns://"):], "/"))
	case strings.HasPrefix(lower, "ar://"):
		tx := strings.TrimLeft(uri[len("ar://"):], "/")
		if tx == "" {
			return nil
		}
		return []string{ArweaveGateway + "/" + tx}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return r.fromHTTP(uri)
	case strings.HasPrefix(lower, "/ipfs/"), strings.HasPrefix(lower, "ipfs/"):
		return r.viaGateways("ipfs", strings.TrimPrefix(uri, "/")[len("ipfs/"):])
	}

	if isCIDPath(uri) {
		return r.viaGateways("ipfs", uri)
	}

	return nil
}

// First is Purify(uri)[0], or "" when nothing resolves.
func (r *Resolver) First(uri string) string {
	if urls := r.Purify(uri); len(urls) > 0 {
		return urls[0]
	}

	return ""
}

func (r *Resolver) viaGateways(namespace, rest string) []string {
	if rest == "" {
		return nil
	}

	return lo.Map(r.gateways, func(gw string, _ int) string {
		return gw + "/" + namespace + "/" + rest
	})
}

// fromHTTP keeps the URL as is. Gateway URLs also get the configured
// gateways as alternatives.
func (r *Resolver) fromHTTP(raw string) []string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}

	out := []string{raw}
	if strings.HasPrefix(u.Path, "/ipfs/") && isCIDPath(u.Path[len("/ipfs/"):]) {
		rest := u.Path[len("/ipfs/"):]
		if u.RawQuery != "" {
			rest += "?" + u.RawQuery
		}
		out = append(out, r.viaGateways("ipfs", rest)...)
	}

	return lo.Uniq(out)
}

// isCIDPath reports whether p starts with a valid CID segment.
func isCIDPath(p string) bool {
	root := p
	if i := strings.IndexAny(p, "/?#"); i >= 0 {
		root = p[:i]
	}
	if root == "" {
		return false
	}

	_, err := cid.Decode(root)
	return err == nil
}
