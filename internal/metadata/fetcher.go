package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/SergeyParamoshkin/house/internal/ipfs"
	"github.com/SergeyParamoshkin/house/internal/metrics"
	"github.com/SergeyParamoshkin/house/internal/model"
)

const maxBodySize = 1 << 20

var (
	ErrUnresolvable  = errors.New("uri does not resolve to any fetchable url")
	ErrEmptyDocument = errors.New("metadata document is null")
)

type cacheEntry struct {
	meta    model.Metadata
	expires time.Time
}

type Fetcher struct {
	client   *http.Client
	resolver *ipfs.Resolver
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics

	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	group   singleflight.Group

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type Option func(f *Fetcher)

// WithCacheTTL keeps successful results for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(f *Fetcher) { f.ttl = ttl }
}

// WithFetchTimeout bounds one shared fetch across all of its URLs.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(f *Fetcher) { f.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

func New(client *http.Client, resolver *ipfs.Resolver, opts ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}

	f := &Fetcher{
		client:   client,
		resolver: resolver,
		log:      zap.NewNop().Sugar(),
		now:      time.Now,
		cache:    map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch resolves uri and returns the first metadata document any of its
// URLs serves. The image field is rewritten to a fetchable URL.
//
// Concurrent callers share one fetch. It is detached from each caller's
// cancellation, so a caller that goes away only stops its own wait.
func (f *Fetcher) Fetch(ctx context.Context, uri string) (model.Metadata, error) {
	if meta, ok := f.cached(uri); ok {
		return meta, nil
	}

	if err := ctx.Err(); err != nil {
		return model.Metadata{}, fmt.Errorf("metadata.Fetch: %w", err)
	}

	ch := f.group.DoChan(uri, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		if f.timeout > 0 {
			var cancel context.CancelFunc
			shared, cancel = context.WithTimeout(shared, f.timeout)
			defer cancel()
		}

		started := time.Now()
		meta, err := f.fetch(shared, uri)
		f.metrics.MetadataFetch(shared, started, err)
		if err != nil {
			return nil, err
		}

		f.store(uri, meta)

		return meta, nil
	})

	select {
	case <-ctx.Done():
		return model.Metadata{}, fmt.Errorf("metadata.Fetch: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return model.Metadata{}, res.Err
		}

		return res.Val.(model.Metadata), nil
	}
}

func (f *Fetcher) fetch(ctx context.Context, uri string) (model.Metadata, error) {
	const op = "metadata.Fetch"

	urls := f.resolver.Purify(uri)
	if len(urls) == 0 {
		return model.Metadata{}, fmt.Errorf("%s: %q: %w", op, uri, ErrUnresolvable)
	}

	var errs error
	for _, u := range urls {
		meta, err := f.get(ctx, u)
		if err == nil {
			if img := f.resolver.First(meta.Image); img != "" {
				meta.Image = img
			}

			return meta, nil
		}

		f.log.Debugw("metadata url failed", "url", u, "err", err)
		errs = multierr.Append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return model.Metadata{}, fmt.Errorf("%s: %w", op, errs)
}

func (f *Fetcher) get(ctx context.Context, url string) (model.Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Metadata{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return model.Metadata{}, fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}

	var meta *model.Metadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&meta); err != nil {
		return model.Metadata{}, fmt.Errorf("decode %s: %w", url, err)
	}
	if meta == nil {
		return model.Metadata{}, fmt.Errorf("decode %s: %w", url, ErrEmptyDocument)
	}

	return *meta, nil
}

func (f *Fetcher) cached(uri string) (model.Metadata, bool) {
	if f.ttl <= 0 {
		return model.Metadata{}, false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	e, ok := f.cache[uri]
	if !ok || !f.now().Before(e.expires) {
		return model.Metadata{}, false
	}

	return e.meta, true
}

func (f *Fetcher) store(uri string, meta model.Metadata) {
	if f.ttl <= 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	for k, e := range f.cache {
		if !now.Before(e.expires) {
			delete(f.cache, k)
		}
	}
	f.cache[uri] = cacheEntry{meta: meta, expires: now.Add(f.ttl)}
}
