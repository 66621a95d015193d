//
// HOUSE
// =====
// An HTTP service that renders an NFT "house" profile: the token's
// off-chain metadata, its owner, the token-bound account that acts as the
// house wallet, and the house articles.
//
// Also pass -routes to print the generated router docs:
// `go run . -routes`
//
// Boot the server:
// ----------------
// $ go run . -rpc_url https://rpc.ankr.com/eth_goerli
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/ping
// pong
//
// $ curl http://localhost:3333/house/0
// <!DOCTYPE html> ... Loading... (until the metadata resolves)
//
// $ curl http://localhost:3333/api/houses/0
// {"id":"0","tokenId":"0","loading":false,"metadata":{...},"owner":{...},...}
//
// $ curl http://localhost:3333/api/houses/0/articles/1
// {"index":1,"name":"How the house wallet works",...}
//
// $ curl 'http://localhost:3333/api/articles/search?tag=house'
// [{"index":0,...},{"index":2,...}]
//
// $ curl http://localhost:9999/metrics
//
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SergeyParamoshkin/house/internal/article"
	"github.com/SergeyParamoshkin/house/internal/chain"
	"github.com/SergeyParamoshkin/house/internal/config"
	"github.com/SergeyParamoshkin/house/internal/explorer"
	"github.com/SergeyParamoshkin/house/internal/house"
	"github.com/SergeyParamoshkin/house/internal/ipfs"
	"github.com/SergeyParamoshkin/house/internal/logger"
	"github.com/SergeyParamoshkin/house/internal/metadata"
	"github.com/SergeyParamoshkin/house/internal/metrics"
)

const ServiceName = "house"

const shutdownTimeout = 10 * time.Second

type App struct {
	sugarLogger *zap.SugaredLogger
	config      config.Config
	metrics     *metrics.Metrics
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zl, err := logger.New(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zl.Sync() // flushes buffer, if any

	a := App{
		sugarLogger: zl.Sugar(),
		config:      cfg,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx); err != nil {
		a.sugarLogger.Errorw("house stopped", "err", err)
		os.Exit(1)
	}
}

func (a *App) run(ctx context.Context) error {
	m, exporter, err := metrics.NewPrometheus(ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}
	a.metrics = m

	rpc, err := ethclient.DialContext(ctx, a.config.RPCURL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", a.config.RPCURL, err)
	}
	defer rpc.Close()

	r, err := a.router(rpc)
	if err != nil {
		return err
	}

	// Passing -routes to the program will generate docs for the above
	// router definition.
	if a.config.Routes {
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/house",
			Intro:       "Routes of the house profile service.",
		}))

		return nil
	}

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", exporter.ServeHTTP)
	diagRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range []*http.Server{
		{Addr: a.config.Addr, Handler: r},
		{Addr: a.config.DiagAddr, Handler: diagRouter},
	} {
		srv := srv
		g.Go(func() error {
			a.sugarLogger.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}

			return nil
		})
		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func (a *App) router(caller chain.Caller) (chi.Router, error) {
	cfg := a.config
	log := a.sugarLogger

	reader, err := chain.NewReader(caller,
		common.HexToAddress(cfg.NFTContract), common.HexToAddress(cfg.Registry), a.metrics)
	if err != nil {
		return nil, err
	}

	resolver := ipfs.NewResolver(cfg.Gateways...)
	fetcher := metadata.New(
		&http.Client{Timeout: cfg.FetchTimeout},
		resolver,
		metadata.WithCacheTTL(cfg.MetadataCacheTTL),
		metadata.WithFetchTimeout(cfg.LoadTimeout),
		metadata.WithLogger(log),
		metadata.WithMetrics(a.metrics),
	)

	svc := house.NewService(reader, fetcher, house.AccountConfig{
		Registry:       common.HexToAddress(cfg.Registry),
		Implementation: common.HexToAddress(cfg.Implementation),
		TokenContract:  common.HexToAddress(cfg.NFTContract),
		ChainID:        big.NewInt(cfg.ChainID),
		Salt:           big.NewInt(cfg.Salt),
		LocalFallback:  cfg.LocalAccountFallback,
	}, log)

	tokenID, _ := cfg.Token()
	houses, err := house.NewHandler(svc, house.HandlerConfig{
		TokenID:       tokenID,
		FollowRouteID: cfg.FollowRouteID,
		LoadTimeout:   cfg.LoadTimeout,
		Resolver:      resolver,
		Explorer:      explorer.New(cfg.ExplorerBaseURL),
	})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	articles := article.NewAPI(resolver)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(a.metrics.Middleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/house/"+tokenID.String(), http.StatusFound)
	})

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("pong")); err != nil {
			logger.FromContext(r.Context()).Errorw(err.Error())
		}
	})

	r.Mount("/house", houses.PageRoutes())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/houses", houses.APIRoutes(articles))
		r.Get("/articles/search", articles.SearchArticles) // GET /api/articles/search?tag=
	})

	FileServer(r, "/static", Static())

	return r, nil
}

func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit any URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, r)
	})
}

//go:embed static
var embededFiles embed.FS

func Static() http.FileSystem {
	fsys, err := fs.Sub(embededFiles, "static")
	if err != nil {
		panic(err)
	}

	return http.FS(fsys)
}
