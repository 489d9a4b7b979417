package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgen/pkg/cache"
	"github.com/matzehuels/cellgen/pkg/pipeline"
	"github.com/matzehuels/cellgen/pkg/server"
	"github.com/matzehuels/cellgen/pkg/storage"
)

const defaultAddr = ":8080"

// serveOpts holds the backend selection for the serve command.
type serveOpts struct {
	addr     string
	redisURL string // cache backend; file cache when empty
	mongoURI string // layout archive; see storeDir otherwise
	storeDir string // file archive; in-memory archive when empty
	prefix   string // cache key scope
	noCache  bool
	timeout  time.Duration
}

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultAddr, timeout: server.DefaultTimeout}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP routing API",
		Long: `Run the HTTP routing API.

Routed layouts are cached in Redis when --redis is given and in the local
cache directory otherwise. Archived layouts go to MongoDB (--mongo), a
directory (--store-dir) or process memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the layout cache (redis://host:6379/0)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for the layout archive")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "directory for the layout archive")
	cmd.Flags().StringVar(&opts.prefix, "key-prefix", "", "prefix for cache keys, to share one Redis between deployments")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	cc, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	store, err := c.serveStore(ctx, opts)
	if err != nil {
		cc.Close()
		return err
	}

	var keyer cache.Keyer
	if opts.prefix != "" {
		keyer = cache.NewScopedKeyer(nil, opts.prefix)
	}
	runner := pipeline.NewRunner(cc, keyer, logger)
	runner.Store = store
	defer runner.Close(context.Background())

	srv := server.New(server.Config{Runner: runner, Logger: logger, Timeout: opts.timeout})
	printSuccess("Serving on %s", StyleLink.Render("http://"+displayAddr(opts.addr)))
	return srv.ListenAndServe(ctx, opts.addr)
}

func (c *CLI) serveCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	switch {
	case opts.noCache:
		return cache.NewNullCache(), nil
	case opts.redisURL != "":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: opts.redisURL})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		printDetail("Cache: redis")
		return rc, nil
	}
	cc, err := newCache(false)
	if err != nil {
		return nil, err
	}
	if fc, ok := cc.(*cache.FileCache); ok {
		printDetail("Cache: %s", fc.Dir())
	}
	return cc, nil
}

func (c *CLI) serveStore(ctx context.Context, opts serveOpts) (storage.Store, error) {
	switch {
	case opts.mongoURI != "":
		ms, err := storage.NewMongoStore(ctx, storage.MongoConfig{URI: opts.mongoURI})
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		printDetail("Archive: mongodb")
		return ms, nil
	case opts.storeDir != "":
		store, err := storage.NewFileStore(opts.storeDir)
		if err != nil {
			return nil, err
		}
		printDetail("Archive: %s", store.Dir())
		return store, nil
	}
	printWarning("Archive is in memory; layouts are lost on exit")
	return storage.NewMemoryStore(), nil
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
