package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ashpect/cacheproxy/pkg/accesslog"
	"github.com/ashpect/cacheproxy/pkg/admin"
	"github.com/ashpect/cacheproxy/pkg/cache"
	"github.com/ashpect/cacheproxy/pkg/client"
	"github.com/ashpect/cacheproxy/pkg/config"
	"github.com/ashpect/cacheproxy/pkg/proxy"
	"github.com/ashpect/cacheproxy/pkg/utils"
)

var errUsage = errors.New("usage")

type args struct {
	port       string
	configFile string
}

func parseArgs(argv []string, stderr io.Writer) (args, error) {
	var a args
	fs := flag.NewFlagSet("proxy", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.configFile, "config", "", "location of config file")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: proxy [-config file] <port>")
	}
	if err := fs.Parse(argv); err != nil {
		return a, errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return a, errUsage
	}
	a.port = fs.Arg(0)
	return a, nil
}

func main() {
	a, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.Log.Level, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, a, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("proxy stopped")
	}
}

func run(ctx context.Context, a args, cfg *config.SystemCfg, logger zerolog.Logger) error {
	opts := []cache.Option{cache.WithCleanupInterval(cfg.Cache.CleanupInterval)}
	if cfg.Cache.TTL > 0 {
		opts = append(opts, cache.WithTTL(cfg.Cache.TTL))
	}
	responseCache, err := cache.New(cfg.Cache.Capacity, opts...)
	if err != nil {
		return errors.Wrap(err, "create cache")
	}
	defer responseCache.Close()

	transportOpts := []client.TransportOption{
		client.WithConnectTimeout(cfg.Proxy.DialTimeout),
		client.WithKeepAlive(cfg.Proxy.KeepAlive),
	}
	localAddr, err := cfg.Proxy.ResolveLocalAddr()
	if err != nil {
		return err
	}
	if localAddr != nil {
		transportOpts = append(transportOpts, client.WithLocalAddr(localAddr))
	}
	dialer := client.NewClient(client.WithDialer(client.NewTransport(transportOpts...)))

	proxyOpts := []proxy.ProxyOption{
		proxy.WithDialer(dialer),
		proxy.WithMaxObjectSize(cfg.Proxy.MaxObjectSize),
		proxy.WithLogger(logger),
	}

	var logs admin.LogReader
	if cfg.AccessLog.DSN != "" {
		store, err := accesslog.Open(cfg.AccessLog.DSN, cfg.AccessLog.Limit)
		if err != nil {
			return err
		}
		defer store.Close()
		proxyOpts = append(proxyOpts, proxy.WithRecorder(store))
		logs = store
		logger.Info().Str("dsn", cfg.AccessLog.DSN).Msg("access log enabled")
	}

	if cfg.Admin.ListenAddr != "" {
		adminServer := &http.Server{
			Addr:    cfg.Admin.ListenAddr,
			Handler: admin.NewRouter(responseCache, logs, logger.With().Str("component", "admin").Logger()),
		}
		go func() {
			logger.Info().Str("addr", cfg.Admin.ListenAddr).Msg("admin console listening")
			if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("admin console stopped")
			}
		}()
		defer adminServer.Close()
	}

	logger.Info().
		Int("capacity", cfg.Cache.Capacity).
		Int("max_object_size", cfg.Proxy.MaxObjectSize).
		Msg("starting proxy")

	return proxy.New(responseCache, proxyOpts...).ListenAndServe(ctx, ":"+a.port)
}
