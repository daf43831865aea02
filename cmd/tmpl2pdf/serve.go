package main

import (
	"context"
	"fmt"
	"time"

	tmpl2pdf "github.com/alnah/go-tmpl2pdf"
	"github.com/alnah/go-tmpl2pdf/internal/cache"
	"github.com/alnah/go-tmpl2pdf/internal/metrics"
	"github.com/alnah/go-tmpl2pdf/internal/server"
)

// cachePingTimeout bounds the Redis reachability check at startup.
const cachePingTimeout = 3 * time.Second

// runServe starts the engine and serves HTTP until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	fs := newFlagSet("serve", env.Stderr)
	f := &cmdFlags{}
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addRenderFlags(fs, &f.render)
	addServeFlags(fs, &f.serve)

	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, rest)
	}

	cfg, err := resolveConfig(fs, f, env)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, env.Stderr)
	if err != nil {
		return err
	}

	rec := metrics.New()
	opts := append(generatorOptions(cfg, log, env), tmpl2pdf.WithObserver(rec))

	if cfg.Cache.RedisAddr != "" {
		store := cache.New(cfg.Cache.RedisAddr, cache.WithTTL(cfg.Cache.TTL))
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("closing cache", "err", err)
			}
		}()

		pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
		if err := store.Ping(pingCtx); err != nil {
			log.Warn("cache unreachable, rendering without it until it recovers",
				"addr", cfg.Cache.RedisAddr, "err", err)
		}
		cancel()
		opts = append(opts, tmpl2pdf.WithCache(store))
	}

	gen, err := tmpl2pdf.NewGenerator(opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := gen.Close(); err != nil {
			log.Warn("closing generator", "err", err)
		}
	}()

	if err := gen.Start(ctx); err != nil {
		return err
	}
	log.Info("engine ready", "backend", cfg.Engine.Backend, "templates", gen.Templates())

	srv := server.New(gen,
		server.WithLogger(log),
		server.WithMetricsHandler(rec.Handler()),
	)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
