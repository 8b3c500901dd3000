package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/cometbft/cometbft/abci/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pokerescrow/internal/app"
	"pokerescrow/internal/config"
	"pokerescrow/internal/events"
)

func newStartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Serve the application over ABCI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runNode(ctx, cfg, logger)
		},
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

func runNode(ctx context.Context, cfg config.Config, logger log.Logger) error {
	reg := prometheus.NewRegistry()
	sinks, err := buildSinks(cfg, logger, reg)
	if err != nil {
		return err
	}
	defer sinks.Close()

	a, err := app.New(cfg.Home, app.Options{
		Logger:      logger,
		Sink:        sinks.dispatcher,
		MintEnabled: cfg.Bank.MintEnabled,
	})
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	srv, err := server.NewServer(cfg.ABCI.Addr, cfg.ABCI.Transport, a)
	if err != nil {
		return fmt.Errorf("create abci server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start abci server: %w", err)
	}
	defer func() { _ = srv.Stop() }()
	logger.Info("abci server listening", "addr", cfg.ABCI.Addr, "transport", cfg.ABCI.Transport)

	if cfg.Metrics.Addr != "" {
		msrv := newMetricsServer(cfg.Metrics.Addr, reg)
		go func() {
			if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = msrv.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics listening", "addr", cfg.Metrics.Addr)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// nodeSinks owns the notification pipeline: log, metrics and optional Redis
// sinks behind one async dispatcher.
type nodeSinks struct {
	dispatcher *events.Dispatcher
	redis      *redis.Client
}

func buildSinks(cfg config.Config, logger log.Logger, reg prometheus.Registerer) (*nodeSinks, error) {
	metrics, err := events.NewMetricsSink(reg)
	if err != nil {
		return nil, err
	}
	fanout := events.MultiSink{events.LogSink{Logger: logger.With("module", "events")}, metrics}

	ns := &nodeSinks{}
	if cfg.Events.Redis.Addr != "" {
		ns.redis = redis.NewClient(&redis.Options{Addr: cfg.Events.Redis.Addr})
		fanout = append(fanout, events.NewRedisSink(ns.redis, cfg.Events.Redis.Channel))
		logger.Info("publishing events to redis", "addr", cfg.Events.Redis.Addr, "channel", cfg.Events.Redis.Channel)
	}
	ns.dispatcher = events.NewDispatcher(events.DispatcherConfig{
		BufferSize: cfg.Events.Buffer,
		DropIfFull: cfg.Events.DropIfFull,
	}, fanout, logger)
	return ns, nil
}

func (ns *nodeSinks) Close() {
	ns.dispatcher.Close()
	if ns.redis != nil {
		_ = ns.redis.Close()
	}
}
