package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/celerix-dev/celerix-records/internal/api"
	"github.com/celerix-dev/celerix-records/internal/boot"
	"github.com/celerix-dev/celerix-records/internal/config"
	"github.com/celerix-dev/celerix-records/internal/logging"
	"github.com/celerix-dev/celerix-records/internal/metrics"
	"github.com/celerix-dev/celerix-records/pkg/entity"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	v := config.New()
	var configFile string

	root := &cobra.Command{
		Use:          "recordsd",
		Short:        "Serve the records tracker over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.Flags().StringVar(&configFile, "config", "", "config file (default ./records.yaml)")
	root.Flags().String("port", "", "HTTP port")
	root.Flags().String("data-dir", "", "data directory")
	root.Flags().String("backend", "", "backend: json or sqlite")
	_ = v.BindPFlag("http.port", root.Flags().Lookup("port"))
	_ = v.BindPFlag("data_dir", root.Flags().Lookup("data-dir"))
	_ = v.BindPFlag("backend", root.Flags().Lookup("backend"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var obs entity.Observer
	reg := prometheus.NewRegistry()
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if collector, err = metrics.New(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		obs = collector
	}

	rt, err := boot.Open(cfg, log, obs)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Warn("close backend", zap.Error(err))
		}
	}()

	gin.SetMode(cfg.HTTP.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	if collector != nil {
		r.Use(collector.Middleware())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	r.Use(cors)

	h := &api.Handler{App: rt.App, Store: rt.Store, Log: log}
	h.Register(r.Group("/api"))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API route not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	srv := &http.Server{Addr: ":" + cfg.HTTP.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Every mutation is already on disk, so only in-flight requests need draining.
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cors(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
