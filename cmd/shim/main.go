// coachcore-shim — HTTP façade in front of the sandboxed code execution
// engine and the behavioral engagement scoring pipeline.
//
// Two commands: `serve` runs the HTTP server; `languages` prints the
// supported-language registry for operators wiring up a reverse proxy or
// health check without standing up the whole service.
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

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/practicearena/coachcore/internal/execclient"
	"github.com/practicearena/coachcore/internal/sandbox"
	"github.com/practicearena/coachcore/internal/scoring"
	"github.com/practicearena/coachcore/internal/shimhttp"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "coachcore-shim",
		Short:   "HTTP façade for the code-execution and engagement-scoring core",
		Version: version,
	}

	var (
		port           string
		apiKey         string
		allowedOrigins string
		execServiceURL string
		redisAddr      string
		verbose        bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			cfg := shimhttp.DefaultConfig()
			cfg.Port = port
			cfg.APIKey = apiKey
			cfg.ExecutionServiceURL = execServiceURL
			cfg.RedisAddr = redisAddr
			if allowedOrigins != "" {
				cfg.AllowedOrigins = strings.Split(allowedOrigins, ",")
			}

			return runServe(cfg, log)
		},
	}

	serveCmd.Flags().StringVar(&port, "port", envOrDefault("PORT", "8080"), "HTTP listen port")
	serveCmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("EXECUTION_API_KEY"), "shared secret required in X-API-Key")
	serveCmd.Flags().StringVar(&allowedOrigins, "allowed-origins", os.Getenv("ALLOWED_ORIGINS"), "comma-separated CORS allow-list")
	serveCmd.Flags().StringVar(&execServiceURL, "execution-service-url", os.Getenv("EXECUTION_SERVICE_URL"), "base URL of a remote execution service (empty runs the sandbox in-process)")
	serveCmd.Flags().StringVar(&redisAddr, "redis-addr", os.Getenv("REDIS_ADDR"), "redis address backing the rate limiter (empty disables rate limiting)")
	serveCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	languagesCmd := &cobra.Command{
		Use:   "languages",
		Short: "Print the supported language registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range sandbox.Profiles() {
				fmt.Printf("%-8s memory=%-6s cpu=%-5s default_timeout=%-6s max_timeout=%s\n",
					p.Language, p.MemoryLimit, p.CPUQuota, p.DefaultTimeout, p.MaxTimeout)
			}
			return nil
		},
	}

	rootCmd.AddCommand(serveCmd, languagesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runServe builds the service graph (EXEC, SCORE, optional rate limiter,
// SHIM router) and blocks serving HTTP until an interrupt or terminate
// signal arrives, then drains in-flight requests before exiting cleanly.
func runServe(cfg shimhttp.Config, log *logrus.Logger) error {
	var execService shimhttp.Executor
	if cfg.ExecutionServiceURL != "" {
		execService = execclient.New(cfg.ExecutionServiceURL, cfg.APIKey, log.WithField("component", "execclient"))
		log.WithField("execution_service_url", cfg.ExecutionServiceURL).Info("delegating execution to remote service")
	} else {
		execService = sandbox.NewService(log.WithField("component", "exec"))
	}

	var limiter *shimhttp.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.WithError(err).Warn("rate limiter redis unreachable at startup, continuing with rate limiting disabled")
		} else {
			limiter = shimhttp.NewLimiterFromClient(client, shimhttp.RateLimitWindow)
		}
	} else {
		log.Info("no redis address configured, rate limiting disabled")
	}

	log.WithField("docker_available", execService.DockerAvailable()).Info("startup readiness check")

	svc := shimhttp.NewService(cfg, execService, scoring.Score, limiter, nil, log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           svc.GetHTTPHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if limiter != nil {
		_ = limiter.Close()
	}

	log.Info("shutdown complete")
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
