package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/pipeline"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/server"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/validation"
)

const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP job trigger and digest API",
		Long: `Start the HTTP server.

Endpoints:
  GET  /health                 store health check
  POST /api/jobs/digest        run the digest job ({"field", "force", "dry_run"})
  GET  /api/digests            list stored digests (?field=&limit=)
  GET  /api/digests/{id}       one stored digest
  POST /api/validate/article   validate an article or an array of articles
  POST /api/validate/user      validate a subscriber profile

Set server.api_key (or ADMIN_API_KEY) to require a bearer token on job triggers.

Examples:
  scholarly serve
  scholarly serve --port 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 127.0.0.1)")

	return cmd
}

func runServe(ctx context.Context, port int, host string) error {
	cfg, log, err := loadApp()
	if err != nil {
		return err
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	runner, err := pipeline.NewBuilder(cfg).
		WithLogger(log.With("component", "pipeline")).
		WithStore(st).
		Build(ctx)
	if err != nil {
		return err
	}

	srv := server.New(runner, st, validation.NewEngine(validation.RulesFromConfig(cfg.Content)), serverCfg,
		log.With("component", "server"))

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", err)
			return err
		}
	}
	return nil
}
