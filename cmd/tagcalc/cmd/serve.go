package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/f3rmion/tagcalc/internal/logger"
	"github.com/f3rmion/tagcalc/internal/server"
	"github.com/f3rmion/tagcalc/internal/suggest"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local catalog as an autocomplete API",
	Long: `Serve the local catalog over HTTP in the same format the TUI consumes.

Endpoints:
  GET  /autocomplete?name=<query>   matching items as a JSON array
  POST /evaluate                    {"tags": [...]} -> expression value
  GET  /healthz

Point another tagcalc at it with:
  tagcalc --base-url http://127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "address to listen on (default from config)")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, store, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	_, log, err := setupLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.LogLevel >= 0 {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := &server.Handler{
		Source: suggest.CatalogSource{Store: store},
		Log:    log.WithName("server"),
	}
	log.Info("serving catalog", "path", store.Path())
	return server.Run(ctx, cfg.Listen, server.NewRouter(h), log.WithName("server"))
}
