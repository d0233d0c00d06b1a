package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harborops/recvplan/api/plans"
	"github.com/harborops/recvplan/app"
	"github.com/harborops/recvplan/config"
	"github.com/harborops/recvplan/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "recvplan",
	Short: "CFS receive-plan scheduling service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	log := logger.New("main")
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()

	if cfg.API.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/api/plans", plans.NewListHandler(svc.Repository()))
		srv := &http.Server{Addr: cfg.API.Addr, Handler: mux}
		go func() {
			<-ctx.Done()
			_ = srv.Close()
		}()
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("api server: %v", err)
			}
		}()
	}
	return svc.Run(ctx)
}
