package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"warnmode/internal/config"
	dbpkg "warnmode/internal/db"
	"warnmode/internal/httpx"
	"warnmode/internal/logx"
	"warnmode/internal/stub"
	"warnmode/internal/warningmode"
	"warnmode/internal/webservice"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile string
		cfg     *config.Config
	)
	root := &cobra.Command{
		Use:           "warnmode",
		Short:         "Toggle the remote warning mode",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(envFile)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				return err
			}
			cfg = c
			log.Logger = logx.New(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading WARNMODE_* variables")

	for _, m := range []struct {
		name  string
		on    bool
		short string
	}{
		{warningmode.ModeOpen, true, "Open the warning mode"},
		{warningmode.ModeClose, false, "Close the warning mode"},
	} {
		on := m.on
		root.AddCommand(&cobra.Command{
			Use:   m.name,
			Short: m.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				err := toggle(cmd, cfg, on)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				}
				return err
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run a local stub of the warning mode service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := serve(cmd.Context(), cfg)
			if err != nil {
				log.Error().Err(err).Msg("serve")
			}
			return err
		},
	})
	return root
}

// toggle sends one change and prints the typed reply as JSON.
func toggle(cmd *cobra.Command, cfg *config.Config, on bool) error {
	if err := cfg.RequireBaseURL(); err != nil {
		return err
	}
	client, err := webservice.New(cfg.BaseURL, webservice.WithTimeout(cfg.Timeout))
	if err != nil {
		return err
	}
	svc := warningmode.NewWithPath(client, cfg.Path)

	done := make(chan webservice.Result[warningmode.Response], 1)
	svc.ChangeWarningMode(cmd.Context(), on, func(r webservice.Result[warningmode.Response]) {
		done <- r
	})
	resp, err := (<-done).Get()
	if err != nil {
		return err
	}
	if resp.Current == nil {
		raw, _ := json.Marshal(resp.Raw)
		return fmt.Errorf("reply lacks success or waringmode: %s", raw)
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(resp.Current)
}

func serve(ctx context.Context, cfg *config.Config) error {
	store, err := dbpkg.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	scheduler, err := stub.StartPruner(ctx, store, cfg.Retention)
	if err != nil {
		return fmt.Errorf("start pruner: %w", err)
	}
	defer scheduler.Stop()

	var shuttingDown atomic.Bool
	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      withShutdown(stub.New(store, stub.Options{Path: cfg.Path}), &shuttingDown),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Listen).Str("path", cfg.Path).Msg("starting stub server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shuttingDown.Store(true)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
			return err
		}
		return nil
	})
	return g.Wait()
}

func withShutdown(next http.Handler, flag *atomic.Bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if flag.Load() {
			httpx.Write(w, r, httpx.Unavailable("server shutting down"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
