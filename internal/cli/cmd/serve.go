package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"vidconv/internal/api"
	"vidconv/internal/config"
	"vidconv/internal/log"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve convert_video, batch_convert and get_video_info over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = viper.BindPFlag(config.KeyListenAddr, cmd.Flags().Lookup("listen"))
			_ = viper.BindPFlag(config.KeyRateLimitRPM, cmd.Flags().Lookup("rate-limit"))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := config.Current()
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			svc, err := newService(toolFFmpeg, toolFFprobe)
			if err != nil {
				return err
			}
			handler := api.NewRouter(svc, api.Config{RateLimitRPM: s.RateLimitRPM})
			if err := serve(cmd.Context(), s.ListenAddr, handler); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return nil
		},
	}
	cmd.Flags().String("listen", ":8080", "Listen address")
	cmd.Flags().Int("rate-limit", 60, "Conversion requests per client IP per minute (0 disables)")
	return cmd
}

// serve runs the HTTP server until ctx is done. In-flight conversions see
// their request context cancelled on shutdown.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	logger := log.WithComponent("server")

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("listen", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		cancelBase()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown error")
		}
		return nil
	})

	err := g.Wait()
	logger.Info().Msg("server stopped")
	return err
}
