package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cxfksword/metashark-manifest/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated manifests for a local Jellyfin instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			if err := serve(log, cmd); err != nil {
				log.Errorf("ERROR: %v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().String("dir", ".", "directory containing manifest.json and manifest_cn.json")
	return cmd
}

func serve(log *logrus.Logger, cmd *cobra.Command) error {
	addr := must(cmd.Flags().GetString("addr"))
	dir := must(cmd.Flags().GetString("dir"))

	log.Println("starting server...")
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(log, dir, version),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s, serving %s", srv.Addr, dir)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		stop()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	case <-ctx.Done():
	}
	stop()

	log.Println("stopping server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); errors.Is(err, context.DeadlineExceeded) {
		log.Println("closing server...")
		if closeErr := srv.Close(); closeErr != nil {
			return closeErr
		}
	} else if err != nil {
		return err
	}
	log.Println("server stopped!")
	return nil
}
