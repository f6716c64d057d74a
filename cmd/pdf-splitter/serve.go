package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-splitter/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and Event Grid entry points",
		Long: `Serve the split pipeline over HTTP.

Routes:
  POST /api/SplitPdfs  split the PDF described by the JSON request body
  POST /api/events     Event Grid webhook; uploads to the inbox container are split
                       into the destination container
  GET  /healthz        liveness probe`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("inbox-container", "", "container whose uploads are split")
	cmd.Flags().String("event-destination-container", "", "container receiving the pages of uploads")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	store, err := a.objectStore()
	if err != nil {
		return err
	}

	api := server.NewAPI(server.APIOptions{
		Service:        a.service(store),
		Store:          store,
		InboxContainer: a.cfg.Storage.InboxContainer,
		Log:            a.log,
	})

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Listening on %s (inbox %s, destination %s)", srv.Addr, a.cfg.Storage.InboxContainer, a.cfg.Storage.DestinationContainer)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
