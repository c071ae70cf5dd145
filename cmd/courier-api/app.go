package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BearBump/CourierDesk/internal/api/courierapi"
)

type apiOpts struct {
	httpAddr string

	onListen func(httpAddr string)
}

type sessionStore interface {
	DeleteExpiredSessions(ctx context.Context) error
}

func runAPIServer(ctx context.Context, opts apiOpts, h *courierapi.Handler, sessions sessionStore) error {
	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}

	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	go sweepSessions(ctx, sessions)

	srv := &http.Server{Handler: h.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}

// sweepSessions drops expired sessions once an hour so the table does
// not grow without bound. Failures are logged and retried next tick.
func sweepSessions(ctx context.Context, sessions sessionStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.DeleteExpiredSessions(ctx); err != nil {
				slog.Warn("session sweep failed", "error", err)
			}
		}
	}
}
