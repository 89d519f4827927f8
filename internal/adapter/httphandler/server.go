package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 30 * time.Second
)

type HTTPServer struct {
	httpServer *http.Server
}

// NewHTTPServer wraps handler so no request outlives requestTimeout. The
// timeout must leave room for the slowest vendor search.
func NewHTTPServer(
	addr string, handler http.Handler, requestTimeout time.Duration,
) HTTPServer {
	if requestTimeout > 0 {
		handler = http.TimeoutHandler(
			handler, requestTimeout, `{"error":"Request timed out"}`,
		)
	}
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	return HTTPServer{s}
}

func (s HTTPServer) Addr() string {
	return s.httpServer.Addr
}

func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op)

	defer stopFn()
	log.Info("http server is listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		log.Error("unexpected servers shutdown", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}
