// Package server wires the HTTP API: routes, middleware chain and the
// listener lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/vidtube/internal/server/handlers"
	"github.com/iudanet/vidtube/internal/server/middleware"
	"github.com/iudanet/vidtube/internal/server/token"
)

// HTTP server timeouts
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
)

// Store is what the router needs from storage directly: the auth gate
// loads users and the health check pings.
type Store interface {
	middleware.UserGetter
	handlers.Pinger
}

// AccountService is implemented by *account.Service.
type AccountService interface {
	handlers.Registrar
	handlers.AccountService
}

// Deps собирает зависимости роутера
type Deps struct {
	Store     Store
	Codec     *token.Codec
	Sessions  handlers.SessionService
	Accounts  AccountService
	Graph     handlers.GraphService
	Cookies   handlers.CookieConfig
	Version   string
	RateLimit int
	// RateWindow is the window of the limiter on register, login and refresh-token.
	RateWindow time.Duration
}

// Server is the HTTP API server.
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	limiter         *middleware.RateLimiter
	shutdownTimeout time.Duration
}

// New создает сервер, слушающий addr
func New(logger *slog.Logger, addr string, shutdownTimeout time.Duration, deps Deps) *Server {
	limiter := middleware.NewRateLimiter(deps.RateLimit, deps.RateWindow, logger)

	return &Server{
		logger:  logger,
		limiter: limiter,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(logger, deps, limiter),
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// NewRouter builds the API routes and the middleware chain around them.
func NewRouter(logger *slog.Logger, deps Deps, limiter *middleware.RateLimiter) http.Handler {
	auth := handlers.NewAuthHandler(logger, deps.Sessions, deps.Accounts, deps.Cookies)
	accounts := handlers.NewAccountHandler(logger, deps.Accounts)
	channels := handlers.NewChannelHandler(logger, deps.Graph)
	health := handlers.NewHealthHandler(logger, deps.Store, deps.Version)

	gate := middleware.AuthMiddleware(logger, deps.Codec, deps.Store)
	gated := func(h http.HandlerFunc) http.Handler { return gate(h) }
	limited := func(h http.HandlerFunc) http.Handler { return limiter.Middleware(h) }

	mux := http.NewServeMux()

	mux.Handle("POST /api/v1/users/register", limited(auth.Register))
	mux.Handle("POST /api/v1/users/login", limited(auth.Login))
	mux.Handle("POST /api/v1/users/refresh-token", limited(auth.Refresh))

	mux.Handle("POST /api/v1/users/logout", gated(auth.Logout))
	mux.Handle("POST /api/v1/users/change-password", gated(auth.ChangePassword))
	mux.Handle("GET /api/v1/users/current-user", gated(accounts.CurrentUser))
	mux.Handle("PATCH /api/v1/users/update-account", gated(accounts.UpdateAccount))
	mux.Handle("POST /api/v1/users/media/upload-url", gated(accounts.UploadURL))
	mux.Handle("PATCH /api/v1/users/avatar", gated(accounts.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", gated(accounts.UpdateCoverImage))

	mux.Handle("GET /api/v1/users/c/{username}", gated(channels.ChannelProfile))
	mux.Handle("POST /api/v1/users/c/{username}/subscription", gated(channels.Subscribe))
	mux.Handle("DELETE /api/v1/users/c/{username}/subscription", gated(channels.Unsubscribe))
	mux.Handle("GET /api/v1/users/history", gated(channels.WatchHistory))
	mux.Handle("POST /api/v1/users/history/{videoID}", gated(channels.RecordView))

	mux.HandleFunc("GET /health", health.Health)

	var h http.Handler = mux
	h = middleware.RecoveryMiddleware(logger)(h)
	h = middleware.LoggingWithSkip(logger, []string{"/health"})(h)
	h = middleware.RequestIDMiddleware(h)
	return h
}

// Run слушает адрес сервера до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// server down gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("HTTP server listening", slog.String("address", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		defer s.limiter.Stop()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
