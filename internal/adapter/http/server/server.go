package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/config"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/http/handler"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/http/middleware"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
)

const serverIPAddress = "%s:%s"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health   *handler.Health
	route    *handler.Route
	booking  *handler.Booking
	location *handler.Location
	stream   *handler.Stream
}

func New(
	cfg config.Config,
	routeHandler *handler.Route,
	bookingHandler *handler.Booking,
	locationHandler *handler.Location,
	streamHandler *handler.Stream,
	mid *middleware.Middleware,
	logger logger.Logger,
) (*API, error) {
	if mid == nil {
		return nil, errors.New("middleware is required")
	}

	api := &API{
		mux: http.NewServeMux(),
		routes: &handlers{
			health:   handler.NewHealth(logger),
			route:    routeHandler,
			booking:  bookingHandler,
			location: locationHandler,
			stream:   streamHandler,
		},
		m:    mid,
		addr: fmt.Sprintf(serverIPAddress, "0.0.0.0", cfg.Server.Port),
		cfg:  cfg,
		log:  logger,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	metrics := a.m.Metrics("pahadiraah")
	return a.m.Recover(a.m.RequestID(a.m.Logging(metrics(a.m.Auth(a.mux)))))
}
