package app

import (
	"context"
	"fmt"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/config"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/http/handler"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/http/middleware"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/http/server"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/locationiq"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/postgres"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/rabbit"
	bookingsvc "github.com/sarvjeetrawat/PahadiRaah-sub001/internal/service/booking"
	locationsvc "github.com/sarvjeetrawat/PahadiRaah-sub001/internal/service/location"
	routesvc "github.com/sarvjeetrawat/PahadiRaah-sub001/internal/service/route"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	pgdb "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/postgres"
	rabbitmq "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/rabbit"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/trm"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/wshub"
)

// App owns every long-lived resource and wires the layers together:
// pool -> repos -> services -> handlers -> server.
type App struct {
	cfg config.Config
	log logger.Logger

	db     *pgdb.PostgreDB
	broker *rabbitmq.RabbitMQ
	hub    *wshub.ConnectionHub
	api    *server.API
}

func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	db, err := pgdb.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	broker, err := rabbitmq.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	feedBroker := rabbit.NewFeedBroker(broker, log)
	if err := feedBroker.Setup(ctx); err != nil {
		broker.Close(ctx)
		db.Close()
		return nil, fmt.Errorf("failed to setup feed exchange: %w", err)
	}

	// Repositories
	routeRepo := postgres.NewRouteRepo(db.Pool)
	bookingRepo := postgres.NewBookingRepo(db.Pool)
	locationRepo := postgres.NewLocationRepo(db.Pool)
	profileRepo := postgres.NewProfileRepo(db.Pool)

	txManager := trm.New(db.Pool)
	geocoder := locationiq.New(cfg.ExternalAPIConfig.LocationIQapiKey)

	// Services
	bookingService := bookingsvc.NewBookingService(
		bookingRepo,
		routeRepo,
		profileRepo,
		feedBroker,
		bookingsvc.Options{
			ServiceFeePercent: cfg.Booking.ServiceFeePercent,
			UserRowAttempts:   cfg.Booking.UserRowAttempts,
			UserRowDelay:      cfg.Booking.UserRowDelay,
		},
		log,
		txManager,
	)
	routeService := routesvc.NewRouteService(routeRepo, bookingRepo, locationRepo, geocoder, feedBroker, log, txManager)
	locationService := locationsvc.NewLocationService(locationRepo, routeRepo, feedBroker, log)

	// HTTP layer
	mid := middleware.NewMiddleware(middleware.NewJWTVerifier(cfg.Auth.JWTSecret), log)
	hub := wshub.NewConnHub(log)

	routeHandler := handler.NewRoute(routeService, log)
	bookingHandler := handler.NewBooking(bookingService, log)
	locationHandler := handler.NewLocation(locationService, log)
	streamHandler := handler.NewStream(hub, feedBroker, routeService, bookingService, locationService, log)

	api, err := server.New(cfg, routeHandler, bookingHandler, locationHandler, streamHandler, mid, log)
	if err != nil {
		broker.Close(ctx)
		db.Close()
		return nil, fmt.Errorf("failed to create http server: %w", err)
	}

	return &App{
		cfg: cfg,
		log: log,

		db:     db,
		broker: broker,
		hub:    hub,
		api:    api,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled
// or the server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	a.api.Run(ctx, errCh)

	select {
	case <-ctx.Done():
		a.log.Info(ctx, "shutdown signal received")
	case err := <-errCh:
		a.shutdown(context.Background())
		return err
	}

	a.shutdown(context.Background())
	return nil
}

// shutdown tears resources down in reverse wiring order: server first so
// no new work arrives, then live websockets, then the broker and the pool.
func (a *App) shutdown(ctx context.Context) {
	if err := a.api.Stop(ctx); err != nil {
		a.log.Error(ctx, "failed to stop http server", err)
	}

	a.hub.Close()

	if err := a.broker.Close(ctx); err != nil {
		a.log.Error(ctx, "failed to close rabbitmq connection", err)
	}

	a.db.Close()

	a.log.Info(ctx, "application stopped")
}
