package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pierregarcia1/construction-aggregator/config"
	"github.com/pierregarcia1/construction-aggregator/internal/adapter"
	"github.com/pierregarcia1/construction-aggregator/internal/adapter/httphandler"
	"github.com/pierregarcia1/construction-aggregator/internal/adapter/kafka"
	"github.com/pierregarcia1/construction-aggregator/internal/adapter/vendor"
	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
	"github.com/pierregarcia1/construction-aggregator/internal/core/port"
	"github.com/pierregarcia1/construction-aggregator/internal/core/service"
	"github.com/pierregarcia1/construction-aggregator/pkg/retry"
	"github.com/pierregarcia1/construction-aggregator/pkg/schema"
)

const retryDelay = 200 * time.Millisecond

type App struct {
	ctx        context.Context
	cfg        config.Config
	registry   *service.Registry
	events     port.SearchEventsProducer
	service    service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initVendors()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	level, err := app.cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initVendors() {
	const op = "App.initVendors"
	log := slog.With("op", op)

	hd := app.cfg.Vendors.HomeDepot
	backoff := retry.ExponentialBackoff(retryDelay)

	app.registry = service.NewRegistry()
	app.registry.Register(vendor.HomeDepotID, vendor.NewHomeDepot(
		hd.APIKey,
		vendor.EndpointOpt(hd.Endpoint),
		vendor.CountryOpt(hd.Country),
		vendor.PageSizeOpt(hd.PageSize),
		vendor.HTTPClientOpt(&http.Client{Timeout: hd.Timeout}),
		vendor.RetryOpt(hd.Attempts, backoff),
	))
	app.registry.Register(vendor.LowesID, vendor.NewLowes(app.cfg.Vendors.Lowes.APIKey))
	app.registry.Register(vendor.MenardsID, vendor.NewMenards(app.cfg.Vendors.Menards.APIKey))
	app.registry.Register(vendor.LocalSuppliersID, vendor.NewLocalSuppliers(app.cfg.Vendors.Local.Suppliers))

	for _, info := range app.registry.Info() {
		log.Info("vendor registered",
			"vendor", info.ID, "available", info.Available,
		)
	}
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"
	log := slog.With("op", op)

	broker := app.cfg.Broker
	if !broker.Enabled() {
		log.Info("search events are disabled")
		return
	}

	srClient, err := schema.NewRegistry(broker.SchemaRegistryURLs...)
	if err != nil {
		app.fallDown(op, err)
	}

	topic := broker.Topics.SearchEvents
	serde, err := schema.NewSerdeSearchEventV1(
		app.ctx,
		schema.SubjectOpt(topic+"-value"),
		schema.SchemaIdentifierOpt(srClient),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	var tlsCfg *tls.Config
	if broker.TLS.Enabled() {
		tlsCfg, err = adapter.MakeTLSConfig(broker.TLS.CA, broker.TLS.Cert, broker.TLS.Key)
		if err != nil {
			app.fallDown(op, err)
		}
	}

	producer, err := kafka.NewSearchEventsProducer(
		kafka.ProducerClientOpt(app.ctx, broker.SeedBrokers, topic, tlsCfg),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.events = producer
}

func (app *App) initCoreService() {
	dispatcher := service.NewDispatcher(
		app.registry,
		service.VendorTimeoutOpt(app.cfg.Search.VendorTimeout),
	)

	opts := []service.Opt{
		service.DefaultVendorsOpt(app.cfg.Search.DefaultVendors...),
		service.DefaultSortOpt(domain.SortPolicy(app.cfg.Search.DefaultSort)),
	}
	if app.events != nil {
		opts = append(opts, service.EventsProducerOpt(app.events))
	}
	app.service = service.New(app.registry, dispatcher, opts...)
}

func (app *App) initInboundAdapters() {
	gin.SetMode(gin.ReleaseMode)

	router := httphandler.NewRouter(
		httphandler.CORSOpt(app.cfg.HTTP.CORSOrigins),
	)
	httphandler.RegisterSearch(router, app.service)
	httphandler.RegisterVendors(router, app.service, app.service)
	httphandler.RegisterHealth(router)

	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTP.Addr, router, app.cfg.HTTP.RequestTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.service.WaitPublished()
	if app.events != nil {
		app.events.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
