package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tirs/quota/internal/application/analytics"
	"github.com/tirs/quota/internal/application/ports"
	"github.com/tirs/quota/internal/domain/insights"
	"github.com/tirs/quota/internal/domain/repository"
	"github.com/tirs/quota/internal/infrastructure/cache"
	"github.com/tirs/quota/internal/infrastructure/metrics"
	"github.com/tirs/quota/internal/infrastructure/postgres"
	"github.com/tirs/quota/internal/infrastructure/sqlite"
	httpRouter "github.com/tirs/quota/internal/interfaces/http"
	"github.com/tirs/quota/pkg/config"
	"github.com/tirs/quota/pkg/logger"
)

// dataSource repositorios de lectura más su cierre.
type dataSource struct {
	customers repository.CustomerRepository
	products  repository.ProductRepository
	quotes    repository.QuoteRepository
	close     func()
}

func openDataSource(ctx context.Context, cfg config.DBConfig) (*dataSource, error) {
	if cfg.Driver == config.DriverSQLite {
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &dataSource{
			customers: sqlite.NewCustomerRepository(db),
			products:  sqlite.NewProductRepository(db),
			quotes:    sqlite.NewQuoteRepository(db),
			close:     func() { _ = db.Close() },
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &dataSource{
		customers: postgres.NewCustomerRepository(pool),
		products:  postgres.NewProductRepository(pool),
		quotes:    postgres.NewQuoteRepository(pool),
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	policy, err := cfg.Insights.Policy()
	if err != nil {
		log.Fatal().Err(err).Msg("política de análisis inválida")
	}

	ctx := context.Background()
	src, err := openDataSource(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("conexión a la fuente de datos")
	}
	defer src.close()

	var resultCache ports.InsightsCache = ports.NoopCache{}
	if cfg.Cache.Enabled() {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache, log)
		if err != nil {
			// sin caché el servicio sigue funcionando, solo más lento
			log.Warn().Err(err).Msg("Redis no disponible, caché deshabilitada")
		} else {
			defer rc.Close()
			resultCache = rc
		}
	}

	promMetrics := metrics.New()

	insightsUC := analytics.NewInsightsUseCase(
		src.customers, src.products, src.quotes,
		insights.NewEngine(policy),
		resultCache, promMetrics, log, cfg.Cache.TTL,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Quota Insights API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Insights:       insightsUC,
		MetricsHandler: promMetrics.Handler(),
		ServiceName:    cfg.App.Name,
		Logger:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
