package bootstrap

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/locvowork/supplier_fte_dashboard/internal/config"
	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/internal/handler"
	"github.com/locvowork/supplier_fte_dashboard/internal/logger"
	"github.com/locvowork/supplier_fte_dashboard/internal/repository"
	"github.com/locvowork/supplier_fte_dashboard/internal/service"
	"github.com/locvowork/supplier_fte_dashboard/pkg/pdftable"
)

const sweepInterval = time.Minute

type App struct {
	Echo     *echo.Echo
	Sessions *repository.SessionRepository

	stopSweeper context.CancelFunc
}

func NewApp() *App {
	e := echo.New()
	e.HideBanner = true
	return &App{
		Echo: e,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(logger.Options{FilePath: cfg.LOG_FILE_PATH, Level: cfg.LOG_LEVEL})
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize dependencies
	a.Sessions = repository.NewSessionRepository(cfg.SESSION_IDLE_TIMEOUT)
	opts := domain.DefaultAnalysisOptions()
	opts.StatusColumn = cfg.STATUS_COLUMN
	opts.SecondaryColumn = cfg.SECONDARY_COLUMN
	opts.Min = cfg.FTE_MIN
	opts.Max = cfg.FTE_MAX
	svc := service.NewSessionService(a.Sessions, opts, pdftable.WithLogger(logger.Logger()))

	sweepCtx, cancel := context.WithCancel(context.Background())
	a.stopSweeper = cancel
	go a.Sessions.RunSweeper(sweepCtx, sweepInterval)

	// Register Middlewares
	a.RegisterMiddlewares(cfg.MAX_UPLOAD_BYTES)

	// Register Routes
	handler.RegisterRoutes(a.Echo, svc)

	return nil
}

func (a *App) RegisterMiddlewares(maxUploadBytes int) {
	a.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.FromContext(c.Request().Context()).Info()
			if v.Error != nil {
				event = logger.FromContext(c.Request().Context()).Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
	if maxUploadBytes > 0 {
		a.Echo.Use(middleware.BodyLimit(strconv.Itoa(maxUploadBytes) + "B"))
	}
}

func (a *App) Run() error {
	defer a.stopSweeper()
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

// Shutdown stops the server and the session sweeper.
func (a *App) Shutdown(ctx context.Context) error {
	if a.stopSweeper != nil {
		a.stopSweeper()
	}
	return a.Echo.Shutdown(ctx)
}
