package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	pb "github.com/godilite/gradebook/api/v1"
	"github.com/godilite/gradebook/internal/config"
	handler "github.com/godilite/gradebook/internal/grpc"
	"github.com/godilite/gradebook/internal/httpapi"
	"github.com/godilite/gradebook/internal/observability"
	"github.com/godilite/gradebook/internal/repository"
	"github.com/godilite/gradebook/internal/service"
	"github.com/godilite/gradebook/pkg/cache"
	dbbuilder "github.com/godilite/gradebook/pkg/database"
	grpcsrv "github.com/godilite/gradebook/pkg/grpc/server"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *http.Server
	httpLis    net.Listener
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.closeResources()
		}
	}()

	a.dbPool, err = dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBDSN),
		dbbuilder.WithRetry(3, time.Second),
		dbbuilder.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))

	repo := repository.NewGradeRepository(a.dbPool, repository.DialectFor(cfg.DBDriver))
	if err = repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	// A nil Cacher disables caching; never store a nil *cache.Cache in it.
	var cacher cache.Cacher
	if cfg.CacheEnabled() {
		a.cache, err = cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
		)
		if err != nil {
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		cacher = a.cache
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("Cache disabled, REDIS_ADDR not set")
	}

	metrics := observability.NewMetrics()

	statsService := service.NewStatsService(repo, logger.Named("stats"),
		service.WithFetchTimeout(cfg.FetchTimeout),
		service.WithFetchObserver(metrics),
	)
	cachedStats := service.NewCachingStatsService(statsService, cacher, cfg.CacheTTL, logger, metrics)
	recordService := service.NewRecordService(repo, cachedStats, logger.Named("records"))

	a.httpLis, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTPPort))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", cfg.HTTPPort, err)
	}

	a.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithUnaryInterceptors(metrics.UnaryInterceptor()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcHandlers := handler.NewGRPCHandlers(cachedStats, logger, 0)
	a.grpcServer.RegisterServiceWithHealth(pb.GradeStats_ServiceName, func(s *grpc.Server) {
		pb.RegisterGradeStatsServer(s, grpcHandlers)
	})

	router := httpapi.NewRouter(
		httpapi.NewHandler(cachedStats, recordService, logger),
		httpapi.RouterOptions{
			Metrics: metrics,
			Limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
			Logger:  logger,
		},
	)

	a.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return a, nil
}

// HTTPAddr returns the address the HTTP server listens on.
func (a *App) HTTPAddr() net.Addr {
	return a.httpLis.Addr()
}

// GRPCAddr returns the address the gRPC server listens on.
func (a *App) GRPCAddr() net.Addr {
	return a.grpcServer.Addr()
}

// Run serves HTTP and gRPC until ctx is canceled or SIGINT/SIGTERM arrives,
// then drains both servers and releases storage.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("application starting",
		zap.String("http_addr", a.HTTPAddr().String()),
		zap.String("grpc_addr", a.GRPCAddr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.grpcServer.Serve)
	g.Go(func() error {
		if err := a.httpServer.Serve(a.httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("application shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.closeResources()
	if err != nil {
		return err
	}

	a.logger.Info("graceful shutdown completed successfully")
	return nil
}

func (a *App) shutdown(ctx context.Context) error {
	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("grpc shutdown: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) closeResources() {
	if a.httpLis != nil && a.httpServer == nil {
		_ = a.httpLis.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		if err := a.dbPool.Close(); err != nil {
			a.logger.Error("database shutdown error", zap.Error(err))
		}
	}
}
