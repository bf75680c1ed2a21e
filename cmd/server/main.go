package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"trail/internal/platform/config"
	"trail/internal/platform/httpserver"
	"trail/internal/platform/logger"
	"trail/internal/platform/metrics"
	"trail/internal/recorder"
	httpapi "trail/internal/transport/http"
	"trail/pkg/audit"
	kafkapub "trail/pkg/audit/publisher/kafka"
	memorystore "trail/pkg/audit/store/memory"
	postgresstore "trail/pkg/audit/store/postgres"
	redisstore "trail/pkg/audit/store/redis"
	"trail/pkg/platform/middleware/auth"
	"trail/pkg/platform/middleware/requestinfo"
)

// main wires high-level dependencies and keeps the server lifecycle
// small. Audit logic lives in pkg/audit and internal/recorder.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	m := metrics.New()
	builder := audit.NewBuilder(auth.Actor, requestinfo.Resolver{})

	opts := []recorder.Option{recorder.WithConsoleAuditing(cfg.ConsoleAuditing)}

	var fanout chan audit.Record
	var publisher *kafkapub.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = kafkapub.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer publisher.Close()
		if err := publisher.EnsureTopic(ctx); err != nil {
			return err
		}
		fanout = make(chan audit.Record, cfg.FanoutBuffer)
		opts = append(opts, recorder.WithFanout(fanout))
		log.Info("kafka fanout enabled", "topic", cfg.KafkaTopic)
	}

	rec := recorder.New(builder, store, requestinfo.Resolver{}, m, log, opts...)
	handler := httpapi.NewHandler(rec, store, log)
	srv := httpserver.New(cfg.Addr, httpapi.NewRouter(handler, cfg.JWTSigningKey))

	g, ctx := errgroup.WithContext(ctx)

	if publisher != nil {
		worker := audit.NewWorker(publisher, fanout, log)
		g.Go(func() error {
			if err := worker.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info("starting trail", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newStore picks the record sink: Postgres when a database URL is set,
// Redis when an address is set, otherwise in process.
func newStore(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Store, error) {
	switch {
	case cfg.DatabaseURL != "":
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, err
		}
		store := postgresstore.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		log.Info("using postgres audit store")
		return store, nil

	case cfg.RedisAddr != "":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		log.Info("using redis audit store", "addr", cfg.RedisAddr)
		return redisstore.New(client), nil

	default:
		log.Warn("using in-memory audit store; records are lost on restart")
		return memorystore.NewInMemoryStore(), nil
	}
}
