package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"petlink/internal/adapters/auth/jwtauth"
	"petlink/internal/adapters/mail"
	pg "petlink/internal/adapters/storage/postgres"
	"petlink/internal/config"
	"petlink/internal/domain/reminders"
	"petlink/internal/platform/httpclient"
	"petlink/internal/platform/lifecycle"
	"petlink/internal/platform/logger"
	"petlink/internal/platform/taskqueue"
	"petlink/internal/ports/auth"
	"petlink/internal/router"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	lg, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		App:      cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lc := lifecycle.New(cfg.ShutdownTimeout, lg.Named("lifecycle"))
	lc.Listen(cancel)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Postgres (opcional)
	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = pg.Open(ctx, cfg.Database.DSN, pg.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.MaxConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		lc.Register("postgres", func(context.Context) error { return db.Close() })

		if cfg.Migrations.Enabled {
			if err := pg.RunMigrations(db, lg.Named("migrate")); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
		}
	} else {
		lg.Warn("DB_DSN not set, using in-memory repositories")
	}

	// Cola de recordatorios
	store, err := openQueue(ctx, cfg, lc, lg)
	if err != nil {
		return err
	}

	leads, err := reminders.LeadTimesFrom(cfg.Reminders.LeadTimes)
	if err != nil {
		return err
	}
	scheduler := reminders.NewScheduler(leads, loc, reminders.NewQueueDispatcher(store), lg.Named("reminders"))

	sender, err := newSender(cfg, lg)
	if err != nil {
		return err
	}
	deliverer := reminders.NewDeliverer(sender, cfg.Mail.From, lg.Named("delivery"))

	runner, err := taskqueue.NewRunner(store, lg.Named("taskqueue"), taskqueue.RunnerConfig{
		Interval:  cfg.Queue.PollInterval,
		BatchSize: cfg.Queue.BatchSize,
	})
	if err != nil {
		return err
	}
	runner.Handle(reminders.JobKind, deliverer.HandleJob)
	runner.Start()
	lc.Register("reminder runner", func(ctx context.Context) error {
		runner.Stop(ctx)
		return nil
	})

	// Auth: sin JWT_SECRET => modo dev (X-Debug-User-ID)
	var (
		verifier auth.AuthVerifier
		tokens   auth.TokenIssuer
	)
	if cfg.JWT.Secret != "" {
		authority, err := jwtauth.New(jwtauth.Config{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
			TTL:    cfg.JWT.TTL,
		})
		if err != nil {
			return err
		}
		verifier, tokens = authority, authority
	} else {
		lg.Warn("JWT_SECRET not set, running in dev auth mode")
	}

	h, err := router.NewRouter(router.Options{
		AuthVerifier:   verifier,
		Tokens:         tokens,
		DB:             db,
		Logger:         lg,
		Scheduler:      scheduler,
		Location:       loc,
		MaxPets:        cfg.Pets.MaxPerOwner,
		DocumentsDir:   cfg.Documents.Dir,
		MaxUploadBytes: cfg.Documents.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      h,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	lc.Register("http server", srv.Shutdown)

	errCh := make(chan error, 1)
	go func() {
		lg.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = lc.Shutdown(context.Background())
			return err
		}
	}

	return lc.Shutdown(context.Background())
}

func openQueue(ctx context.Context, cfg *config.Config, lc *lifecycle.Manager, lg *zap.Logger) (taskqueue.Store, error) {
	switch cfg.Queue.Backend {
	case "redis":
		opts, err := redislib.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		if cfg.Redis.Password != "" {
			opts.Password = cfg.Redis.Password
		}
		if cfg.Redis.DB != 0 {
			opts.DB = cfg.Redis.DB
		}
		client := redislib.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		lc.Register("redis", func(context.Context) error { return client.Close() })
		return taskqueue.NewRedisStore(client, cfg.AppName+":jobs", lg.Named("taskqueue")), nil

	case "bolt":
		store, err := taskqueue.OpenBoltStore(cfg.Queue.BoltPath)
		if err != nil {
			return nil, err
		}
		lc.Register("bolt", func(context.Context) error { return store.Close() })
		return store, nil

	default:
		return taskqueue.NewMemoryStore(), nil
	}
}

func newSender(cfg *config.Config, lg *zap.Logger) (reminders.Sender, error) {
	switch cfg.Mail.Backend {
	case "smtp":
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			Timeout:  cfg.Mail.Timeout,
		})
	case "relay":
		headers := map[string]string{}
		if key := strings.TrimSpace(cfg.Mail.RelayAPIKey); key != "" {
			headers["Authorization"] = "Bearer " + key
		}
		client, err := httpclient.New(httpclient.Config{
			BaseURL: cfg.Mail.RelayURL,
			Timeout: cfg.Mail.Timeout,
			Headers: headers,
		})
		if err != nil {
			return nil, err
		}
		return mail.NewRelaySender(client), nil
	default:
		return mail.NewLogSender(lg), nil
	}
}
