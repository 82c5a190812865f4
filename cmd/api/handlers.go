package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/kdacanay/wrc-leads/internal/config"
	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/infra/database"
	"github.com/kdacanay/wrc-leads/internal/infra/http/handlers"
	"github.com/kdacanay/wrc-leads/internal/infra/http/middleware"
	"github.com/kdacanay/wrc-leads/internal/infra/mail"
	"github.com/kdacanay/wrc-leads/internal/infra/memory"
	"github.com/kdacanay/wrc-leads/internal/infra/queue"
	"github.com/kdacanay/wrc-leads/internal/infra/session"
	"github.com/kdacanay/wrc-leads/internal/infra/worker"
	"github.com/kdacanay/wrc-leads/internal/observability/metrics"
	"github.com/kdacanay/wrc-leads/internal/usecase"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

// devAdmin is the only profile of the in-memory user store.
var devAdmin = entity.User{ID: "dev-admin", FullName: "Dev Admin", Email: "admin@localhost", Role: entity.RoleAdmin}

// app is the fully wired server plus the resources it must release.
type app struct {
	router  *handlers.Router
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type stores struct {
	leads      entity.LeadStore
	users      entity.UserRepositoryInterface
	identities entity.IdentityProvider
	db         *sql.DB
}

func buildApp(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*app, error) {
	a := &app{}

	// 1. Stores
	st, err := openStores(ctx, cfg, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		sessions usecase.SessionStore = memory.NewSessionStore()
		rdb      *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		sessions = session.NewRedisStore(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set; import sessions are kept in memory")
	}

	// 2. Assignment notifications
	var (
		producer usecase.QueueProducerInterface
		amqpConn *amqp091.Connection
	)
	if cfg.RabbitMQURL != "" {
		rmq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rmq.Close)
		amqpConn = rmq.Conn
		producer = queue.NewProducer(rmq.Ch)

		if cfg.MailHost != "" {
			sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
			mailer := mail.NewAssignmentMailer(sender, cfg.PublicBaseURL, logger)
			consumer := queue.NewWorker(rmq.Ch, mailer, logger)
			go func() {
				if err := consumer.Start(ctx, queue.QueueName); err != nil {
					logger.Error("assignment worker stopped", "error", err)
				}
			}()
		}
	}

	// 3. Use cases
	leadMetrics := metrics.NewLeadMetrics(prometheus.DefaultRegisterer)
	guard := usecase.NewStoreGuard(cfg.StoreTimeout, logger)
	notifier := usecase.NewAssignmentNotifier(producer, logger)

	journal := usecase.NewJournalService(st.leads, guard, leadMetrics, logger)
	queries := usecase.NewLeadQueries(st.leads, guard, logger)
	createLead := usecase.NewCreateLeadUseCase(st.leads, st.users, guard, notifier, logger)
	updateLead := usecase.NewUpdateLeadUseCase(journal, logger)
	assignLead := usecase.NewAssignLeadUseCase(journal, st.users, notifier, logger)
	bulk := usecase.NewBulkOperationsUseCase(journal, st.users, notifier, leadMetrics, cfg.BulkChunkSize, logger)
	importLeads := usecase.NewImportLeadsUseCase(sessions, st.leads, guard, leadMetrics, logger, cfg.ImportSessionTTL, cfg.ImportMaxBytes)
	exportLeads := usecase.NewExportLeadsUseCase(queries)
	deleteUser := usecase.NewDeleteUserUseCase(st.users, st.identities, guard, logger)

	if cfg.ProjectionRepairInterval > 0 {
		go worker.NewProjectionWorker(st.leads, journal, cfg.ProjectionRepairInterval, logger).Start(ctx)
	}

	// 4. Handlers
	a.router = &handlers.Router{
		Leads:          handlers.NewLeadHandler(queries, createLead, updateLead, assignLead, logger),
		Journal:        handlers.NewJournalHandler(journal, logger),
		Imports:        handlers.NewImportHandler(importLeads, logger),
		Bulk:           handlers.NewBulkHandler(bulk, logger),
		Export:         handlers.NewExportHandler(exportLeads, logger),
		Users:          handlers.NewUserHandler(deleteUser, st.users, logger),
		Health:         handlers.NewHealthHandler(st.db, amqpConn, rdb),
		Auth:           middleware.NewAuthenticator(cfg.JWTSecret, st.users, logger),
		Limiter:        middleware.NewRateLimiter(30, time.Minute),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AccessLog:      cfg.Env == "development",
	}
	return a, nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *logging.Logger, a *app) (*stores, error) {
	if cfg.UseMemoryStore {
		logger.Warn("using in-memory lead store; data is lost on restart", "dev_admin_uid", devAdmin.ID)
		users := memory.NewUserRepo(devAdmin)
		return &stores{leads: memory.NewLeadStore(), users: users, identities: users}, nil
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	feed, err := database.NewChangeFeed(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("listen for lead changes: %w", err)
	}
	a.closers = append(a.closers, feed.Close)
	go feed.Run(ctx)

	return &stores{
		leads:      database.NewLeadRepository(db, feed),
		users:      database.NewUserRepository(db),
		identities: database.NewIdentityRepository(db),
		db:         db,
	}, nil
}
