package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/comepass"
	"github.com/samirwankhede/roomstats/internal/config"
	"github.com/samirwankhede/roomstats/internal/daycache"
	kafkax "github.com/samirwankhede/roomstats/internal/kafka"
	"github.com/samirwankhede/roomstats/internal/mailer"
	redisx "github.com/samirwankhede/roomstats/internal/redis"
	"github.com/samirwankhede/roomstats/internal/scylla"
	"github.com/samirwankhede/roomstats/internal/service/collector"
	"github.com/samirwankhede/roomstats/internal/store"
	"github.com/samirwankhede/roomstats/internal/store/snapshots"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreScylla   = "scylla"
)

// App holds the shared clients and stores of one process. Redis, DB and Runs are nil
// when unavailable.
type App struct {
	Log        *zap.Logger
	Cfg        config.Config
	Redis      *redis.Client
	DB         *store.DB
	Days       daycache.Store
	Normalizer *analytics.Normalizer
	Comepass   *comepass.Client
	Runs       *store.CollectRunsRepository

	closers []func()
}

// New connects the day store named by DAY_STORE, tiered over DURABLE_STORE when set.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	rooms, err := config.LoadRoomNames(cfg.RoomNamesFile)
	if err != nil {
		return nil, err
	}
	a.Normalizer = analytics.NewNormalizer(rooms)

	if err := a.connectRedis(ctx, cfg.DayStore == StoreRedis); err != nil {
		return nil, err
	}
	needsPostgres := cfg.DayStore == StorePostgres || cfg.DurableStore == StorePostgres
	if err := a.connectPostgres(ctx, needsPostgres); err != nil {
		return nil, err
	}

	primary, err := a.dayStore(ctx, cfg.DayStore)
	if err != nil {
		return nil, err
	}
	a.Days = primary
	if cfg.DurableStore != "" && cfg.DurableStore != cfg.DayStore {
		durable, err := a.dayStore(ctx, cfg.DurableStore)
		if err != nil {
			return nil, err
		}
		a.Days = daycache.NewTiered(log, primary, durable)
	}

	var tokens comepass.TokenStore
	if a.Redis != nil {
		tokens = redisx.NewTokenCache(a.Redis)
	}
	a.Comepass = comepass.NewClient(log, comepass.Config{
		BaseURL:  cfg.ComepassBaseURL,
		ID:       cfg.ComepassID,
		Password: cfg.ComepassPwd,
	}, tokens)

	log.Info("day store ready",
		zap.String("store", cfg.DayStore),
		zap.String("durable", cfg.DurableStore),
		zap.Bool("redis", a.Redis != nil),
		zap.Bool("postgres", a.DB != nil))
	ok = true
	return a, nil
}

// connectRedis pings Redis. Failure is fatal only when required.
func (a *App) connectRedis(ctx context.Context, required bool) error {
	if a.Cfg.RedisAddr == "" {
		if required {
			return fmt.Errorf("DAY_STORE=redis needs REDIS_ADDR")
		}
		return nil
	}
	client := redisx.NewClient(a.Cfg.RedisAddr)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if required {
			return fmt.Errorf("redis %s: %w", a.Cfg.RedisAddr, err)
		}
		a.Log.Warn("redis unavailable, using in-process token cache and rate limit", zap.Error(err))
		return nil
	}
	a.Redis = client
	a.closers = append(a.closers, func() { _ = client.Close() })
	return nil
}

// connectPostgres opens the pool and schema. Without a store on Postgres it is only
// used for the collection audit trail, so failure is logged and ignored.
func (a *App) connectPostgres(ctx context.Context, required bool) error {
	if a.Cfg.PostgresURL == "" {
		if required {
			return fmt.Errorf("postgres store needs POSTGRES_URL")
		}
		return nil
	}
	db, err := store.NewDB(ctx, a.Cfg.PostgresURL, int32(a.Cfg.MaxDBConnections))
	if err == nil {
		if err = db.EnsureSchema(ctx); err != nil {
			db.Close()
		}
	}
	if err != nil {
		if required {
			return fmt.Errorf("postgres: %w", err)
		}
		a.Log.Warn("postgres unavailable, collection runs are not recorded", zap.Error(err))
		return nil
	}
	a.DB = db
	a.Runs = store.NewCollectRunsRepository(db)
	a.closers = append(a.closers, db.Close)
	return nil
}

func (a *App) dayStore(ctx context.Context, kind string) (daycache.Store, error) {
	switch kind {
	case StoreMemory:
		return daycache.NewMemory(), nil
	case StoreRedis:
		return redisx.NewDayCache(a.Redis, a.Cfg.DayCacheTTL), nil
	case StorePostgres:
		return snapshots.NewSnapshotsRepository(a.DB, a.Log), nil
	case StoreScylla:
		session, err := scylla.NewSession(scylla.Config{
			Hosts:       a.Cfg.ScyllaHosts,
			Port:        a.Cfg.ScyllaPort,
			Keyspace:    a.Cfg.ScyllaKeyspace,
			Username:    a.Cfg.ScyllaUsername,
			Password:    a.Cfg.ScyllaPassword,
			Consistency: a.Cfg.ScyllaConsistency,
			LocalDC:     a.Cfg.ScyllaLocalDC,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, session.Close)
		days := scylla.NewDayCache(session)
		if err := days.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("scylla schema: %w", err)
		}
		return days, nil
	}
	return nil, fmt.Errorf("unknown day store %q", kind)
}

// Collector builds the collection service. jobs is nil for inline collection.
func (a *App) Collector(jobs collector.JobPublisher) *collector.CollectorService {
	var runs collector.RunRecorder
	if a.Runs != nil {
		runs = a.Runs
	}
	return collector.NewCollectorService(a.Log, a.Comepass, a.Days, a.Normalizer, runs, jobs)
}

// CollectProducer returns a producer on COLLECT_TOPIC, or nil without brokers.
func (a *App) CollectProducer() *kafkax.Producer {
	brokers := kafkax.Brokers(a.Cfg.KafkaBrokers)
	if len(brokers) == 0 {
		return nil
	}
	p := kafkax.NewProducer(brokers, a.Cfg.CollectTopic)
	a.closers = append(a.closers, func() { _ = p.Close() })
	return p
}

// MailSender uses SMTP when a host is configured and an in-memory outbox otherwise.
func (a *App) MailSender() mailer.Sender {
	if a.Cfg.SMTPHost == "" {
		a.Log.Warn("SMTP_HOST not set, mail is kept in memory")
		return &mailer.Outbox{}
	}
	return &mailer.SMTPSender{
		Host: a.Cfg.SMTPHost,
		Port: a.Cfg.SMTPPort,
		User: a.Cfg.SMTPUser,
		Pass: a.Cfg.SMTPPass,
		From: a.Cfg.SMTPFrom,
	}
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
