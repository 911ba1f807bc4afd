// cmd/container.go
//
// Root composition root. Owns infrastructure (DB, Redis, metrics, notifier)
// and composes the IAM container.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/config"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/metricsx"
	"github.com/Abraxas-365/gatekeeper/pkg/notifx"
	"github.com/Abraxas-365/gatekeeper/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/gatekeeper/pkg/notifx/notifxses"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and composed module containers.
type Container struct {
	Config *config.Config
	Log    *logx.Logger

	// Infrastructure (shared across all modules)
	DB       *sqlx.DB
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metricsx.Collector
	Notifier *notifx.Client

	// Bounded-context containers
	IAM *iamcontainer.Container
}

func NewContainer(ctx context.Context, cfg *config.Config, log *logx.Logger) (*Container, error) {
	log.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg, Log: log}

	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initModules(); err != nil {
		c.Cleanup()
		return nil, err
	}

	log.Info("✅ Application container initialized")
	return c, nil
}

// ---------------------------------------------------------------------------
// Infrastructure: DB, Redis, metrics, notifications
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure(ctx context.Context) error {
	c.Log.Info("🏗️ Initializing infrastructure...")

	// 1. Database
	if c.Config.Database.Driver == "postgres" {
		db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
		db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
		db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
		c.DB = db
		c.Log.Info("  ✅ Database connected")

		if c.Config.Database.AutoMigrate {
			if err := userinfra.RunMigrations(c.Config.Database.URL()); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			c.Log.Info("  ✅ Migrations applied")
		}
	} else {
		c.Log.Warnf("  ⚠️  STORE_DRIVER=%s, records are kept in memory", c.Config.Database.Driver)
	}

	// 2. Redis (optional, backs the identity profile cache)
	if c.Config.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Address(),
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			c.Log.WithError(err).Warn("  ⚠️  Redis unreachable, identity cache disabled")
			_ = rdb.Close()
		} else {
			c.Redis = rdb
			c.Log.Info("  ✅ Redis connected")
		}
	}

	// 3. Metrics
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metricsx.NewCollector(c.Registry)

	// 4. Operator notifications
	if err := c.initNotifier(ctx); err != nil {
		return err
	}

	c.Log.Info("✅ Infrastructure initialized")
	return nil
}

func (c *Container) initNotifier(ctx context.Context) error {
	n := c.Config.Notifx
	if !n.Enabled() {
		return nil
	}

	var provider notifx.EmailSender
	switch n.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(n.AWSRegion))
		if err != nil {
			return fmt.Errorf("load AWS SDK config: %w", err)
		}
		provider = notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), n.FromAddress)
		c.Log.Infof("  ✅ SES notifier configured (region: %s)", n.AWSRegion)

	case "console":
		provider = notifxconsole.NewConsoleProvider(c.Log)
		c.Log.Info("  ✅ Console notifier configured")

	default:
		return fmt.Errorf("unknown NOTIFX_PROVIDER: %s (use 'console' or 'ses')", n.Provider)
	}

	c.Notifier = notifx.NewClient(provider, n.FromAddress)
	return nil
}

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

func (c *Container) initModules() error {
	c.Log.Info("📦 Initializing modules...")

	iamC, err := iamcontainer.New(iamcontainer.Deps{
		Cfg:      c.Config,
		Log:      c.Log,
		Metrics:  c.Metrics,
		DB:       c.DB,
		Redis:    c.Redis,
		Notifier: c.Notifier,
	})
	if err != nil {
		return fmt.Errorf("iam container: %w", err)
	}
	c.IAM = iamC
	return nil
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	c.Log.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Log.Errorf("Error closing database: %v", err)
		} else {
			c.Log.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Errorf("Error closing Redis: %v", err)
		} else {
			c.Log.Info("  ✅ Redis connection closed")
		}
	}

	c.Log.Info("✅ Cleanup complete")
}
