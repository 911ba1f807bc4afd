package iamcontainer

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/config"
	"github.com/Abraxas-365/gatekeeper/pkg/iam"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/auth"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/identity"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/identity/identityinfra"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/profile/profileapi"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/profile/profilesrv"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/gatekeeper/pkg/logx"
	"github.com/Abraxas-365/gatekeeper/pkg/metricsx"
	"github.com/Abraxas-365/gatekeeper/pkg/notifx"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies this bounded context requires.
// ---------------------------------------------------------------------------

type Deps struct {
	Cfg     *config.Config
	Log     *logx.Logger
	Metrics metricsx.Recorder

	// DB is nil when STORE_DRIVER=memory
	DB *sqlx.DB

	// Redis is nil when no cache is configured
	Redis *redis.Client

	// Notifier is nil when operator alerts are disabled
	Notifier *notifx.Client

	// HTTPClient overrides the identity provider transport (tests)
	HTTPClient *http.Client
}

// ---------------------------------------------------------------------------
// Container: the public surface of the IAM module.
// ---------------------------------------------------------------------------

type Container struct {
	Users    user.Repository
	Identity identity.Client
	Audit    auth.AuditService

	Verifier   *auth.Verifier
	UserSync   *auth.UserSync
	Middleware *auth.Middleware

	ProfileService  *profilesrv.ProfileService
	ProfileHandlers *profileapi.Handlers
}

// New constructs the IAM dependency graph.
// Order matters: infra → repos → services → handlers → middleware.
func New(deps Deps) (*Container, error) {
	log := deps.Log
	if log == nil {
		log = logx.Default()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = metricsx.Nop{}
	}
	cfg := deps.Cfg

	log.Info("🔧 Initializing IAM container...")
	c := &Container{}

	// ── Repositories ─────────────────────────────────────────────────────

	if deps.DB != nil {
		c.Users = userinfra.NewPostgresUserRepository(deps.DB)
		log.Info("  ✅ Using postgres user repository")
	} else {
		c.Users = userinfra.NewMemoryUserRepository()
		log.Warnf("  ⚠️  Using in-memory user repository (not recommended for production)")
	}

	// ── Identity provider ────────────────────────────────────────────────

	c.Identity = identityinfra.NewHTTPClient(
		cfg.Identity.SecretKey,
		cfg.Identity.BaseURL,
		cfg.Identity.Timeout,
		deps.HTTPClient,
	)
	if deps.Redis != nil && cfg.Identity.CacheTTL > 0 {
		c.Identity = identityinfra.NewCachedClient(c.Identity, deps.Redis, cfg.Identity.CacheTTL, log)
		log.Infof("  ✅ Identity profile cache enabled (ttl: %s)", cfg.Identity.CacheTTL)
	}

	// ── Auth ─────────────────────────────────────────────────────────────

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		PublicKeyPEM:      cfg.Auth.JWTPublicKeyPEM,
		Secret:            cfg.Auth.JWTSecret,
		Issuer:            cfg.Auth.Issuer,
		AuthorizedParties: cfg.Auth.AuthorizedParties,
	})
	if err != nil {
		return nil, fmt.Errorf("session token verifier: %w", err)
	}
	c.Verifier = verifier

	c.Audit = authinfra.NewLogxAuditService(log)
	c.UserSync = auth.NewUserSync(c.Users, c.Identity, auth.SyncPolicy(cfg.Auth.SyncPolicy), c.Audit, metrics, log)
	c.Middleware = auth.NewMiddleware(c.UserSync, c.Audit, metrics, log)
	log.Infof("  ✅ User sync policy: %s", c.UserSync.Policy())

	// ── Profile ──────────────────────────────────────────────────────────

	var alertOpts []notifx.Option
	if cfg.Notifx.SESConfigSetID != "" {
		alertOpts = append(alertOpts, notifx.WithConfigID(cfg.Notifx.SESConfigSetID))
	}
	alerter, err := profilesrv.NewAlerter(deps.Notifier, cfg.Notifx.AlertTo, log, alertOpts...)
	if err != nil {
		return nil, fmt.Errorf("rollback alerter: %w", err)
	}
	if alerter == nil {
		log.Warnf("  ⚠️  Rollback alerts disabled (no notifier or NOTIFX_ALERT_TO)")
	}

	c.ProfileService = profilesrv.NewProfileService(c.Users, c.Identity, alerter, metrics, log)
	c.ProfileHandlers = profileapi.NewHandlers(c.ProfileService, c.Audit)

	log.Info("✅ IAM container initialized")
	return c, nil
}

// RegisterRoutes mounts the IAM routes on app, each behind token verification.
func (c *Container) RegisterRoutes(app *fiber.App, reauthMaxAge time.Duration) {
	api := app.Group(iam.APIPrefix)
	c.ProfileHandlers.RegisterRoutes(api, c.Verifier.Middleware(), c.Middleware, reauthMaxAge)
}
