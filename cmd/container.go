// cmd/container.go
//
// Root composition root. Owns infrastructure (Postgres, Redis, email
// provider) and wires the services. This is the only place that knows about
// every module.
package main

import (
	"context"
	"net/http"
	"time"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/dpang/auth-server/pkg/authapi"
	"github.com/dpang/auth-server/pkg/config"
	"github.com/dpang/auth-server/pkg/dbx"
	"github.com/dpang/auth-server/pkg/logx"
	"github.com/dpang/auth-server/pkg/notifx"
	"github.com/dpang/auth-server/pkg/notifx/notifxconsole"
	"github.com/dpang/auth-server/pkg/notifx/notifxses"
	"github.com/dpang/auth-server/pkg/password"
	"github.com/dpang/auth-server/pkg/profile/profileinfra"
	"github.com/dpang/auth-server/pkg/reset/resetinfra"
	"github.com/dpang/auth-server/pkg/reset/resetsrv"
	"github.com/dpang/auth-server/pkg/token"
	"github.com/dpang/auth-server/pkg/token/tokeninfra"
	"github.com/dpang/auth-server/pkg/token/tokensrv"
	"github.com/dpang/auth-server/pkg/user/userinfra"
	"github.com/dpang/auth-server/pkg/user/usersrv"
)

// Container holds shared infrastructure and the wired HTTP surface.
type Container struct {
	Config *config.Config

	DB    *sqlx.DB
	Redis *redis.Client

	Handlers   *authapi.AuthHandlers
	Middleware *authapi.TokenMiddleware
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("initializing application container")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — Postgres, migrations, Redis
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("database connected")

	if err := dbx.RunMigrations(c.Config.Database.URL()); err != nil {
		logx.Fatalf("failed to migrate database: %v", err)
	}

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		logx.Fatalf("failed to connect to redis: %v", err)
	}
	logx.Info("redis connected")
}

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	cfg := c.Config

	if cfg.Auth.JWTSecret == "" {
		logx.Fatal("JWT_SECRET_KEY is required")
	}

	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	codec := token.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, cfg.Auth.Issuer)

	userRepo := userinfra.NewPostgresUserRepository(c.DB)
	sessionRepo := tokeninfra.NewRedisSessionRepository(c.Redis, cfg.Auth.SessionTTL)
	challengeRepo := resetinfra.NewRedisChallengeRepository(c.Redis, cfg.Auth.ChallengeTTL)

	httpClient := &http.Client{Timeout: cfg.Profile.RequestTimeout}
	profileClient := profileinfra.NewHTTPUserClient(cfg.Profile.UserServiceURL, httpClient)
	mileageClient := profileinfra.NewHTTPMileageClient(cfg.Profile.MileageServiceURL, httpClient)

	mailer := notifx.NewClient(c.emailProvider())

	userService := usersrv.NewUserService(userRepo, hasher, profileClient, mileageClient)
	tokenService := tokensrv.NewTokenService(userRepo, sessionRepo, codec)
	resetService, err := resetsrv.NewResetService(userRepo, challengeRepo, hasher, mailer, cfg.Notifx.FromAddress)
	if err != nil {
		logx.Fatalf("failed to initialize reset service: %v", err)
	}

	c.Handlers = authapi.NewAuthHandlers(userService, tokenService, resetService)
	c.Middleware = authapi.NewTokenMiddleware(tokenService)
}

// emailProvider selects the outbound email backend. SES is the production
// path; console is the default so local stacks need no AWS credentials.
func (c *Container) emailProvider() notifx.EmailSender {
	switch c.Config.Notifx.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
			awsConfig.WithRegion(c.Config.Notifx.AWSRegion))
		if err != nil {
			logx.Fatalf("failed to load AWS config: %v", err)
		}
		logx.WithField("region", c.Config.Notifx.AWSRegion).Info("using SES email provider")
		return notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), c.Config.Notifx.FromAddress)
	default:
		logx.Info("using console email provider")
		return notifxconsole.NewConsoleProvider()
	}
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.WithError(err).Warn("failed to close redis client")
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.WithError(err).Warn("failed to close database")
		}
	}
	logx.Info("container cleaned up")
}
