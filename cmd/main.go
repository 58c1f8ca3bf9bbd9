package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	grpchandler "github.com/dtroode/credential-server/internal/api/grpc/handler"
	grpcrouter "github.com/dtroode/credential-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/credential-server/internal/api/grpc/server"
	httpctx "github.com/dtroode/credential-server/internal/api/http/context"
	httprouter "github.com/dtroode/credential-server/internal/api/http/router"
	httpserver "github.com/dtroode/credential-server/internal/api/http/server"
	"github.com/dtroode/credential-server/internal/config"
	"github.com/dtroode/credential-server/internal/identity/google"
	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/mail"
	"github.com/dtroode/credential-server/internal/model"
	"github.com/dtroode/credential-server/internal/password"
	"github.com/dtroode/credential-server/internal/ratelimit"
	"github.com/dtroode/credential-server/internal/repository/memory"
	"github.com/dtroode/credential-server/internal/repository/postgres"
	"github.com/dtroode/credential-server/internal/server"
	"github.com/dtroode/credential-server/internal/service"
	storage "github.com/dtroode/credential-server/internal/storage/minio"
	"github.com/dtroode/credential-server/internal/telemetry"
	"github.com/dtroode/credential-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const (
	shutdownTimeout     = 10 * time.Second
	healthCheckInterval = 15 * time.Second
	avatarFetchTimeout  = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogJSON)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTel.Endpoint, cfg.OTel.ServiceName, buildVersion)
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}

	store, closeStore, err := newCredentialStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer closeStore()

	hasher := password.NewBcrypt(cfg.Bcrypt.Cost)
	issuer, err := token.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTTL)
	if err != nil {
		logger.Fatal("failed to initialize token issuer", "error", err)
	}

	sender, closeSender := newEmailSender(cfg)
	defer closeSender()

	limiter, closeLimiter := newLimiter(cfg)
	defer closeLimiter()

	avatars, err := newAvatarMirror(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize avatar storage", "error", err)
	}

	verifier, err := google.NewVerifier(ctx, cfg.Google.ClientID, cfg.Google.VerifyTimeout)
	if err != nil {
		logger.Fatal("failed to initialize google verifier", "error", err)
	}
	if cfg.Google.ClientID == "" {
		logger.Warn("GOOGLE_CLIENT_ID is empty, google sign-in is disabled")
	}

	refresh := service.NewRefreshTokenManager(store, hasher, cfg.Token.RefreshTTL, logger)
	linker := service.NewOAuthIdentityLinker(verifier, store, issuer, refresh, avatars, logger)
	reset := service.NewPasswordResetFlow(store, hasher, sender, limiter, logger)

	authService, err := service.NewAuth(store, hasher, issuer, refresh, linker, reset, logger)
	if err != nil {
		logger.Fatal("failed to initialize auth service", "error", err)
	}
	if err := authService.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Fatal("failed to seed admin account", "error", err)
	}

	servers := map[model.Server]model.SecurityLayer{
		newHTTPServer(cfg, authService, store, logger): server.SecurityLayerFor(
			cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName, server.ProtoHTTP1),
	}
	if cfg.GRPC.Enabled {
		health := grpchandler.NewHealth(store, healthCheckInterval, logger)
		go health.Run(ctx)

		s := grpcrouter.New(health, logger).Register()
		servers[grpcserver.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port))] = server.SecurityLayerFor(
			cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName, server.ProtoHTTP2)
	}

	var wg sync.WaitGroup
	for s, sl := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("starting server", "server", s.Name(), "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("server failed", "server", s.Name(), "error", err, "address", s.Address())
				stop()
			}
		}(s, sl)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "server", s.Name(), "error", err)
		}
	}
	wg.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("error during tracing shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func newCredentialStore(ctx context.Context, cfg *config.Config) (model.CredentialStore, func(), error) {
	if cfg.Database.Driver == config.StoreMemory {
		return memory.NewUserRepository(), func() {}, nil
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewUserRepository(conn), func() { _ = conn.Close() }, nil
}

func newEmailSender(cfg *config.Config) (model.EmailSender, func()) {
	otpTTL := service.OTPTTL

	if cfg.Mail.Driver == config.MailKafka {
		sender := mail.NewKafkaSender(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Username, cfg.Kafka.Password,
			cfg.Kafka.UseTLS, cfg.Mail.SendTimeout, otpTTL)
		return sender, func() { _ = sender.Close() }
	}

	sender := mail.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password,
		cfg.Mail.From, cfg.Mail.FromName, cfg.Mail.SendTimeout, otpTTL)
	return sender, func() {}
}

func newLimiter(cfg *config.Config) (model.Limiter, func()) {
	if cfg.Redis.Addr == "" {
		return ratelimit.Unlimited{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return ratelimit.NewFixedWindow(client, cfg.Redis.ForgotLimit, cfg.Redis.ForgotWindow), func() { _ = client.Close() }
}

func newAvatarMirror(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*service.AvatarMirror, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}

	client, err := storage.NewClient(ctx, storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	return service.NewAvatarMirror(client, &http.Client{Timeout: avatarFetchTimeout}, logger), nil
}

func newHTTPServer(cfg *config.Config, authService *service.Auth, store model.CredentialStore, logger *logger.Logger) model.Server {
	if cfg.LogLevel > int(slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}

	r := httprouter.New(authService, authService, authService, store, httpctx.NewManager(), cfg.HTTP.CORSOrigins, logger)
	return httpserver.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
}
