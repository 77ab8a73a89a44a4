package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"formconsult/cmd/internal/config"
	"formconsult/cmd/internal/domain/database"
	"formconsult/cmd/internal/domain/database/repository"
	cognitoclient "formconsult/cmd/internal/integration/aws/cognito"
	"formconsult/cmd/internal/integration/email"
	"formconsult/cmd/internal/integration/rabbitmq"
	"formconsult/cmd/internal/integration/rollbar"
	"formconsult/cmd/internal/routes"
	"formconsult/cmd/internal/service"
	"formconsult/cmd/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	log.SetLevel(logLevel(cfg.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	auth, err := newAuthenticator(ctx, cfg.Auth)
	if err != nil {
		log.Fatal("failed to initialize authenticator: ", err)
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ)
	if err != nil {
		log.Fatal("failed to connect to rabbitmq: ", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Errorf("failed to close rabbitmq publisher: %v", err)
		}
	}()

	hostname, _ := os.Hostname()
	reporter := rollbar.NewReporter(cfg.Rollbar.Token, cfg.Rollbar.Environment, "", hostname)
	defer reporter.Close()

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	companyNames, err := service.NewCompanyNameCache(companyRepo, cfg.Consulting.CompanyCacheSize, cfg.Consulting.CompanyCacheTTL)
	if err != nil {
		log.Fatal("failed to create company name cache: ", err)
	}

	// Getting services
	notifService := service.NewNotificationService(notifRepo, userRepo)
	emailService := email.NewService(newEmailTransport(cfg.Email), cfg.Email.FrontendBaseURL)
	effects := &service.TransitionEffects{
		Recipients:    userRepo,
		Notifications: notifService,
		Emails:        emailService,
		Events:        publisher,
		Reporter:      reporter,
		CompanyNames:  companyNames,
		ConsumedHours: service.NewConsumedHoursPolicy(cfg.Consulting.TrackConsumedHours, companyRepo),
		Timeout:       cfg.Consulting.SideEffectTimeout,
	}
	userService := service.NewUserService(userRepo)
	apptService := service.NewAppointmentService(apptRepo, userRepo, effects)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.Log.Level))
	e.HTTPErrorHandler = routes.NewHTTPErrorHandler(reporter)
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.AllowedOrigins}))

	routes.Register(e, auth, routes.Handlers{
		Appointments:  routes.NewAppointmentDefault(apptService),
		Users:         routes.NewUserDefault(userService),
		Notifications: routes.NewNotificationDefault(notifService),
	})

	go func() {
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shut down server: %v", err)
	}
}

func newAuthenticator(ctx context.Context, cfg config.AuthConfig) (routes.Authenticator, error) {
	if cfg.Mode == "cognito" {
		client, err := cognitoclient.InitCognitoClient(ctx, cfg.CognitoRegion)
		if err != nil {
			return nil, err
		}
		return cognitoclient.NewAuthenticator(client), nil
	}
	return utils.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTIssuer), nil
}

func newEmailTransport(cfg config.EmailConfig) email.Transport {
	if cfg.Provider == "sendgrid" {
		return email.NewSendgridTransport(cfg.SendgridAPIKey, cfg.FromName, cfg.FromAddress)
	}
	return email.NewConsoleTransport(os.Stdout, cfg.FromName, cfg.FromAddress)
}

func logLevel(raw string) log.Lvl {
	switch strings.ToLower(raw) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
