package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurorahealth/medscheduler/cmd/mainconfig"
	"github.com/aurorahealth/medscheduler/internal/agents"
	"github.com/aurorahealth/medscheduler/internal/analytics"
	"github.com/aurorahealth/medscheduler/internal/api/router"
	"github.com/aurorahealth/medscheduler/internal/appointments"
	"github.com/aurorahealth/medscheduler/internal/auth"
	appconfig "github.com/aurorahealth/medscheduler/internal/config"
	"github.com/aurorahealth/medscheduler/internal/content"
	"github.com/aurorahealth/medscheduler/internal/notify"
	"github.com/aurorahealth/medscheduler/internal/observability/metrics"
	"github.com/aurorahealth/medscheduler/internal/questionnaires"
	"github.com/aurorahealth/medscheduler/internal/reminders"
	"github.com/aurorahealth/medscheduler/internal/users"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medscheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	// Stores
	userStore := users.NewStore(dynamoClient, cfg.UsersTable, logger)
	apptStore := appointments.NewStore(dynamoClient, cfg.AppointmentsTable, logger)
	reminderStore := reminders.NewStore(dynamoClient, cfg.RemindersTable, logger)
	questionnaireStore := questionnaires.NewStore(dynamoClient, cfg.QuestionnairesTable, logger)

	// Content generation: Gemini first, Bedrock as fallback, templates always.
	llm := buildLLM(cfg, awsCfg, logger)
	contentMetrics := metrics.NewContentMetrics(nil)
	generator := content.NewGenerator(llm, content.GeneratorConfig{
		ModelID:     cfg.BedrockModelID,
		ClinicName:  cfg.ClinicName,
		ClinicPhone: cfg.ClinicPhone,
	}, contentMetrics, logger)

	sender := buildEmailSender(cfg, awsCfg, logger)
	dispatcher := agents.Select(cfg.UseMockAgents, llm, logger)

	// Services
	slots := appointments.NewSlotGenerator(userStore, apptStore, appointments.SlotGeneratorConfig{
		DemoDoctorEnabled: cfg.DemoDoctorEnabled,
		DemoDoctorName:    cfg.DemoDoctorName,
		DemoSpecialty:     cfg.DemoSpecialty,
	}, logger)
	apptService := appointments.NewService(apptStore, userStore, dispatcher, generator, sender, logger)
	scheduler := reminders.NewScheduler(reminderStore, apptStore, userStore, dispatcher, generator, sender, logger)
	questionnaireService := questionnaires.NewService(questionnaireStore, apptStore, dispatcher, generator, logger)
	analyticsService := analytics.NewService(apptStore, questionnaireStore, userStore, reminderStore, logger)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Background reminder dispatch loop
	reminderMetrics := metrics.NewReminderMetrics(nil)
	loop := reminders.NewDispatcher(reminderStore, userStore, generator, sender, reminderMetrics,
		cfg.ReminderPollInterval, cfg.ReminderBatchSize, logger)
	loopCtx, stopLoop := context.WithCancel(context.Background())
	go loop.Run(loopCtx)

	r := router.New(&router.Config{
		Logger:               logger,
		TokenIssuer:          issuer,
		AuthHandler:          auth.NewHandler(userStore, issuer, logger),
		AppointmentsHandler:  appointments.NewHandler(apptService, slots, logger),
		RemindersHandler:     reminders.NewHandler(scheduler, logger),
		QuestionnaireHandler: questionnaires.NewHandler(questionnaireService, logger),
		AnalyticsHandler:     analytics.NewHandler(analyticsService, logger),
		MetricsHandler:       promhttp.Handler(),
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		AuthRateLimit:        2,
		AuthRateBurst:        10,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopLoop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildLLM selects the completion backend. Gemini when an API key is set,
// Bedrock when a model id is set, chained primary-then-fallback when both.
// Returns nil when neither is configured; the generator then runs on
// templates alone.
func buildLLM(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) content.LLMClient {
	var gemini content.LLMClient
	if cfg.GeminiAPIKey != "" {
		client, err := content.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to initialize gemini client", "error", err)
		} else {
			gemini = client
		}
	}

	var bedrock content.LLMClient
	if cfg.BedrockModelID != "" {
		bedrock = content.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	switch {
	case gemini != nil && bedrock != nil:
		return content.NewFallbackLLMClient(gemini, bedrock, logger)
	case gemini != nil:
		return gemini
	case bedrock != nil:
		return bedrock
	default:
		logger.Warn("no LLM configured, content generation uses templates only")
		return nil
	}
}

func buildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "ses":
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
	case "sendgrid":
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
	default:
		return notify.NewMockSender(logger)
	}
}
