package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"mortgage-voice-relay/handler"
	"mortgage-voice-relay/internal/config"
	"mortgage-voice-relay/internal/integrations/paramstore"
	"mortgage-voice-relay/internal/integrations/xai"
	"mortgage-voice-relay/internal/mailer"
	"mortgage-voice-relay/internal/repository"
	"mortgage-voice-relay/internal/server"
	"mortgage-voice-relay/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	// ---- Optional AWS integrations ----
	var params *paramstore.Client
	var deliveries usecase.DeliveryLogger
	if cfg.UsesAWS() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		if cfg.ParamPrefix != "" {
			params, err = paramstore.New(awsssm.NewFromConfig(awsCfg), cfg.ParamPrefix)
			if err != nil {
				slog.Error("failed to create SSM client", "err", err)
				os.Exit(1)
			}
		}
		if cfg.DeliveryTable != "" {
			deliveryClient, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.DeliveryTable)
			if err != nil {
				slog.Error("failed to create delivery log client", "err", err)
				os.Exit(1)
			}
			deliveries = deliveryClient
		}
	}

	// ---- Clients ----
	xaiOpts := []xai.Option{xai.WithBaseURL(cfg.XAIBaseURL), xai.WithTimeout(cfg.XAITimeout)}
	switch {
	case cfg.XAIAPIKey != "":
		xaiOpts = append(xaiOpts, xai.WithAPIKey(cfg.XAIAPIKey))
	case params != nil:
		xaiOpts = append(xaiOpts, xai.WithParamStore(params, params.Name("xai-api-key")))
	default:
		slog.Warn("XAI_API_KEY is not set; chat and summary requests will fail")
	}
	xaiClient, err := xai.NewClient(xaiOpts...)
	if err != nil {
		slog.Error("failed to create xAI client", "err", err)
		os.Exit(1)
	}

	mail := cfg.MailSettings()
	if mail.Password == "" && params != nil {
		pass, ok, err := params.Lookup(ctx, params.Name("smtp-password"))
		if err != nil {
			slog.Error("failed to read SMTP password from SSM", "err", err)
			os.Exit(1)
		}
		if ok {
			mail.Password = pass
		}
	}
	if missing := mail.MissingKeys(); len(missing) > 0 {
		slog.Warn("SMTP is not fully configured; email requests will fail", "missing", missing)
	}
	mailClient, err := mailer.New(mail)
	if err != nil {
		slog.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	// ---- Services ----
	chatService, err := usecase.NewChatService(xaiClient, cfg.SystemPrompt, cfg.XAIModel)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}
	summaryService, err := usecase.NewSummaryService(xaiClient, cfg.SummaryPrompt, cfg.XAIModel)
	if err != nil {
		slog.Error("failed to create summary service", "err", err)
		os.Exit(1)
	}
	emailService, err := usecase.NewEmailService(mail, mailClient, deliveries)
	if err != nil {
		slog.Error("failed to create email service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(handler.Deps{
		Chat:           chatService,
		Summary:        summaryService,
		Email:          emailService,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if cfg.IsLambda() {
		lambda.Start(h.Handle)
		return
	}

	if err := serve(ctx, cfg, h); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

// serve runs the HTTP server until SIGINT or SIGTERM, then drains it.
func serve(ctx context.Context, cfg *config.Config, h *handler.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Host
	srvCfg.Port = cfg.Port
	srv := server.NewServer(h, srvCfg)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return errors.Join(srv.Shutdown(shutdownCtx), <-errCh)
}
