package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hiresage/hiresage/internal/api"
	"github.com/hiresage/hiresage/internal/candidate"
	"github.com/hiresage/hiresage/internal/evaluation"
	"github.com/hiresage/hiresage/internal/letters"
	"github.com/hiresage/hiresage/internal/logger"
	"github.com/hiresage/hiresage/internal/mailer"
	"github.com/hiresage/hiresage/internal/orchestrator"
	"github.com/hiresage/hiresage/internal/provider"
	"github.com/hiresage/hiresage/internal/provider/gemini"
	"github.com/hiresage/hiresage/internal/provider/openai"
	"github.com/hiresage/hiresage/internal/scoring"
	"github.com/hiresage/hiresage/internal/secrets"
)

const (
	defaultListen        = ":8080"
	defaultSweepDelay    = time.Second
	defaultSweepInterval = 5 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hiresage evaluation service",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (overrides config)")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting hiresage", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	store := candidate.NewMemStore()
	seedTemplates(ctx, store, config, logger)

	gateways := buildGateways(ctx, config.Providers, logger)
	if len(gateways) == 0 {
		logger.Warn("no reasoning provider configured, the heuristic scorer will handle every session")
	} else {
		logger.Info("provider chain assembled", zap.Strings("providers", gateways.Names()))
	}

	evaluator := evaluation.New(gateways, logger, config.MaxLogLength)

	scoringCfg := scoring.DefaultConfig()
	if config.Scoring != nil {
		scoringCfg = *config.Scoring
	}

	orch := orchestrator.New(orchestrator.Config{SweepDelay: sweepDelay(config)}, orchestrator.Deps{
		Store:      store,
		Aggregator: scoring.NewAggregator(scoringCfg),
		Evaluator:  evaluator,
		Letters:    letters.New(config.LettersDir, logger),
		Mailer:     buildMailer(config.Email, logger),
		Logger:     logger,
	})

	scheduler := orchestrator.NewScheduler(sweepInterval(config), logger, orchestrator.SweepTask(orch, logger))
	scheduler.Start(ctx)
	defer scheduler.Stop()

	listen := config.Listen
	if flagListen := viper.GetString("listen"); flagListen != "" {
		listen = flagListen
	}
	if listen == "" {
		listen = defaultListen
	}

	server := &http.Server{
		Addr:    listen,
		Handler: api.NewServer(store, orch, logger).Router(),
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", listen))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
}

// buildGateways assembles the provider chain in configured priority order.
// Providers whose credentials cannot be loaded are skipped with a warning.
func buildGateways(ctx context.Context, cfg *ProvidersConfig, log *zap.Logger) provider.Chain {
	if cfg == nil {
		return nil
	}

	order := cfg.Order
	if len(order) == 0 {
		order = []string{"gemini", "openai"}
	}

	var chain provider.Chain
	for _, name := range order {
		var gw provider.Gateway
		var err error

		switch strings.TrimSpace(strings.ToLower(name)) {
		case "gemini":
			gw, err = buildGemini(ctx, cfg)
		case "openai":
			gw, err = buildOpenAI(cfg)
		default:
			log.Warn("unknown provider in order, skipping", zap.String("provider", name))
			continue
		}

		if err != nil {
			log.Warn("skipping provider", zap.String("provider", name), zap.Error(err))
			continue
		}

		model := ""
		if m, ok := gw.(interface{ Model() string }); ok {
			model = m.Model()
		}
		log.Info("provider ready", logger.ProviderFields(gw.Name(), model)...)

		chain = append(chain, gw)
	}

	return chain
}

func buildGemini(ctx context.Context, cfg *ProvidersConfig) (provider.Gateway, error) {
	if cfg.Gemini == nil {
		return nil, errors.New("gemini is not configured")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		Env:  "GEMINI_API_KEY",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set providers.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	return gemini.New(ctx, apiKey, cfg.Gemini.Model, cfg.Timeout)
}

func buildOpenAI(cfg *ProvidersConfig) (provider.Gateway, error) {
	if cfg.OpenAI == nil {
		return nil, errors.New("openai is not configured")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "openai api key",
		Env:  "OPENAI_API_KEY",
		File: cfg.OpenAI.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set providers.openai.api-key-file, OPENAI_API_KEY_FILE or OPENAI_API_KEY)", err)
	}

	return openai.New(apiKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, cfg.Timeout)
}

func buildMailer(cfg *EmailConfig, logger *zap.Logger) mailer.Sender {
	if cfg == nil || !cfg.Enabled {
		return mailer.NewDisabled(logger)
	}

	password, err := secrets.Load(secrets.Source{
		Name: "smtp password",
		Env:  "SMTP_PASSWORD",
		File: cfg.PasswordFile,
	})
	if err != nil {
		// Unauthenticated relays are fine, but a broken password file is not.
		if strings.TrimSpace(cfg.PasswordFile) != "" {
			logger.Warn("smtp password not loadable, email disabled", zap.Error(err))
			return mailer.NewDisabled(logger)
		}
		password = ""
	}

	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		From:     cfg.From,
		Username: cfg.Username,
		Password: password,
	}, logger)
	if err != nil {
		logger.Warn("smtp sender not usable, email disabled", zap.Error(err))
		return mailer.NewDisabled(logger)
	}

	return sender
}

func seedTemplates(ctx context.Context, store candidate.Store, config *Config, logger *zap.Logger) {
	for _, t := range config.Templates {
		tpl := &candidate.Template{
			ID:           t.ID,
			Name:         t.Name,
			Role:         t.Role,
			Difficulty:   t.Difficulty,
			PassingScore: t.PassingScore,
		}
		if err := store.PutTemplate(ctx, tpl); err != nil {
			logger.Warn("seeding template failed", zap.String("template_id", t.ID), zap.Error(err))
			continue
		}
		logger.Info("template seeded",
			zap.String("template_id", t.ID),
			zap.String("name", t.Name),
			zap.Int("passing_score", t.PassingScore),
		)
	}
}

func sweepDelay(config *Config) time.Duration {
	if config.Sweep != nil && config.Sweep.Delay > 0 {
		return config.Sweep.Delay
	}
	return defaultSweepDelay
}

func sweepInterval(config *Config) time.Duration {
	if config.Sweep != nil && config.Sweep.Interval > 0 {
		return config.Sweep.Interval
	}
	return defaultSweepInterval
}
