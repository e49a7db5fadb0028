package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hiresage/hiresage/internal/interview"
	"github.com/hiresage/hiresage/internal/scoring"
)

const app = "hiresage"

// Config is the full configuration tree, read from hiresage.yaml.
type Config struct {
	Listen       string `mapstructure:"listen"`
	LettersDir   string `mapstructure:"letters-dir"`
	MaxLogLength int    `mapstructure:"max-log-length"`

	Providers *ProvidersConfig `mapstructure:"providers"`
	Scoring   *scoring.Config  `mapstructure:"scoring"`
	Email     *EmailConfig     `mapstructure:"email"`
	Sweep     *SweepConfig     `mapstructure:"sweep"`

	Templates []TemplateConfig `mapstructure:"templates"`
}

// ProvidersConfig lists the reasoning providers in priority order. A provider
// without credentials is dropped from the chain at startup, not per call.
type ProvidersConfig struct {
	Order   []string      `mapstructure:"order"`
	Timeout time.Duration `mapstructure:"timeout"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
	OpenAI  *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	From         string `mapstructure:"from"`
	Username     string `mapstructure:"username"`
	PasswordFile string `mapstructure:"password-file"`
}

type SweepConfig struct {
	Delay    time.Duration `mapstructure:"delay"`
	Interval time.Duration `mapstructure:"interval"`
}

// TemplateConfig seeds an interview template into the store at startup.
type TemplateConfig struct {
	ID           string               `mapstructure:"id"`
	Name         string               `mapstructure:"name"`
	Role         string               `mapstructure:"role"`
	Difficulty   interview.Difficulty `mapstructure:"difficulty"`
	PassingScore int                  `mapstructure:"passing-score"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hiresage evaluates interview sessions and turns them into hire/reject decisions",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Local development keys typically live in a .env file.
	_ = godotenv.Load()

	if err := viper.BindEnv("providers.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("providers.openai.api-key-file", "OPENAI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding OPENAI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hiresage.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the serve command; the client commands talk
	// to a running instance over HTTP.
	if serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	return config, nil
}
