package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"marketdelivery/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	HTTPPort        int
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSslMode       string
	JWTSecret       string
	AssetRoot       string
	AssetBaseURL    string
	AssetSecret     string
	ProofURLTTL     time.Duration
	SweepSchedule   string
	ShutdownTimeout time.Duration
}

// DSN returns the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads configuration in order: .env (if present), environment, then flags
// from args. args excludes the program name.
func LoadConfig(args []string, logger *slog.Logger) (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn(".env not loaded", "error", err)
	}

	cfg := Config{
		HTTPPort:        envInt("HTTP_PORT", 8080),
		DBHost:          envString("DB_HOST", "localhost"),
		DBPort:          envString("DB_PORT", "5432"),
		DBUser:          envString("DB_USER", "postgres"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          envString("DB_NAME", "marketdelivery"),
		DBSslMode:       envString("DB_SSLMODE", "disable"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AssetRoot:       envString("ASSET_ROOT", "./data/assets"),
		AssetBaseURL:    envString("ASSET_BASE_URL", "http://localhost:8080"),
		AssetSecret:     os.Getenv("ASSET_SECRET"),
		ProofURLTTL:     envDuration("PROOF_URL_TTL", 15*time.Minute),
		SweepSchedule:   envString("SWEEP_SCHEDULE", jobs.DefaultAssignmentSchedule),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	flags := pflag.NewFlagSet("marketdelivery", pflag.ContinueOnError)
	flags.IntVarP(&cfg.HTTPPort, "port", "p", cfg.HTTPPort, "port to listen on")
	flags.StringVar(&cfg.DBHost, "db-host", cfg.DBHost, "postgres host")
	flags.StringVar(&cfg.DBPort, "db-port", cfg.DBPort, "postgres port")
	flags.StringVar(&cfg.DBName, "db-name", cfg.DBName, "postgres database")
	flags.StringVar(&cfg.AssetRoot, "asset-root", cfg.AssetRoot, "directory holding uploaded assets")
	flags.StringVar(&cfg.AssetBaseURL, "asset-base-url", cfg.AssetBaseURL, "public origin of signed asset links")
	flags.DurationVar(&cfg.ProofURLTTL, "proof-url-ttl", cfg.ProofURLTTL, "lifetime of signed proof photo links")
	flags.StringVar(&cfg.SweepSchedule, "sweep-schedule", cfg.SweepSchedule, "cron schedule of the driver assignment sweep")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.AssetSecret == "" {
		cfg.AssetSecret = cfg.JWTSecret
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var problems []error
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		problems = append(problems, fmt.Errorf("invalid port: %d", c.HTTPPort))
	}
	if c.JWTSecret == "" {
		problems = append(problems, errors.New("JWT_SECRET is required"))
	}
	if c.ProofURLTTL <= 0 {
		problems = append(problems, fmt.Errorf("invalid proof url ttl: %s", c.ProofURLTTL))
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Errorf("invalid shutdown timeout: %s", c.ShutdownTimeout))
	}
	return errors.Join(problems...)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
