package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters read from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4250"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Text generation
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4"`

	// CNPJ registry lookup (ReceitaWS-compatible)
	RegistryBaseURL   string `envconfig:"REGISTRY_BASE_URL" default:"https://www.receitaws.com.br/v1"`
	RegistryTimeoutMS int    `envconfig:"REGISTRY_TIMEOUT_MS" default:"10000"`

	// Outbound email (SMTP). When the host is empty, sends are simulated.
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"contato@jusfiscal.com.br"`

	// Scheduler: cron spec for the due-publication sweep.
	SweepSchedule      string `envconfig:"SWEEP_SCHEDULE" default:"*/5 * * * *"`
	SchedulerAutostart bool   `envconfig:"SCHEDULER_AUTOSTART" default:"true"`

	// Media storage (S3-compatible)
	MediaS3Key    string `envconfig:"MEDIA_S3_KEY"`
	MediaS3Secret string `envconfig:"MEDIA_S3_SECRET"`
	MediaS3URL    string `envconfig:"MEDIA_S3_URL"`
	MediaS3Region string `envconfig:"MEDIA_S3_REGION" default:"eu-central-1"`
	MediaS3Bucket string `envconfig:"MEDIA_S3_BUCKET"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// MediaEnabled reports whether the S3 media store is configured.
func (c *Config) MediaEnabled() bool {
	return c.MediaS3URL != "" && c.MediaS3Bucket != ""
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
