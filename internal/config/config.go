package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	JWTAccessExpiry time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`

	// AppURL is the frontend base used to build invitation accept links.
	AppURL        string        `env:"APP_URL" envDefault:"http://localhost:5173"`
	InvitationTTL time.Duration `env:"INVITATION_TTL" envDefault:"168h"`

	Email EmailConfig
}

type EmailConfig struct {
	Provider    string        `env:"EMAIL_PROVIDER" envDefault:"log"`
	SendTimeout time.Duration `env:"EMAIL_SEND_TIMEOUT" envDefault:"30s"`

	SMTP     SMTPConfig
	SendGrid SendGridConfig
	Mailgun  MailgunConfig
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

type SendGridConfig struct {
	APIKey   string `env:"SENDGRID_API_KEY"`
	From     string `env:"SENDGRID_FROM"`
	FromName string `env:"SENDGRID_FROM_NAME" envDefault:"Workspaces"`
}

type MailgunConfig struct {
	APIKey string `env:"MAILGUN_API_KEY"`
	Domain string `env:"MAILGUN_DOMAIN"`
	From   string `env:"MAILGUN_FROM"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.InvitationTTL <= 0 {
		return nil, fmt.Errorf("INVITATION_TTL must be positive, got %s", cfg.InvitationTTL)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
