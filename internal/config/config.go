package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port              string        `mapstructure:"PORT" validate:"required"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL" validate:"required"`
	PaystackSecretKey string        `mapstructure:"PAYSTACK_SECRET_KEY" validate:"required"`
	PaystackBaseURL   string        `mapstructure:"PAYSTACK_BASE_URL" validate:"required,url"`
	EmailJSServiceID  string        `mapstructure:"EMAILJS_SERVICE_ID"`
	EmailJSTemplateID string        `mapstructure:"EMAILJS_TEMPLATE_ID"`
	EmailJSPublicKey  string        `mapstructure:"EMAILJS_PUBLIC_KEY"`
	ReconcileInterval time.Duration `mapstructure:"RECONCILE_INTERVAL" validate:"min=1s"`
	ReconcileAfter    time.Duration `mapstructure:"RECONCILE_AFTER" validate:"min=1s"`
}

// EmailEnabled reports whether all EmailJS credentials are present. The email
// side effect is optional; orders save fine without it.
func (c *Config) EmailEnabled() bool {
	return c.EmailJSServiceID != "" && c.EmailJSTemplateID != "" && c.EmailJSPublicKey != ""
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.AutomaticEnv()

	keys := []string{
		"PORT", "DATABASE_URL", "PAYSTACK_SECRET_KEY", "PAYSTACK_BASE_URL",
		"EMAILJS_SERVICE_ID", "EMAILJS_TEMPLATE_ID", "EMAILJS_PUBLIC_KEY",
		"RECONCILE_INTERVAL", "RECONCILE_AFTER",
	}
	for _, key := range keys {
		if err := viper.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	// Default values
	viper.SetDefault("PORT", "3001")
	viper.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	viper.SetDefault("RECONCILE_INTERVAL", "5m")
	viper.SetDefault("RECONCILE_AFTER", "10m")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if !cfg.EmailEnabled() {
		logger.Warn("EmailJS credentials not set, order confirmation emails disabled")
	}
	return &cfg, nil
}
