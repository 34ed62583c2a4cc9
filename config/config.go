package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port           string `envconfig:"PORT" default:"3000"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// DB
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Identity provider
	AuthServiceURL   string `envconfig:"AUTH_SERVICE_URL" required:"true"`
	AuthServiceToken string `envconfig:"AUTH_SERVICE_TOKEN" required:"true"`

	// Payment gateway
	OmisePublicKey  string `envconfig:"OMISE_PUBLIC_KEY" required:"true"`
	OmiseSecretKey  string `envconfig:"OMISE_SECRET_KEY" required:"true"`
	OmiseCurrency   string `envconfig:"OMISE_CURRENCY" default:"thb"`
	OmiseSourceType string `envconfig:"OMISE_SOURCE_TYPE" default:"internet_banking_bbl"`

	// Client app (checkout redirects land here)
	ClientBaseURL string `envconfig:"CLIENT_BASE_URL" default:"http://localhost:5173"`

	// R2 object storage (contest images)
	CloudflareAccountID string `envconfig:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `envconfig:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `envconfig:"R2_ACCESS_KEY_SECRET"`
	R2BucketName        string `envconfig:"R2_BUCKET_NAME"`
	CDNBaseURL          string `envconfig:"CDN_BASE_URL"`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
