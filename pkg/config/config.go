package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/frogstop/payments/pkg/logger"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    logger.Config   `yaml:"logger"`
	Database  DatabaseConfig  `yaml:"database"`
	Mural     MuralConfig     `yaml:"mural"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Payout    PayoutConfig    `yaml:"payout"`
	Checkout  CheckoutConfig  `yaml:"checkout"`
	Security  SecurityConfig  `yaml:"security"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
}

type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	User            string `yaml:"user"`
	DBName          string `yaml:"name"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

// MuralConfig configures the Mural Pay API client. An empty APIKey puts the
// service into sandbox mode: provider calls are served by the sandbox client
// instead of the live API.
type MuralConfig struct {
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key"`
	AccountID        string `yaml:"account_id"`
	TransferAPIKey   string `yaml:"transfer_api_key"`
	Timeout          int    `yaml:"timeout"`
	MaxRetries       int    `yaml:"max_retries"`
	RetryBackoffBase int    `yaml:"retry_backoff_base"`
}

// WebhookConfig configures inbound webhook signature verification. With an
// empty PublicKey verification is bypassed entirely (sandbox deployments).
// AllowSkipVerification additionally honors the explicit skip sentinel in the
// signature header and must stay off in production.
type WebhookConfig struct {
	PublicKey             string `yaml:"public_key"`
	AllowSkipVerification bool   `yaml:"allow_skip_verification"`
}

type PayoutConfig struct {
	Currency          string `yaml:"currency"`
	BankName          string `yaml:"bank_name"`
	AccountNumber     string `yaml:"account_number"`
	CountryCode       string `yaml:"country_code"`
	BankAccountType   string `yaml:"bank_account_type"`
	AccountHolderName string `yaml:"account_holder_name"`
	Description       string `yaml:"description"`
	Timeout           int    `yaml:"timeout"`
}

type CheckoutConfig struct {
	Blockchain    string `yaml:"blockchain"`
	Network       string `yaml:"network"`
	TokenSymbol   string `yaml:"token_symbol"`
	ExpiryMinutes int    `yaml:"expiry_minutes"`
	FaucetURL     string `yaml:"faucet_url"`
	ExplorerURL   string `yaml:"explorer_url"`
}

type SecurityConfig struct {
	APIKey string `yaml:"api_key"`
}

type WebSocketConfig struct {
	ReadBufferSize  int  `yaml:"read_buffer_size"`
	WriteBufferSize int  `yaml:"write_buffer_size"`
	CheckOrigin     bool `yaml:"check_origin"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	var config Config
	configData, err := os.ReadFile("./config.yaml")
	if err != nil {
		return nil, err
	}

	// Secrets stay in the environment; config.yaml references them as ${VAR}.
	expanded := []byte(os.ExpandEnv(string(configData)))

	if err := yaml.Unmarshal(expanded, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
