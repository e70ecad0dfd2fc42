// Package config provides configuration management for the Apple Pay relay service.
// Configuration can be loaded from YAML files and overridden by environment variables.
package config

import (
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"strings"
	"sync"
)

// Config holds all configuration for the relay service.
// Values can be set via YAML configuration file or environment variables.
// Environment variables take precedence over YAML values.
type Config struct {
	IsDebug        bool  `yaml:"is_debug" env:"DEBUG" env-default:"false"`
	DisablePayment bool  `yaml:"disable_payment" env:"DISABLE_PAYMENT" env-default:"false"`
	LogRecords     int64 `yaml:"log_records" env:"LOG_RECORDS" env-default:"0"`
	Listen         struct {
		BindIP   string `yaml:"bind_ip" env:"BIND_IP" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env:"PORT" env-default:"5100"`
		TLS      bool   `yaml:"tls_enabled" env:"TLS_ENABLED" env-default:"false"`
		CertFile string `yaml:"cert_file" env:"TLS_CERT_FILE" env-default:""`
		KeyFile  string `yaml:"key_file" env:"TLS_KEY_FILE" env-default:""`
	} `yaml:"listen"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:"admin"`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:"pass"`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:""`
	} `yaml:"mongo"`
	Adyen struct {
		ApiKey          string `yaml:"api_key" env:"ADYEN_API_KEY" env-default:""`
		MerchantAccount string `yaml:"merchant_account" env:"ADYEN_MERCHANT_ACCOUNT" env-default:""`
		ClientKey       string `yaml:"client_key" env:"ADYEN_CLIENT_KEY" env-default:""`
		// Environment selects the checkout API host: "test" or "live"
		Environment string `yaml:"environment" env:"ADYEN_ENVIRONMENT" env-default:"test"`
		// RequestUrl overrides the checkout API base URL; empty means derive from Environment
		RequestUrl string `yaml:"request_url" env:"ADYEN_REQUEST_URL" env-default:""`
	} `yaml:"adyen"`
	ApplePay struct {
		// MerchantIdentifier is the Apple merchant ID (merchant.com.example)
		MerchantIdentifier string `yaml:"merchant_identifier" env:"APPLE_PAY_MERCHANT_IDENTIFIER" env-default:""`
		// DomainName must exactly match the domain registered and verified with Apple
		DomainName  string `yaml:"domain_name" env:"APPLE_PAY_DOMAIN" env-default:""`
		DisplayName string `yaml:"display_name" env:"APPLE_PAY_DISPLAY_NAME" env-default:"Demo Store"`
		// DomainAssociationFile is served byte-for-byte on the well-known path
		DomainAssociationFile string `yaml:"domain_association_file" env:"APPLE_PAY_DOMAIN_ASSOCIATION_FILE" env-default:""`
	} `yaml:"apple_pay"`
	Payment struct {
		// Amount is the default charge in minor currency units, used when the
		// client omits an amount; every substitution is logged
		Amount        int64  `yaml:"amount" env:"PAYMENT_AMOUNT" env-default:"1000"`
		Currency      string `yaml:"currency" env:"PAYMENT_CURRENCY" env-default:"USD"`
		CountryCode   string `yaml:"country_code" env:"PAYMENT_COUNTRY_CODE" env-default:"US"`
		ShopperLocale string `yaml:"shopper_locale" env:"PAYMENT_SHOPPER_LOCALE" env-default:"en-US"`
		ReturnUrl     string `yaml:"return_url" env:"PAYMENT_RETURN_URL" env-default:""`
	} `yaml:"payment"`
	Forwarder struct {
		Url string `yaml:"url" env:"WEBHOOK_URL" env-default:""`
		// Secret, when set, enables HMAC-SHA256 signing of forwarded payloads
		Secret  string `yaml:"secret" env:"WEBHOOK_SECRET" env-default:""`
		Timeout int    `yaml:"timeout" env:"WEBHOOK_TIMEOUT" env-default:"5"`
	} `yaml:"forwarder"`
}

var instance *Config
var once sync.Once

// GetConfig loads configuration from the specified YAML file path.
// Configuration values can be overridden by environment variables.
// This function uses a singleton pattern and only loads the config once.
func GetConfig(path string) (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("load config: %w; %s", err, desc)
			instance = nil
			return
		}
		if err = instance.Validate(); err != nil {
			instance = nil
		}
	})
	return instance, err
}

// Validate checks values required for every operation. A missing value here is
// a startup-time fatal: the process refuses to serve requests doomed to fail.
func (c *Config) Validate() error {
	var missing []string
	if c.Adyen.ApiKey == "" {
		missing = append(missing, "ADYEN_API_KEY")
	}
	if c.Adyen.MerchantAccount == "" {
		missing = append(missing, "ADYEN_MERCHANT_ACCOUNT")
	}
	if c.ApplePay.MerchantIdentifier == "" {
		missing = append(missing, "APPLE_PAY_MERCHANT_IDENTIFIER")
	}
	if c.ApplePay.DomainName == "" {
		missing = append(missing, "APPLE_PAY_DOMAIN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.Adyen.Environment != "test" && c.Adyen.Environment != "live" {
		return fmt.Errorf("invalid adyen environment %q: must be test or live", c.Adyen.Environment)
	}
	return nil
}
