package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort              = "8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultClientTimeout     = 10 * time.Second
	defaultDataDir           = "data"
	defaultDefaultBranch     = "main"
	defaultInsideCity        = "dhaka"
	defaultInsideCityCharge  = 60
	defaultOutsideCityCharge = 120
	defaultCurrency          = "BDT"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	CatalogAPI  RemoteAPIConfig
	OrdersAPI   RemoteAPIConfig
	Auth        AuthConfig
	Fulfillment FulfillmentConfig
	Delivery    DeliveryConfig
	Currency    string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StorageConfig locates the durable local store backing cart/favorites state.
type StorageConfig struct {
	DataDir string
}

// RemoteAPIConfig describes one of the external REST collaborators.
type RemoteAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds bearer-credential verification settings.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
}

// FulfillmentConfig controls branch selection behaviour.
type FulfillmentConfig struct {
	DefaultBranch  string
	BranchPriority []string
}

// DeliveryConfig holds the flat destination-dependent delivery fees in the
// smallest currency unit.
type DeliveryConfig struct {
	InsideCity        string
	InsideCityCharge  int64
	OutsideCityCharge int64
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Load reads configuration from the environment, applying defaults and
// validating the fields the process cannot run without.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Port:         envOrDefault("API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationEnv("API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationEnv("API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationEnv("API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Storage: StorageConfig{
			DataDir: envOrDefault("API_STORAGE_DATA_DIR", defaultDataDir),
		},
		CatalogAPI: RemoteAPIConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("API_CATALOG_BASE_URL")), "/"),
			Timeout: durationEnv("API_CATALOG_TIMEOUT", defaultClientTimeout),
		},
		OrdersAPI: RemoteAPIConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("API_ORDERS_BASE_URL")), "/"),
			Timeout: durationEnv("API_ORDERS_TIMEOUT", defaultClientTimeout),
		},
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(os.Getenv("API_AUTH_JWT_SECRET")),
			Issuer:    strings.TrimSpace(os.Getenv("API_AUTH_ISSUER")),
			Audience:  strings.TrimSpace(os.Getenv("API_AUTH_AUDIENCE")),
		},
		Fulfillment: FulfillmentConfig{
			DefaultBranch:  strings.ToLower(envOrDefault("API_FULFILLMENT_DEFAULT_BRANCH", defaultDefaultBranch)),
			BranchPriority: listEnv("API_FULFILLMENT_BRANCH_PRIORITY"),
		},
		Delivery: DeliveryConfig{
			InsideCity:        strings.ToLower(envOrDefault("API_DELIVERY_INSIDE_CITY", defaultInsideCity)),
			InsideCityCharge:  int64Env("API_DELIVERY_INSIDE_CHARGE", defaultInsideCityCharge),
			OutsideCityCharge: int64Env("API_DELIVERY_OUTSIDE_CHARGE", defaultOutsideCityCharge),
		},
		Currency: strings.ToUpper(envOrDefault("API_CURRENCY", defaultCurrency)),
	}

	var missing []string
	if cfg.CatalogAPI.BaseURL == "" {
		missing = append(missing, "CatalogAPI.BaseURL")
	}
	if cfg.OrdersAPI.BaseURL == "" {
		missing = append(missing, "OrdersAPI.BaseURL")
	}
	if cfg.Delivery.InsideCityCharge < 0 || cfg.Delivery.OutsideCityCharge < 0 {
		missing = append(missing, "Delivery.Charges")
	}
	if len(missing) > 0 {
		return Config{}, &ValidationError{fields: missing}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func int64Env(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func listEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
