package config

import (
	"context"
	"log/slog"
	"os"
	"time"

	infisical "github.com/infisical/go-sdk"
)

type Config struct {
	Port           string
	DatabaseURL    string
	RedisURL       string
	RedisPassword  string
	FrontendOrigin string
	SourcesFile    string
	StrictMode     bool

	// Provider credentials. Any of these may be empty; the matching
	// adapter then runs in fallback mode instead of failing startup.
	KepcoAPIKey       string
	TeslaAccessToken  string
	ExchangeAPIKey    string
	ChainRPCAPIKey    string
	TreasuryAddress   string
	VaultContract     string
	StakingContract   string
	LiquidityContract string
}

func Load() Config {
	cfg := Config{
		Port:           envOr("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		FrontendOrigin: envOr("FRONTEND_ORIGIN", "*"),
		SourcesFile:    os.Getenv("SOURCES_FILE"),
		StrictMode:     os.Getenv("STRICT_MODE") == "true",

		KepcoAPIKey:       os.Getenv("KEPCO_API_KEY"),
		TeslaAccessToken:  os.Getenv("TESLA_ACCESS_TOKEN"),
		ExchangeAPIKey:    os.Getenv("EXCHANGE_API_KEY"),
		ChainRPCAPIKey:    os.Getenv("CHAIN_RPC_API_KEY"),
		TreasuryAddress:   os.Getenv("TREASURY_ADDRESS"),
		VaultContract:     os.Getenv("VAULT_CONTRACT"),
		StakingContract:   os.Getenv("STAKING_CONTRACT"),
		LiquidityContract: os.Getenv("LIQUIDITY_CONTRACT"),
	}

	// If Infisical credentials are available, fetch secrets from Infisical
	clientID := os.Getenv("INFISICAL_CLIENT_ID")
	clientSecret := os.Getenv("INFISICAL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		loadFromInfisical(&cfg, clientID, clientSecret)
	}

	return cfg
}

func loadFromInfisical(cfg *Config, clientID, clientSecret string) {
	siteURL := envOr("INFISICAL_SITE_URL", "https://app.infisical.com")
	projectID := os.Getenv("INFISICAL_PROJECT_ID")
	envSlug := envOr("INFISICAL_ENV", "prod")

	if projectID == "" {
		slog.Warn("INFISICAL_PROJECT_ID not set, skipping Infisical")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := infisical.NewInfisicalClient(ctx, infisical.Config{
		SiteUrl:          siteURL,
		AutoTokenRefresh: false,
	})

	_, err := client.Auth().UniversalAuthLogin(clientID, clientSecret)
	if err != nil {
		slog.Error("infisical auth failed", "error", err)
		return
	}

	secrets := map[string]*string{
		"KEPCO_API_KEY":      &cfg.KepcoAPIKey,
		"TESLA_ACCESS_TOKEN": &cfg.TeslaAccessToken,
		"EXCHANGE_API_KEY":   &cfg.ExchangeAPIKey,
		"CHAIN_RPC_API_KEY":  &cfg.ChainRPCAPIKey,
		"REDIS_PASSWORD":     &cfg.RedisPassword,
	}

	for key, target := range secrets {
		if *target != "" {
			continue // env var already set, skip
		}
		secret, err := client.Secrets().Retrieve(infisical.RetrieveSecretOptions{
			SecretKey:   key,
			Environment: envSlug,
			ProjectID:   projectID,
			SecretPath:  "/",
		})
		if err != nil {
			slog.Warn("failed to retrieve secret from infisical", "key", key, "error", err)
			continue
		}
		*target = secret.SecretValue
		slog.Info("loaded secret from infisical", "key", key)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
