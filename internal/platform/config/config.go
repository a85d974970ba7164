package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Branding used in notification embeds and links.
	BankName    string
	BankIconURL string
	BaseURL     string

	// TaxedCurrency is the single currency subject to balance equalization.
	TaxedCurrency string
	// TreasuryOrgID is the organization whose treasury account funds
	// equalization payouts. Its accounts are never taxed.
	TreasuryOrgID          string
	TreasuryAccountName    string
	TreasuryInitialBalance decimal.Decimal
	// ReserveOrgID is the central bank organization whose holdings are
	// excluded from circulation and velocity figures.
	ReserveOrgID string

	// DiscordDMEndpoint is the bot endpoint that direct messages are
	// posted to. Empty disables delivery.
	DiscordDMEndpoint string

	// RateLimit is a ulule/limiter formatted rate, e.g. "60-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("BANK_NAME", "Bank of Democraciv")
	viper.SetDefault("BANK_ICON_URL", "")
	viper.SetDefault("BASE_URL", "https://democracivbank.com")
	viper.SetDefault("TAXED_CURRENCY", "LRA")
	viper.SetDefault("TREASURY_ORG_ID", "AUTOBANK")
	viper.SetDefault("TREASURY_ACCOUNT_NAME", "Ottoman - Automated Payments")
	viper.SetDefault("TREASURY_INITIAL_BALANCE", "1000000")
	viper.SetDefault("RESERVE_ORG_ID", "BANK")
	viper.SetDefault("DISCORD_DM_ENDPOINT", "")
	viper.SetDefault("RATE_LIMIT", "60-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.BankName = viper.GetString("BANK_NAME")
	cfg.BankIconURL = viper.GetString("BANK_ICON_URL")
	cfg.BaseURL = viper.GetString("BASE_URL")

	cfg.TaxedCurrency = viper.GetString("TAXED_CURRENCY")
	cfg.TreasuryOrgID = viper.GetString("TREASURY_ORG_ID")
	cfg.TreasuryAccountName = viper.GetString("TREASURY_ACCOUNT_NAME")
	cfg.ReserveOrgID = viper.GetString("RESERVE_ORG_ID")

	balanceStr := viper.GetString("TREASURY_INITIAL_BALANCE")
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		balance = decimal.NewFromInt(1000000)
		log.Printf("Warning: Invalid value for TREASURY_INITIAL_BALANCE ('%s'). Defaulting to %s.\n", balanceStr, balance.String())
	}
	cfg.TreasuryInitialBalance = balance

	cfg.DiscordDMEndpoint = viper.GetString("DISCORD_DM_ENDPOINT")
	if cfg.DiscordDMEndpoint == "" {
		log.Println("Warning: DISCORD_DM_ENDPOINT not set. Notifications will be discarded.")
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
