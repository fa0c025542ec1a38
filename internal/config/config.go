// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/solana-pool-filter/internal/dex/raydium"
)

// FilterConfig selects the active pool filters. Zero market cap bounds are disabled.
type FilterConfig struct {
	CheckMintSuffix bool    `mapstructure:"check_if_pump_fun"`
	CheckSocials    bool    `mapstructure:"check_if_socials"`
	MinMarketCap    float64 `mapstructure:"min_market_cap"`
	MaxMarketCap    float64 `mapstructure:"max_market_cap"`
}

type Config struct {
	RPCList      []string `mapstructure:"rpc_list"`
	Commitment   string   `mapstructure:"commitment"`
	QuoteMint    string   `mapstructure:"quote_mint"`
	RPCTimeoutMS int      `mapstructure:"rpc_timeout"`
	RPCRateLimit float64  `mapstructure:"rpc_rate_limit"`
	Retries      int      `mapstructure:"retries"`

	HTTPTimeoutMS int    `mapstructure:"http_timeout"`
	IPFSGateway   string `mapstructure:"ipfs_gateway"`

	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
	RejectionLog string `mapstructure:"rejection_log"`
	MetricsAddr  string `mapstructure:"metrics_addr"`

	FilterCheckIntervalMS    int `mapstructure:"filter_check_interval"`
	FilterCheckDurationMS    int `mapstructure:"filter_check_duration"`
	ConsecutiveFilterMatches int `mapstructure:"consecutive_filter_matches"`

	Filters FilterConfig `mapstructure:"filters"`
}

const (
	DefaultCommitment               = "confirmed"
	DefaultQuoteMint                = "WSOL"
	DefaultRPCTimeout               = 5000
	DefaultHTTPTimeout              = 3000
	DefaultRetries                  = 3
	DefaultLogFile                  = "pool-filter.log"
	DefaultFilterCheckInterval      = 2000
	DefaultFilterCheckDuration      = 60000
	DefaultConsecutiveFilterMatches = 3

	envPrefix = "SOLANA_BOT"
)

// Token describes a supported quote token.
type Token struct {
	Symbol   string
	Mint     solana.PublicKey
	Decimals uint8
}

// GetToken resolves a quote token symbol. Unknown symbols are a deployment error.
func GetToken(symbol string) (Token, error) {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "WSOL":
		return Token{Symbol: "WSOL", Mint: raydium.WrappedSolMint, Decimals: raydium.SolDecimals}, nil
	case "USDC":
		return Token{Symbol: "USDC", Mint: raydium.USDCMint, Decimals: raydium.USDCDecimals}, nil
	default:
		return Token{}, fmt.Errorf("unsupported quote mint %q. Supported values are USDC and WSOL", symbol)
	}
}

func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := map[string]interface{}{
		"commitment":                 DefaultCommitment,
		"quote_mint":                 DefaultQuoteMint,
		"rpc_timeout":                DefaultRPCTimeout,
		"rpc_rate_limit":             0,
		"retries":                    DefaultRetries,
		"http_timeout":               DefaultHTTPTimeout,
		"ipfs_gateway":               "",
		"debug_logging":              false,
		"log_file":                   DefaultLogFile,
		"rejection_log":              "",
		"metrics_addr":               "",
		"filter_check_interval":      DefaultFilterCheckInterval,
		"filter_check_duration":      DefaultFilterCheckDuration,
		"consecutive_filter_matches": DefaultConsecutiveFilterMatches,
		"filters.check_if_pump_fun":  false,
		"filters.check_if_socials":   false,
		"filters.min_market_cap":     0,
		"filters.max_market_cap":     0,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	loadEnvironmentVariables(&cfg)

	return &cfg, validateConfig(&cfg)
}

// loadDotEnv подгружает .env рядом с конфигом, если он есть
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURL(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid commitment %q", cfg.Commitment)
	}
	if _, err := GetToken(cfg.QuoteMint); err != nil {
		return err
	}
	if cfg.IPFSGateway != "" {
		if err := validateURL(cfg.IPFSGateway, "http"); err != nil {
			return fmt.Errorf("invalid ipfs_gateway: %w", err)
		}
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	return validateFilters(cfg.Filters)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RPCTimeoutMS <= 0 {
		return errors.New("invalid rpc_timeout")
	}
	if cfg.HTTPTimeoutMS <= 0 {
		return errors.New("invalid http_timeout")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RPCRateLimit < 0 {
		return errors.New("invalid rpc_rate_limit")
	}
	if cfg.FilterCheckIntervalMS <= 0 {
		return errors.New("invalid filter_check_interval")
	}
	if cfg.FilterCheckDurationMS < 0 {
		return errors.New("invalid filter_check_duration")
	}
	if cfg.ConsecutiveFilterMatches <= 0 {
		return errors.New("invalid consecutive_filter_matches")
	}
	return nil
}

func validateFilters(f FilterConfig) error {
	if f.MinMarketCap < 0 || f.MaxMarketCap < 0 {
		return errors.New("market cap bounds must not be negative")
	}
	if f.MinMarketCap != 0 && f.MaxMarketCap != 0 && f.MinMarketCap > f.MaxMarketCap {
		return fmt.Errorf("min_market_cap %v exceeds max_market_cap %v", f.MinMarketCap, f.MaxMarketCap)
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// loadEnvironmentVariables разбирает RPC_LIST как список через запятую
func loadEnvironmentVariables(cfg *Config) {
	envRPCList := os.Getenv(envPrefix + "_RPC_LIST")
	if envRPCList == "" {
		return
	}

	var cleanRPCs []string
	for _, rpc := range strings.Split(envRPCList, ",") {
		if clean := strings.TrimSpace(rpc); clean != "" {
			cleanRPCs = append(cleanRPCs, clean)
		}
	}
	if len(cleanRPCs) > 0 {
		cfg.RPCList = cleanRPCs
	}
}

func (c *Config) RPCTimeout() time.Duration {
	return time.Duration(c.RPCTimeoutMS) * time.Millisecond
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

func (c *Config) FilterCheckInterval() time.Duration {
	return time.Duration(c.FilterCheckIntervalMS) * time.Millisecond
}

func (c *Config) FilterCheckDuration() time.Duration {
	return time.Duration(c.FilterCheckDurationMS) * time.Millisecond
}
