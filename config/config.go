package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gitlab.com/vendalink-commerce/affiliate_api/featureflags"
	"gitlab.com/vendalink-commerce/affiliate_api/monitor"
	"gitlab.com/vendalink-commerce/affiliate_api/net/kafka"
	"gitlab.com/vendalink-commerce/affiliate_api/net/redis"
)

// Config structure
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	DatabaseCluster DatabaseClusterConfig `mapstructure:"database_cluster"`
	Redis           redis.Config          `mapstructure:"redis"`
	Kafka           kafka.Config          `mapstructure:"kafka"`
	Asaas           AsaasConfig           `mapstructure:"asaas"`
	Referral        ReferralConfig        `mapstructure:"referral_config"`
	Attribution     AttributionConfig     `mapstructure:"attribution"`
	RateLimit       RateLimitConfig       `mapstructure:"rate_limit"`
	Crons           Crons                 `mapstructure:"crons"`
	Unleash         featureflags.Config   `mapstructure:"unleash"`
}

// ServerConfig structure
type ServerConfig struct {
	Monitoring monitor.Config `mapstructure:"monitoring"`
	API        APIConfig      `mapstructure:"api"`
}

// APIConfig structure
type APIConfig struct {
	Port        int    `mapstructure:"port"`
	KeepAlive   bool   `mapstructure:"keep_alive"`
	Domain      string `mapstructure:"domain"`
	InternalCID string `mapstructure:"internal_cidr"`
}

// AsaasConfig structure
//
// The environment (sandbox vs production) is not a separate flag: sandbox API
// keys carry the SandboxMarker substring and the client selects the base url
// from it.
type AsaasConfig struct {
	ApiUrl        string `mapstructure:"apiUrl"`
	SandboxApiUrl string `mapstructure:"sandboxApiUrl"`
	ApiKey        string `mapstructure:"apiKey"`
	SandboxMarker string `mapstructure:"sandboxMarker"`
	WebhookToken  string `mapstructure:"webhookToken"`
}

// ReferralConfig - commission split rates in basis points plus the two fixed
// house beneficiary accounts
type ReferralConfig struct {
	TotalRateBps   int    `mapstructure:"total_rate_bps"`
	L1Bps          int    `mapstructure:"L1_bps"`
	L2Bps          int    `mapstructure:"L2_bps"`
	L3Bps          int    `mapstructure:"L3_bps"`
	HouseBaseBps   int    `mapstructure:"house_base_bps"`
	HouseAccountA  uint64 `mapstructure:"house_account_a"`
	HouseAccountB  uint64 `mapstructure:"house_account_b"`
}

// AttributionConfig structure
type AttributionConfig struct {
	CookieName   string `mapstructure:"cookie_name"`
	CookieSecret string `mapstructure:"cookie_secret"`
	CookieDomain string `mapstructure:"cookie_domain"`
}

// RateLimitConfig - shared redis counters keyed by client identity
type RateLimitConfig struct {
	Requests   int `mapstructure:"requests"`
	WindowSecs int `mapstructure:"window_secs"`
}

// Crons - mapping of ids to execution frequency
type Crons map[string]string

// DatabaseClusterConfig structure
type DatabaseClusterConfig struct {
	Writer DatabaseConfig `mapstructure:"writer"`
	Reader DatabaseConfig `mapstructure:"reader"`
}

// DatabaseConfig structure
type DatabaseConfig struct {
	Type            string `mapstructure:"type"`
	Host            string `mapstructure:"host"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLmode         string `mapstructure:"sslmode"`
	ApplicationName string `mapstructure:"application_name"`
	Port            int    `mapstructure:"port"`
}

// LoadConfig Load server configuration from the yaml file
func LoadConfig(viperConf *viper.Viper) Config {
	var config Config
	if err := viperConf.Unmarshal(&config); err != nil {
		log.Fatal().Err(err).Msg("Unable to decode config into struct")
	}
	return config
}

// OpenConfig godoc
func OpenConfig(file string) {
	if file != "" {
		// Use config file from the flag.
		viper.SetConfigFile(file)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigName(".config")
	viper.AddConfigPath(".")                     // First try to load the config from the current directory
	viper.AddConfigPath("$HOME")                 // Then try to load it from the HOME directory
	viper.AddConfigPath("/etc/affiliate_api/")   // As a last resort try to load it from /etc/
	viper.SetEnvPrefix("CFG")
	viper.AutomaticEnv()
	setDefaultVariables()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatal().Err(err).Msg("Unable to read configuration file")
	}
}

func setDefaultVariables() {
	viper.SetDefault("referral_config.total_rate_bps", 3000)
	viper.SetDefault("referral_config.L1_bps", 1500)
	viper.SetDefault("referral_config.L2_bps", 300)
	viper.SetDefault("referral_config.L3_bps", 200)
	viper.SetDefault("referral_config.house_base_bps", 500)
	viper.SetDefault("attribution.cookie_name", "aff_ref")
	viper.SetDefault("rate_limit.requests", 60)
	viper.SetDefault("rate_limit.window_secs", 60)
}
