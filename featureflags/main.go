package featureflags

import (
	"github.com/Unleash/unleash-client-go/v3"
	"github.com/rs/zerolog/log"
)

// Config structure
type Config struct {
	Enabled     bool   `mapstructure:"enabled"`
	AppName     string `mapstructure:"app_name"`
	Url         string `mapstructure:"url"`
	InstanceID  string `mapstructure:"instance_id"`
	Environment string `mapstructure:"environment"`
}

var enabled bool

// Initialize the unleash client. When the integration is disabled every flag
// defaults to enabled so local setups do not need an unleash server.
func Initialize(cfg Config) error {
	enabled = cfg.Enabled
	if !cfg.Enabled {
		log.Info().Str("lib", "unleash").Msg("Feature flags disabled, all flags default to on")
		return nil
	}
	return unleash.Initialize(
		unleash.WithAppName(cfg.AppName),
		unleash.WithUrl(cfg.Url),
		unleash.WithInstanceId(cfg.InstanceID),
		unleash.WithEnvironment(cfg.Environment),
	)
}

// IsEnabled godoc
func IsEnabled(flag string) bool {
	if !enabled {
		return true
	}
	return unleash.IsEnabled(flag)
}

// Close godoc
func Close() {
	if enabled {
		_ = unleash.Close()
	}
}
