package nrf24sim

import (
	"github.com/spf13/viper"
)

// SimulationConfig mirrors the knobs spec.md's global_init/set_log_level/
// stop_on_error/set_lost_packets expose imperatively, so a batch or
// regression harness can load them from a file instead of wiring each
// one up in code.
type SimulationConfig struct {
	LogLevel        string `mapstructure:"log_level"`
	StopOnError     bool   `mapstructure:"stop_on_error"`
	DataLossDivider uint32 `mapstructure:"data_loss_divider"`
	AckLossDivider  uint32 `mapstructure:"ack_loss_divider"`
}

func defaultSimulationConfig() *SimulationConfig {
	return &SimulationConfig{
		LogLevel:        "warning",
		StopOnError:     false,
		DataLossDivider: 0,
		AckLossDivider:  0,
	}
}

// LoadSimulationConfig reads a YAML (or any viper-supported format) file
// at path, falling back to the library defaults for any key it omits.
// The NRF24SIM_ prefix lets a harness override individual keys via
// environment variables (e.g. NRF24SIM_STOP_ON_ERROR=true).
func LoadSimulationConfig(path string) (*SimulationConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("NRF24SIM")
	v.AutomaticEnv()

	cfg := defaultSimulationConfig()
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("stop_on_error", cfg.StopOnError)
	v.SetDefault("data_loss_divider", cfg.DataLossDivider)
	v.SetDefault("ack_loss_divider", cfg.AckLossDivider)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseLogLevel maps a config string to a LogLevel, defaulting to
// LevelWarning for anything unrecognized.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "error":
		return LevelError
	case "verbose":
		return LevelVerbose
	case "debug":
		return LevelDebug
	default:
		return LevelWarning
	}
}

// Options converts a loaded SimulationConfig into SimulationOptions for
// NewSimulation.
func (c *SimulationConfig) Options() []SimulationOption {
	return []SimulationOption{
		WithLogLevel(ParseLogLevel(c.LogLevel)),
		WithStopOnError(c.StopOnError),
		WithLostPackets(c.DataLossDivider, c.AckLossDivider),
	}
}
