package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"spc/internal/structures"
	"strings"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("codec.defaultSchema", "a")
	v.SetDefault("codec.maxBodyBytes", 1<<20)

	_ = v.BindEnv("logger.level", "SPC_LOG_LEVEL")
	_ = v.BindEnv("codec.defaultSchema", "SPC_DEFAULT_SCHEMA")
	_ = v.BindEnv("codec.maxBodyBytes", "SPC_MAX_BODY_BYTES")
	_ = v.BindEnv("persistence.saveInterval", "SPC_SAVE_INTERVAL")
	_ = v.BindEnv("metrics.enabled", "SPC_METRICS_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SpcValidationDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
