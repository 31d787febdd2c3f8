// Package config provides configuration loading for streamkit
// applications.
//
// It uses Viper to load configuration from YAML files and environment
// variables, with godotenv support for .env files. Applications embed
// AppConfig in their own config structs and load them with LoadConfig:
//
//	type Config struct {
//	    config.AppConfig `yaml:",inline" mapstructure:",squash"`
//	    Chain            ChainConfig `yaml:"chain" mapstructure:"chain"`
//	}
//	var cfg Config
//	err := config.LoadConfig("mcpipe", &cfg)
//
// Environment variables override file values; SAMPLER_STEP_SIZE binds
// to both sampler_step_size and sampler.step_size style keys.
package config
