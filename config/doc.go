// Package config loads configuration structs with Viper.
//
// Sources, in increasing precedence: a YAML file, then environment variables.
// A .env file found next to the config is loaded into the environment first.
// Keys are matched through mapstructure tags; an environment variable such as
// DIEXT_LOGGING_LEVEL reaches the logging.level key when the loader runs with
// WithEnvPrefix("DIEXT_").
//
// # Usage
//
//	var opts Options
//	err := config.LoadConfig("diext", &opts, config.WithEnvPrefix("DIEXT_"))
package config
