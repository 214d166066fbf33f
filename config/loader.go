package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/diext/errors"
	"github.com/kbukum/diext/logger"
)

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file without overriding variables already set.
func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	EnvPrefix  string // Only variables with this prefix are bound, prefix stripped
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix restricts environment binding to variables starting with
// prefix (e.g. "DIEXT_"). The prefix is stripped before keys are matched.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.ToUpper(prefix) }
}

// ResolveFiles finds config and env files for name.
// Explicit paths win; otherwise standard locations are searched.
func ResolveFiles(name string, lc LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: lc.ConfigFile,
		EnvFile:    lc.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = firstExisting(lc.FileSystem, []string{
			fmt.Sprintf("./config/%s.yml", name),
			fmt.Sprintf("./config/%s.yaml", name),
			fmt.Sprintf("./%s.yml", name),
			fmt.Sprintf("./%s.yaml", name),
			"./config/config.yml",
			"./config.yml",
		})
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = firstExisting(lc.FileSystem, []string{
			fmt.Sprintf("./.env.%s", name),
			"./config/.env",
			"./.env",
		})
	}
	return resolved
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, path := range paths {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// LoadConfig loads configuration named name into the provided cfg struct.
// Sources in increasing precedence: the YAML file, then environment
// variables (including those loaded from the .env file).
func LoadConfig(name string, cfg interface{}, opts ...LoaderOption) error {
	if cfg == nil {
		return errors.InvalidArgument("cfg")
	}
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	files := ResolveFiles(name, lc)
	return loadFromResolvedFiles(name, cfg, files, lc)
}

// loadFromResolvedFiles loads configuration from specific files.
func loadFromResolvedFiles(name string, cfg interface{}, files ResolvedFiles, lc LoaderConfig) error {
	log := logger.WithComponent("config")
	v := viper.New()

	// 1. Load YAML config first (base configuration)
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Configuration(fmt.Sprintf("failed to read config file %s", files.ConfigFile)).
				WithCause(err)
		}
	}

	// 2. Load .env file into the process environment
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load .env file", logger.Fields("path", files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	// 3. Environment variables override file values
	bound := bindEnvVars(v, lc.EnvPrefix)

	// 4. Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return errors.Configuration(fmt.Sprintf("failed to unmarshal config %s", name)).WithCause(err)
	}

	log.Debug("configuration loaded", logger.Fields(
		"name", name,
		"config_file", files.ConfigFile,
		"env_file", files.EnvFile,
		"env_vars", bound,
	))
	return nil
}

// bindEnvVars sets every matching environment variable on v under each of its
// possible nested key spellings, and returns how many variables were bound.
func bindEnvVars(v *viper.Viper, prefix string) int {
	bound := 0
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if prefix != "" {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			key = strings.TrimPrefix(key, prefix)
			if key == "" {
				continue
			}
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, value)
		}
		bound++
	}
	return bound
}

// generateEnvKeyVariants creates all possible key variants for environment variable binding.
// Examples:
//
//	LOGGING_LEVEL      -> [logging_level, logging.level]
//	UNREGISTERED_TYPES -> [unregistered_types, unregistered.types]
//	METRICS_METER_NAME -> [metrics_meter_name, metrics.meter.name, metrics.meter_name, metrics_meter.name]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	// Split at every boundary: left side joined with "_", right side with "_",
	// and the boundary itself becomes the nesting dot.
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "_"))
	}

	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
