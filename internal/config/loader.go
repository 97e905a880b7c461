package config

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix marks environment variables read by Load.
	EnvPrefix = "ARCHETYPE_"

	maxConfigFileSize = 1024 * 1024 // 1MB
	defaultDebounce   = 100 * time.Millisecond
)

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), and ARCHETYPE_* environment variables, then validates it.
//
// Environment variables map onto koanf keys by replacing dots with
// underscores:
//
//	ARCHETYPE_CLASSIFICATION_K                 -> classification.k
//	ARCHETYPE_CLASSIFICATION_DISTANCE_WEIGHTED -> classification.distance_weighted
//	ARCHETYPE_LOGGING_OUTPUT_OTEL              -> logging.output.otel
//
// Unknown variables fall back to splitting on the first underscore
// (SECTION_FIELD_NAME -> section.field_name).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	keys := envKeys()
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return envToKey(keys, s)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// readConfigFile reads path after checking size and permissions on the
// opened descriptor.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(content) > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: more than %d bytes", maxConfigFileSize)
	}
	return content, nil
}

// validateConfigFileProperties rejects non-regular, oversized, and
// group- or world-writable files.
func validateConfigFileProperties(info os.FileInfo) error {
	if !info.Mode().IsRegular() {
		return fmt.Errorf("config path is not a regular file")
	}
	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm&0o022 != 0 {
			return fmt.Errorf("insecure config file permissions: %v (must not be group or world writable)", perm)
		}
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}

// envToKey maps ARCHETYPE_SECTION_FIELD to a koanf key.
func envToKey(keys map[string]string, s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if key, ok := keys[lower]; ok {
		return key
	}

	section, field, found := strings.Cut(lower, "_")
	if !found {
		return lower
	}
	return section + "." + field
}

// envKeys indexes every leaf koanf key of Config by its underscore form.
func envKeys() map[string]string {
	keys := make(map[string]string)
	collectKeys(reflect.TypeFor[Config](), "", keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys map[string]string) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		path := tag
		if prefix != "" {
			path = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, path, keys)
			continue
		}
		keys[strings.ReplaceAll(path, ".", "_")] = path
	}
}
