package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/arthur-debert/archup/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "ARCHUP_"

// LoadOptions controls which layers are merged
type LoadOptions struct {
	// File is an explicit config file. A missing explicit file is an error;
	// the default location is optional.
	File         string
	SkipUserFile bool
	SkipEnv      bool
	// Overrides are dotted keys applied last, e.g. from --set on the CLI
	Overrides map[string]interface{}
}

// Load merges defaults, the user file, environment and explicit overrides
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User file
	var source string
	if !opts.SkipUserFile {
		path, explicit := opts.File, opts.File != ""
		if !explicit {
			path = paths.ConfigFile()
		}
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).
					WithDetail("path", path)
			}
			source = path
			logger.Debug().Str("path", path).Msg("Loaded user config")
		} else if explicit {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", path).
				WithDetail("path", path)
		}
	}

	// 3. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 4. Explicit overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}
	cfg.Raw = k.Raw()
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps ARCHUP_DOTFILES_REPO to dotfiles.repo. Only the first
// underscore separates the section; keys keep their own underscores.
func envKey(s string) string {
	name := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if s == paths.EnvConfigDir {
		return ""
	}
	section, key, found := strings.Cut(name, "_")
	if !found || key == "" {
		return ""
	}
	return section + "." + key
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// ParseOverrides turns "section.key=value" pairs into an override map
func ParseOverrides(pairs []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || !strings.Contains(key, ".") {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid override %q, expected section.key=value", pair).
				WithDetail("override", pair)
		}
		out[key] = value
	}
	return out, nil
}
