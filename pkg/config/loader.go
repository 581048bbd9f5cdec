package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/arthur-debert/pkgweave/pkg/utils"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read as configuration.
// A double underscore separates nested keys:
// PKGWEAVE_RECONCILE__ENABLED sets reconcile.enabled.
const EnvPrefix = "PKGWEAVE_"

// FileNames are the workspace config file names, in lookup order
var FileNames = []string{"pkgweave.toml", ".pkgweave.toml"}

// LoadOptions selects the configuration sources
type LoadOptions struct {
	// Workspace is the workspace directory, the current directory when empty
	Workspace string
	// ConfigFile is an explicit config file loaded after the workspace one
	ConfigFile string
	// Overrides are dotted keys applied last
	Overrides map[string]interface{}
}

// Load merges, in increasing precedence, the embedded defaults, the
// workspace config file, the explicit config file, environment variables
// and overrides.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")

	workspace, err := resolveWorkspace(opts.Workspace)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Workspace config
	if path := FindConfigFile(workspace); path != "" {
		logger.Debug().Str("path", path).Msg("Loading workspace config")
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
	}

	// 3. Explicit config
	if opts.ConfigFile != "" {
		path := utils.ExpandPath(opts.ConfigFile)
		if !filepath.IsAbs(path) {
			path = filepath.Join(workspace, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s is not readable", path)
		}
		logger.Debug().Str("path", path).Msg("Loading explicit config")
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 5. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	cfg.Workspace = workspace
	return cfg, nil
}

// FindConfigFile returns the workspace config file path, or "" when none
// exists
func FindConfigFile(workspace string) string {
	for _, name := range FileNames {
		path := filepath.Join(workspace, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadDefaults returns the embedded defaults alone
func LoadDefaults() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	return &cfg, nil
}

func resolveWorkspace(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(utils.ExpandPath(dir))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigLoad, "failed to resolve workspace %s", dir)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigLoad, "workspace %s is not accessible", abs)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrConfigLoad, "workspace %s is not a directory", abs)
	}
	return abs, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// String renders the effective configuration for diagnostics
func (c *Config) String() string {
	return fmt.Sprintf("workspace=%s output=%s entrypoints=%d copy=%d reconcile=%t fixup=%t",
		c.Workspace, c.OutputDirectory, len(c.Entrypoints), len(c.Copy), c.Reconcile.Enabled, c.FixInjectedImports)
}
