package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/history"
	"github.com/matzehuels/stackcanvas/pkg/store"
)

// configFile is the file name looked up in the config directory.
const configFile = "config.toml"

// Config is the CLI configuration file:
//
//	templates = ["~/stacks/templates.toml"]
//
//	[store]
//	backend = "redis"
//	[store.redis]
//	addr = "localhost:6379"
//
//	[editor]
//	debounce = "300ms"
//	history = 50
//
//	[server]
//	addr = ":8080"
//
//	[export]
//	namespace = "shop"
type Config struct {
	Templates []string     `toml:"templates"`
	Store     store.Config `toml:"store"`
	Editor    EditorConfig `toml:"editor"`
	Server    ServerConfig `toml:"server"`
	Export    ExportConfig `toml:"export"`
}

// EditorConfig tunes editor sessions.
type EditorConfig struct {
	Debounce duration `toml:"debounce"`
	History  int      `toml:"history" validate:"gte=1,lte=1000"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr    string `toml:"addr" validate:"required"`
	Metrics bool   `toml:"metrics"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Namespace string `toml:"namespace" validate:"omitempty,max=63"`
	Registry  string `toml:"registry"`
}

// duration decodes TOML strings like "300ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.New("duration must not be negative")
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Store:  store.Config{Backend: store.BackendFile},
		Editor: EditorConfig{Debounce: duration{history.DefaultDebounce}, History: history.DefaultMaxSnapshots},
		Server: ServerConfig{Addr: ":8080", Metrics: true},
	}
}

// LoadConfig reads path over the defaults. An empty path reads the default
// config file if present. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	for i, p := range cfg.Templates {
		cfg.Templates[i] = expandHome(p)
	}
	cfg.Store.Dir = expandHome(cfg.Store.Dir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "config field %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid config")
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
