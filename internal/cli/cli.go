// Package cli implements the stackcanvas command-line interface.
//
// The commands work on stack documents, read either from a JSON file or by id
// from the configured store:
//   - new, list: create and list stored stacks
//   - inspect: print containers, members and resource profiles
//   - browse: page through container members interactively
//   - render: draw a stack as SVG or DOT
//   - export: emit Kubernetes or docker compose manifests
//   - simulate: replay a scripted drag session on a virtual clock
//   - serve: host the HTTP editor API
//   - templates: list and validate container templates
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried in the [CLI] struct and attached to the command context.
//
// # Configuration
//
// Settings are read from $XDG_CONFIG_HOME/stackcanvas/config.toml, or the
// file named by --config. See [Config].
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackcanvas/pkg/buildinfo"
	"github.com/matzehuels/stackcanvas/pkg/cache"
	"github.com/matzehuels/stackcanvas/pkg/stack"
	"github.com/matzehuels/stackcanvas/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "stackcanvas"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stackcanvas composes tech stacks into containers",
		Long:         `Stackcanvas is a toolkit for composing technology stacks on a canvas: components are grouped into docker, kubernetes or custom containers whose resources, ports and layout are derived from their members.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stackcanvas/config.toml)")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.listCommand())

	// Commands taking a document as first argument.
	for _, cmd := range []*cobra.Command{
		c.inspectCommand(),
		c.browseCommand(),
		c.renderCommand(),
		c.exportCommand(),
		c.simulateCommand(),
	} {
		cmd.ValidArgsFunction = c.completeDocuments
		root.AddCommand(cmd)
	}

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Resources
// =============================================================================

// openStore opens the configured document store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, c.Config.Store)
}

// registry returns the built-in templates plus those from the config.
func (c *CLI) registry() (*stack.Registry, error) {
	reg := stack.NewRegistry()
	for _, path := range c.Config.Templates {
		templates, err := stack.LoadTemplatesFile(path)
		if err != nil {
			return nil, err
		}
		for _, t := range templates {
			if err := reg.Register(t); err != nil {
				return nil, err
			}
		}
		c.Logger.Debug("loaded templates", "path", path, "count", len(templates))
	}
	return reg, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// loadDocument reads ref as a JSON file when one exists at that path and
// otherwise as a document id in the store.
func (c *CLI) loadDocument(ctx context.Context, ref string) (stack.Document, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return stack.ReadFile(ref)
	}
	st, err := c.openStore(ctx)
	if err != nil {
		return stack.Document{}, err
	}
	defer st.Close()
	return st.Get(ctx, ref)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stackcanvas/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/stackcanvas/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
