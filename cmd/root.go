// Package cmd contains the szopper command line.
package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/szopper/go-szopper/config"
	"github.com/szopper/go-szopper/log"
)

var (
	// Version is the app's semantic version. Designed to be overwritten by make.
	Version string

	// Commit is the git commit used to build the app. Designed to be overwritten by make.
	Commit string
)

// EnvFile is loaded into the environment before the config.
const EnvFile = ".env"

type cli struct {
	cfg    config.Config
	logger *zap.Logger
	fs     afero.Fs
}

// NewRootCmd creates the szopper command with all subcommands.
func NewRootCmd() *cobra.Command {
	return newRootCmd(afero.NewOsFs())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	c := &cli{
		cfg:    config.DefaultConfig(),
		logger: zap.NewNop(),
		fs:     fs,
	}
	root := &cobra.Command{
		Use:               "szopper",
		Short:             "Shopping list synchronized between nearby devices",
		Version:           fmt.Sprintf("%s+%s", Version, Commit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = c.logger.Sync() },
	}
	addFlags(root.PersistentFlags(), &c.cfg)

	root.AddCommand(
		c.listCmd(),
		c.addCmd(),
		c.toggleCmd(),
		c.renameCmd(),
		c.removeCmd(),
		c.reorderCmd(),
		c.resetCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.serveCmd(),
		c.discoverCmd(),
		c.syncCmd(),
	)
	return root
}

func addFlags(flags *pflag.FlagSet, cfg *config.Config) {
	flags.StringVarP(&cfg.ConfigFile, "config", "c",
		cfg.ConfigFile, "load configuration from file")
	flags.StringVarP(&cfg.DataDir, "data-dir", "d",
		cfg.DataDir, "directory with the list and device identity")
	flags.StringVar(&cfg.DeviceName, "device-name",
		cfg.DeviceName, "name shown to other devices")
	flags.StringVar(&cfg.Log.Level, "log-level",
		cfg.Log.Level, "log level (debug, info, warn, error)")
	flags.StringVar(&cfg.Log.Encoder, "log-encoder",
		cfg.Log.Encoder, "log encoder (console, json)")
	flags.StringVar(&cfg.MetricsListen, "metrics-listen",
		cfg.MetricsListen, "address of the prometheus endpoint, disabled when empty")
	flags.Var(&cfg.Sync.Strategy, "strategy",
		"conflict resolution strategy (last_updated_wins, merge_all, manual_resolution)")
}

// setup loads the config file and environment. Flags set on the command line
// take precedence over both.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	changed := map[string]string{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})
	if err := config.LoadEnv(EnvFile); err != nil {
		return err
	}
	if err := config.Load(&c.cfg, c.cfg.ConfigFile); err != nil {
		return err
	}
	for name, value := range changed {
		if err := cmd.Flags().Set(name, value); err != nil {
			return fmt.Errorf("reapply flag %s: %w", name, err)
		}
	}
	c.cfg.Finalize()
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger, err := log.New("szopper", c.cfg.Log)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}
