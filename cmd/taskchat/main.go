package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/taskchat/internal/config"
	"github.com/vovakirdan/taskchat/internal/log"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "taskchat",
		Short:         "Chat and task board over REST and websockets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default config.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(flags), newTUICmd(flags))
	return root
}

// loadConfig reads config with a bootstrap logger writing to stderr, then applies flag overrides.
func (f *rootFlags) loadConfig(overrides config.Config) (config.Config, error) {
	bootstrap := log.New(f.logLevel, os.Stderr)

	cfg, path, err := config.Load(bootstrap, f.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	overrides.LogLevel = f.logLevel
	cfg.UpdateFrom(overrides)
	return cfg, nil
}
