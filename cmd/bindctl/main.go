// Command bindctl drives native object bindings in reference host runtimes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ygrebnov/bind"
	"github.com/ygrebnov/bind/host"
)

type globalOptions struct {
	configPath string
	logLevel   string
	color      string
}

var (
	opts   globalOptions
	cfg    = defaultConfig()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "bindctl",
	Short:         "Exercise native object bindings",
	Long:          `bindctl binds sample native types into host runtimes and reports object lifetimes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&opts.color, "color", "auto", "colorize output (auto|on|off)")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command) error {
	c := defaultConfig()
	if opts.configPath != "" {
		loaded, err := loadConfig(opts.configPath)
		if err != nil {
			return err
		}
		c = loaded
	}
	if cmd.Flags().Changed("log-level") {
		c.Log.Level = opts.logLevel
	}
	if err := c.validate(); err != nil {
		return err
	}

	mode, err := readColorMode(opts.color)
	if err != nil {
		return err
	}
	applyColorMode(mode)

	l, err := newLogger(c.Log)
	if err != nil {
		return err
	}
	logger = l
	bind.SetLogger(l.Named("bind"))
	host.SetLogger(l.Named("host"))
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failColor.Sprint("error:"), err)
		os.Exit(1)
	}
}
