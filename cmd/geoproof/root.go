package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chazu/geoproof/pkg/config"
	"github.com/chazu/geoproof/pkg/logging"
)

var (
	settings config.Config
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "geoproof",
	Short:         "Geometric theorem prover",
	Long:          "geoproof normalizes geometric statements over a configuration and derives proofs of target theorems.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.Load()
		if err != nil {
			return err
		}
		l, err := logging.New(settings.LogLevel, settings.LogFormat)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .geoproof.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console or json)")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))

	rootCmd.AddCommand(proveCmd, validateCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".geoproof")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("GEOPROOF")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
