// Package app implements the main application commands.
package app

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acctmgr/acctmgr/internal/config"
	"github.com/acctmgr/acctmgr/internal/logger"
)

const (
	flagConfig    = "config"
	envConfigPath = "ACCTMGR_CONFIG_PATH"
)

var rootCmd = &cobra.Command{
	Use:   "acctmgr",
	Short: "acctmgr manages members, their platform accounts and activation codes",
	Long: `acctmgr is a membership backend: users register with an activation code,
keep platform accounts with layered settings, and administrators mint and
distribute the codes.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	cobra.OnInitialize(loadDotEnv)

	rootCmd.PersistentFlags().String(flagConfig, "./etc/", "Directory holding main.toml")
	_ = viper.BindPFlag(flagConfig, rootCmd.PersistentFlags().Lookup(flagConfig))
	_ = viper.BindEnv(flagConfig, envConfigPath)
}

// loadDotEnv exports a .env file of the working directory, if any, before config is read.
func loadDotEnv() {
	_ = godotenv.Load()
}

// loadConfig reads the configuration and sets up the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.ReadConfig(viper.GetString(flagConfig))
	if err != nil {
		return nil, err
	}

	if err = logger.Init(cfg.Log); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
