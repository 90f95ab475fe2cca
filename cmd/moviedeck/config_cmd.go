package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviedeck/internal/config"
)

// newConfigCmd returns the "config" subcommand group for configuration management.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

// newConfigValidateCmd returns the "config validate" subcommand. It prints the
// effective settings after defaults and environment overrides.
func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			fmt.Println(styleSuccess.Render("✓ Configuration is valid"))
			for _, line := range configSummary(cfg) {
				fmt.Println(styleDim.Render("  " + line))
			}
			return nil
		},
	}
}

// configSummary lists the effective settings without secrets.
func configSummary(cfg *config.Config) []string {
	telegram := "disabled"
	if cfg.Telegram != nil {
		telegram = "enabled"
		if n := len(cfg.Telegram.AllowedUserIDs); n > 0 {
			telegram += ", " + strconv.Itoa(n) + " allowed users"
		}
	}
	return []string{
		"tmdb:     " + sanitizeURL(cfg.TMDb.BaseURL) + " (" + cfg.TMDb.Language + ")",
		fmt.Sprintf("pacing:   %.0f req/s, timeout %ds", cfg.TMDb.RequestsPerSecond, cfg.TMDb.TimeoutSeconds),
		"server:   :" + strconv.Itoa(cfg.Server.Port),
		"telegram: " + telegram,
		"log:      " + cfg.App.LogLevel,
	}
}
