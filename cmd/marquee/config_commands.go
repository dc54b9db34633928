package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "output", "o", "", "Target path (default: ~/.config/marquee/config.toml)")

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the resolved configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, resolvedPath, exists, err := config.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Config file:    %s\n", resolvedPath)
			} else {
				fmt.Fprintf(out, "Config file:    %s (not found; defaults in effect)\n", resolvedPath)
			}
			fmt.Fprintf(out, "Data dir:       %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Log dir:        %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "Export dir:     %s\n", cfg.Paths.ExportDir)
			fmt.Fprintf(out, "Source:         %s (delay %ds, %d attempts)\n",
				cfg.Source.BaseURL, cfg.Source.RequestDelaySeconds, cfg.Source.MaxAttempts)
			fmt.Fprintf(out, "Strategy:       %s\n", cfg.Collection.Strategy)
			fmt.Fprintf(out, "Match window:   %d days\n", cfg.Matching.ReleaseWindowDays)
			fmt.Fprintf(out, "TMDB key set:   %s\n", yesNo(strings.TrimSpace(cfg.TMDB.APIKey) != ""))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
