package cmd

import (
	"fmt"

	"github.com/bnema/tgsession/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigShowCmd(app))

	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var (
		baseURL string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.toml with the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := app.config
			if baseURL != "" {
				cfg.Backend.BaseURL = baseURL
			}
			if err := config.WriteFile(cfg, force); err != nil {
				return err
			}
			app.config = cfg
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.File)
			return err
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Backend base URL to store")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Encode(app.config)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "# %s\n", app.config.File)
			_, err = out.Write(data)
			return err
		},
	}
}
