package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "tgs",
		Short:         "Telegram mini-app session client (tgs)",
		Long:          "tgs replays a Telegram mini-app host from a stored init-data profile: it logs in to the backend, keeps the session alive with heartbeats, and reads or updates per-user data.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr instead of the log file")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return app.openLogger(cmd.ErrOrStderr(), verbose)
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newProfileCmd(app),
		newSessionCmd(app),
		newLoginCmd(app),
		newUserDataCmd(app),
		newFavoriteCmd(app),
		newReactCmd(app),
	)

	return rootCmd
}
