package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "rsvp",
		Short:         "Read text one word at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.prefsPath, "prefs", "", "Preferences file path (default $RSVP_CONFIG_DIR/preferences.yaml)")
	rootCmd.PersistentFlags().StringVar(&ctx.apiURL, "api", "", "Fetch service base URL (default $RSVP_API_URL)")

	rootCmd.AddCommand(newReadCommand(ctx))
	rootCmd.AddCommand(newParseCommand(ctx))
	rootCmd.AddCommand(newInfoCommand(ctx))
	rootCmd.AddCommand(newPrefsCommand(ctx))

	return rootCmd
}
