package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rsvp-reader/internal/reader/preferences"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change reader preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, prefs, err := ctx.loadPreferences()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), keyValueTable(prefs.Fields()))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one preference",
		Args:      cobra.ExactArgs(2),
		ValidArgs: preferences.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, prefs, err := ctx.loadPreferences()
			if err != nil {
				return err
			}
			if err := prefs.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := preferences.Save(path, prefs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore default preferences and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.preferencesPath()
			if err != nil {
				return err
			}
			if err := preferences.Save(path, preferences.Default()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Preferences reset")
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the preferences file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.preferencesPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	prefsCmd.AddCommand(setCmd, resetCmd, pathCmd)
	return prefsCmd
}
