package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify configuration and admin credentials",
		Long:  `Loads the configuration, launches the browser and performs a login.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connect(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			fmt.Fprintf(cmd.OutOrStdout(), "login ok (%s)\n", app.cfg.BaseURL)
			return nil
		},
	}
}
