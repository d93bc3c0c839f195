package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <product-id> <pattern>...",
		Short: "Upload product images through the embedded file manager",
		Long: `Expands the local file patterns, opens the product's image tab and
uploads every matching file. Patterns support * within a directory and
** across directories. Files the widget does not confirm are reported
but do not fail the command.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connect(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			productID, patterns := args[0], args[1:]
			uploaded, err := app.store.UploadImages(cmd.Context(), productID, patterns)
			if err != nil {
				return err
			}

			for _, path := range uploaded {
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\n", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) confirmed\n", len(uploaded))
			return nil
		},
	}
}
