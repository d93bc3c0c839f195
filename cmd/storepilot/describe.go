package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDescribeCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "describe <product-id>",
		Short: "Replace a product's description",
		Long: `Opens the product's description tab, replaces the editor content with
the given text and saves the page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read description from %s: %w", file, err)
			}

			app, err := connect(cmd)
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.store.SetDescription(cmd.Context(), args[0], string(text)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "description of product %s updated\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file holding the new description (HTML or plain text)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
