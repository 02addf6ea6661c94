package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-extractor/internal/schema"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <json-file>",
		Short: "Validate a record JSON file against the output schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read JSON file: %w", err)
			}

			err = schema.ValidateJSON(data)
			var ve *schema.ValidationError
			if errors.As(err, &ve) {
				for _, fe := range ve.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", fe.Field, fe.Message)
				}
				return fmt.Errorf("%s: %d validation error(s)", args[0], len(ve.Errors))
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
			return nil
		},
	}
}
