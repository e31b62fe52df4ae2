package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/johnwards/leadsearch/internal/pagination"
)

func cursorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Encode or decode pagination cursors",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode <offset>",
			Short: "Print the cursor for an offset",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				offset, err := strconv.Atoi(args[0])
				if err != nil || offset < 0 {
					return fmt.Errorf("offset must be a non-negative integer, got %q", args[0])
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), pagination.EncodeCursor(offset))
				return err
			},
		},
		&cobra.Command{
			Use:   "decode <token>",
			Short: "Print the offset a cursor points at",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				offset, err := pagination.DecodeCursor(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), offset)
				return err
			},
		},
	)
	return cmd
}
