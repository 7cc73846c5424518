package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reencryptCmd = &cobra.Command{
	Use:   "reencrypt <in> <out>",
	Short: "Re-encrypt a JSON backup under a new password as v3",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}

		oldPassword, err := readPassword("Current password")
		if err != nil {
			return err
		}
		defer clear(oldPassword)
		newPassword, err := readNewPassword("New password")
		if err != nil {
			return err
		}
		defer clear(newPassword)

		service, err := newService()
		if err != nil {
			return err
		}
		out, err := service.Reencrypt(cmd.Context(), data, oldPassword, newPassword)
		if err != nil {
			return fmt.Errorf("failed to re-encrypt backup: %w", err)
		}
		if err := writeOutput(args[1], out); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Re-encrypted backup written to %s\n", args[1])
		return nil
	},
}
