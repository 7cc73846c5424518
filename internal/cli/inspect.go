package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the format of a backup without unlocking it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		service, err := newService()
		if err != nil {
			return err
		}
		report, err := service.Inspect(data)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Format: %s\nSize: %d bytes\n", report.Format, report.Size)
		if report.Records > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Records: %d\n", report.Records)
		}
		return nil
	},
}
