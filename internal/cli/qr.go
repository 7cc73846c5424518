package cli

import (
	"fmt"

	"github.com/AlexZinkM/wallet-backup/internal/backup"
	"github.com/AlexZinkM/wallet-backup/internal/model"
	"github.com/AlexZinkM/wallet-backup/internal/qr"

	"github.com/spf13/cobra"
)

var qrSize int

func init() {
	qrCmd.Flags().IntVar(&qrSize, "size", 512, "image size in pixels")
}

var qrCmd = &cobra.Command{
	Use:   "qr <backup> <out.png>",
	Short: "Render a JSON backup as a QR code image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		switch backup.Detect(data) {
		case backup.FormatV3, backup.FormatFullV2, backup.FormatWalletV2, backup.FormatLegacy:
		default:
			return fmt.Errorf("%w: only JSON backups can be rendered", model.ErrUnsupportedFormat)
		}

		png, err := qr.PNG(data, qrSize)
		if err != nil {
			return err
		}
		if err := writeOutput(args[1], png); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "QR code written to %s\n", args[1])
		return nil
	},
}
