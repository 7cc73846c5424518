package cli

import (
	"fmt"

	"github.com/AlexZinkM/wallet-backup/internal/backup"
	"github.com/AlexZinkM/wallet-backup/internal/config"
	"github.com/AlexZinkM/wallet-backup/internal/crypto"
	"github.com/AlexZinkM/wallet-backup/internal/manifest"

	"github.com/spf13/cobra"
)

var (
	createManifest string
	createDuress   string
	createFormat   string
	createOutput   string
)

func init() {
	createCmd.Flags().StringVarP(&createManifest, "manifest", "m", "", "TOML manifest with the accounts to back up")
	createCmd.Flags().StringVar(&createDuress, "duress", "", "TOML manifest for the duress backup (v4 only)")
	createCmd.Flags().StringVarP(&createFormat, "format", "f", "", "backup format: v2, v3 or v4 (default from WALLETBACKUP_DEFAULT_FORMAT)")
	createCmd.Flags().StringVarP(&createOutput, "output", "o", "", "output file")
	_ = createCmd.MarkFlagRequired("manifest")
	_ = createCmd.MarkFlagRequired("output")
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backup from a manifest",
	Long: `Create a backup from a manifest.

v2 and v3 backups record their scrypt parameters next to the ciphertext.
A v4 container records nothing, so a v4 backup made with non-default
WALLETBACKUP_KDF_N, WALLETBACKUP_KDF_R or WALLETBACKUP_KDF_P only restores
when the same values are set again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(createFormat)
		if err != nil {
			return err
		}

		doc, err := loadDocument(createManifest)
		if err != nil {
			return err
		}
		req := backup.CreateRequest{Format: format, Main: doc}

		if createDuress != "" {
			duress, err := loadDocument(createDuress)
			if err != nil {
				return err
			}
			req.Duress = &duress
		}

		if format == backup.FormatV4 && !defaultKdf() {
			Logger.Warnf("v4 backups do not store scrypt parameters: set the same WALLETBACKUP_KDF_N/R/P to restore this file")
		}

		req.MainPassword, err = readNewPassword("Backup password")
		if err != nil {
			return err
		}
		defer clear(req.MainPassword)

		if req.Duress != nil {
			req.DuressPassword, err = readNewPassword("Duress password")
			if err != nil {
				return err
			}
			defer clear(req.DuressPassword)
		}

		service, err := newService()
		if err != nil {
			return err
		}
		data, err := service.Create(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		if err := writeOutput(createOutput, data); err != nil {
			return err
		}

		Logger.Infof("Wrote %d bytes", len(data))
		fmt.Fprintf(cmd.OutOrStdout(), "Backup (%s) written to %s\n", format, createOutput)
		return nil
	},
}

func parseFormat(s string) (backup.Format, error) {
	if s == "" {
		s = config.Get().DefaultFormat
	}
	switch s {
	case "v2":
		return backup.FormatFullV2, nil
	case "v2-wallet":
		return backup.FormatWalletV2, nil
	case "v3":
		return backup.FormatV3, nil
	case "v4":
		return backup.FormatV4, nil
	}
	return backup.FormatUnknown, fmt.Errorf("unknown format %q", s)
}

func loadDocument(path string) (backup.Document, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return backup.Document{}, err
	}
	return m.Document()
}

func defaultKdf() bool {
	got, want := config.Get().KdfParams(), crypto.DefaultKdfParams("")
	return got.N == want.N && got.R == want.R && got.P == want.P
}
