package cli

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlexZinkM/wallet-backup/internal/backup"
	"github.com/AlexZinkM/wallet-backup/internal/codec"
	"github.com/AlexZinkM/wallet-backup/internal/model"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var restoreReveal bool

func init() {
	restoreCmd.Flags().BoolVar(&restoreReveal, "reveal", false, "print the restored secrets")
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Unlock a backup and list its accounts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}

		password, err := readPassword("Backup password")
		if err != nil {
			return err
		}
		defer clear(password)

		service, err := newService()
		if err != nil {
			return err
		}
		result, err := service.Restore(data, password)
		if errors.Is(err, model.ErrNoPayload) {
			fmt.Fprintln(cmd.OutOrStdout(), color.RedString("✗")+" No data for this password")
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to restore backup: %w", err)
		}

		printResult(cmd.OutOrStdout(), result, restoreReveal)
		return nil
	},
}

func printResult(w io.Writer, r *backup.RestoreResult, reveal bool) {
	fmt.Fprintf(w, "%s Unlocked %d accounts (%s)\n", color.GreenString("✓"), len(r.Accounts), r.Format)
	for _, a := range r.Accounts {
		name := a.Name
		if name == "" {
			name = a.ID
		}
		fmt.Fprintf(w, "  %s  %s  %d wallets\n", color.CyanString(name), a.Secret.Type(), len(a.Wallets))
		if reveal {
			fmt.Fprintf(w, "    %s\n", describeSecret(a.Secret))
		}
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "%s Skipped %d records: %s\n", color.YellowString("!"), len(r.Skipped), strings.Join(r.Skipped, ", "))
	}
}

func describeSecret(secret model.AccountSecret) string {
	switch s := secret.(type) {
	case model.Mnemonic:
		if s.Passphrase != "" {
			return strings.Join(s.Words, " ") + " (passphrase: " + s.Passphrase + ")"
		}
		return strings.Join(s.Words, " ")
	case model.EvmPrivateKey:
		// the stored two's complement bytes, sign extended to 32 bytes
		_, raw, err := codec.Encode(s)
		if err != nil {
			return ""
		}
		return "0x" + hex.EncodeToString(signExtend(raw, 32))
	case model.HardwareCardRef:
		return fmt.Sprintf("card %s, public key %s", s.CardID, s.WalletPublicKey)
	case model.ChainAddress:
		return s.Address
	case model.MoneroMnemonic:
		return fmt.Sprintf("%s (height %d)", strings.Join(s.Words, " "), s.BirthdayHeight)
	case model.StellarSecretKey:
		return s.Key
	case model.ExtendedKey:
		return s.Serialized
	case model.ZcashViewingKey:
		return s.Key
	}
	return ""
}

func signExtend(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	fill := byte(0x00)
	if b[0]&0x80 != 0 {
		fill = 0xff
	}
	return append(bytes.Repeat([]byte{fill}, n-len(b)), b...)
}
