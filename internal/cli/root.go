// Package cli implements the walletbackup command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/wallet-backup/internal/backup"
	"github.com/AlexZinkM/wallet-backup/internal/config"
	"github.com/AlexZinkM/wallet-backup/internal/logging"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	Logger  logging.Logger

	// replaced in tests
	readPassword    = config.PromptForPassword
	readNewPassword = config.PromptForNewPassword

	rootCmd = &cobra.Command{
		Use:   "walletbackup",
		Short: "Create and restore encrypted wallet backups",
		Long: `walletbackup writes wallet secrets into password protected backup files
and restores them.

Formats:
  v2  plain JSON, every secret encrypted on its own
  v3  the whole document encrypted once (default)
  v4  binary container holding a main and an optional duress backup`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			Logger = logging.Logger{Verbose: verbose, Debug: debug, Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
			if err := config.Init(); err != nil {
				return err
			}
			Logger.Debugf("Loaded config: %+v", *config.Get())
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(reencryptCmd)
	rootCmd.AddCommand(qrCmd)
}

// Execute runs the root command. Cancelling ctx aborts a v4 build between
// placement attempts.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		Logger.Errorf("%v", err)
	}
	return err
}

func newService() (*backup.Service, error) {
	cfg := config.Get().ServiceConfig()
	cfg.Logger = Logger
	return backup.NewService(cfg)
}

// writeOutput refuses to overwrite a non-empty file.
func writeOutput(path string, data []byte) error {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return fmt.Errorf("%s is not empty: %w", path, os.ErrExist)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	// Skip UTF-8 BOM if present
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	return data, nil
}
