package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/wallet-backup/internal/backup"
	"github.com/AlexZinkM/wallet-backup/internal/deniable"
	"github.com/AlexZinkM/wallet-backup/internal/model"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the tool.
// Passwords are never read from the environment, see PromptForPassword.
type Config struct {
	KdfN     int `envconfig:"KDF_N" default:"16384"`
	KdfR     int `envconfig:"KDF_R" default:"8"`
	KdfP     int `envconfig:"KDF_P" default:"4"`
	KdfDkLen int `envconfig:"KDF_DKLEN" default:"32"`

	// AlignPayload pads plain v2 output to a multiple of this many bytes; 0 disables.
	AlignPayload int `envconfig:"ALIGN_PAYLOAD" default:"0"`

	ContainerSpreadFactor int `envconfig:"CONTAINER_SPREAD_FACTOR" default:"16"`
	ContainerQuantum      int `envconfig:"CONTAINER_QUANTUM" default:"1024"`
	ContainerMaxAttempts  int `envconfig:"CONTAINER_MAX_ATTEMPTS" default:"32"`

	DefaultFormat string `envconfig:"DEFAULT_FORMAT" default:"v3"`
}

const envPrefix = "WALLETBACKUP"

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from WALLETBACKUP_* environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process(envPrefix, c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	cfg = c
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// KdfParams returns the scrypt parameters for new backups.
func (c *Config) KdfParams() model.KdfParams {
	return model.KdfParams{
		DkLen: c.KdfDkLen,
		N:     c.KdfN,
		P:     c.KdfP,
		R:     c.KdfR,
	}
}

// ContainerOptions returns the v4 container parameters.
func (c *Config) ContainerOptions() deniable.Options {
	return deniable.Options{
		Kdf:          c.KdfParams(),
		SpreadFactor: c.ContainerSpreadFactor,
		Quantum:      c.ContainerQuantum,
		MaxAttempts:  c.ContainerMaxAttempts,
	}
}

// ServiceConfig returns the backup service wiring for this configuration.
func (c *Config) ServiceConfig() backup.Config {
	return backup.Config{
		Kdf:       c.KdfParams(),
		Align:     c.AlignPayload,
		Container: c.ContainerOptions(),
	}
}

// PromptForPassword reads a password from the terminal without echo.
// Caller must zero the returned slice after use.
func PromptForPassword(label string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the tool interactively to enter password")
	}
	fmt.Fprintf(os.Stderr, "%s: ", label)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	password := make([]byte, len(raw))
	copy(password, raw)
	clear(raw)
	return password, nil
}

// PromptForNewPassword asks twice and fails when the entries differ.
func PromptForNewPassword(label string) ([]byte, error) {
	first, err := PromptForPassword(label)
	if err != nil {
		return nil, err
	}
	second, err := PromptForPassword("Repeat " + label)
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)

	if string(first) != string(second) {
		clear(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}
