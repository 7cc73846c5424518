// Package manifest reads the TOML file the CLI uses to describe the
// accounts, wallets and settings that go into a backup.
//
// Example:
//
//	watchlist = ["bitcoin"]
//
//	[settings]
//	base_currency = "USD"
//
//	[[account]]
//	id = "main"
//	name = "Wallet 1"
//	type = "mnemonic"
//	words = "abandon abandon ... about"
//
//	[[account.wallet]]
//	token_query_id = "bitcoin|derived:84"
//	coin_code = "BTC"
//	decimals = 8
package manifest

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/AlexZinkM/wallet-backup/internal/backup"
	"github.com/AlexZinkM/wallet-backup/internal/model"

	"github.com/BurntSushi/toml"
)

// Manifest is the decoded manifest file.
type Manifest struct {
	Watchlist []string       `toml:"watchlist"`
	Settings  model.Settings `toml:"settings"`
	Accounts  []Account      `toml:"account"`
}

// Account describes one account. Type selects which secret fields are read:
// words and passphrase for mnemonics, key for private, stellar, extended and
// zcash keys, address for watch-only chains, the card fields for hardware
// cards, and words, password, height and inner_name for Monero.
type Account struct {
	ID           string `toml:"id"`
	Name         string `toml:"name"`
	Type         string `toml:"type"`
	ManualBackup bool   `toml:"manual_backup"`
	FileBackup   bool   `toml:"file_backup"`

	Words      string `toml:"words"`
	Passphrase string `toml:"passphrase"`
	Key        string `toml:"key"`
	Address    string `toml:"address"`

	CardID       string `toml:"card_id"`
	PublicKey    string `toml:"public_key"`
	BackupCards  int    `toml:"backup_cards"`
	SignedHashes int    `toml:"signed_hashes"`

	Password  string `toml:"password"`
	Height    int64  `toml:"height"`
	InnerName string `toml:"inner_name"`

	Wallets []Wallet `toml:"wallet"`
}

// Wallet is an enabled coin of an account.
type Wallet struct {
	TokenQueryID string `toml:"token_query_id"`
	CoinName     string `toml:"coin_name"`
	CoinCode     string `toml:"coin_code"`
	Decimals     int    `toml:"decimals"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return &m, nil
}

// Parse parses manifest text.
func Parse(data string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.Decode(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// Document converts the manifest into builder input.
func (m *Manifest) Document() (backup.Document, error) {
	doc := backup.Document{Settings: m.Settings, Watchlist: m.Watchlist}
	for i, a := range m.Accounts {
		secret, err := a.secret()
		if err != nil {
			return backup.Document{}, fmt.Errorf("account %d (%s): %w", i+1, a.Name, err)
		}

		wallets := make([]model.EnabledWallet, 0, len(a.Wallets))
		for _, w := range a.Wallets {
			wallets = append(wallets, model.EnabledWallet(w))
		}

		doc.Accounts = append(doc.Accounts, model.AccountWallets{
			Account: model.Account{
				ID:           a.ID,
				Name:         a.Name,
				Secret:       secret,
				ManualBackup: a.ManualBackup,
				FileBackup:   a.FileBackup,
			},
			Wallets: wallets,
		})
	}
	return doc, nil
}

// secret builds the AccountSecret selected by Type. Shape validation happens
// later, when the builder encodes it.
func (a Account) secret() (model.AccountSecret, error) {
	t := model.SecretType(a.Type)

	if chain, ok := model.ChainForType(t); ok {
		return model.ChainAddress{Address: a.Address, Chain: chain}, nil
	}

	switch t {
	case model.TypeMnemonic:
		return model.Mnemonic{Words: strings.Fields(a.Words), Passphrase: a.Passphrase}, nil
	case model.TypePrivateKey:
		key, ok := new(big.Int).SetString(strings.TrimPrefix(a.Key, "0x"), 16)
		if !ok {
			return nil, fmt.Errorf("private key is not hex")
		}
		return model.EvmPrivateKey{Key: key}, nil
	case model.TypeHardwareCard:
		return model.HardwareCardRef{
			CardID:           a.CardID,
			WalletPublicKey:  a.PublicKey,
			BackupCardsCount: a.BackupCards,
			SignedHashes:     a.SignedHashes,
		}, nil
	case model.TypeMoneroMnemonic:
		return model.MoneroMnemonic{
			Words:           strings.Fields(a.Words),
			Password:        a.Password,
			BirthdayHeight:  a.Height,
			WalletInnerName: a.InnerName,
		}, nil
	case model.TypeStellarSecretKey:
		return model.StellarSecretKey{Key: a.Key}, nil
	case model.TypeExtendedKey:
		return model.ExtendedKey{Serialized: a.Key}, nil
	case model.TypeZcashViewingKey:
		return model.ZcashViewingKey{Key: a.Key}, nil
	}
	return nil, fmt.Errorf("unknown account type %q", a.Type)
}
