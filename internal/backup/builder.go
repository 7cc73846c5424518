package backup

import (
	"fmt"
	"time"

	"github.com/AlexZinkM/wallet-backup/internal/codec"
	"github.com/AlexZinkM/wallet-backup/internal/crypto"
	"github.com/AlexZinkM/wallet-backup/internal/model"

	"github.com/google/uuid"
)

// Builder assembles plaintext backup documents whose secrets are sealed
// under the backup password.
type Builder struct {
	envelope *crypto.Envelope
	now      func() time.Time
	newID    func() string
}

// NewBuilder creates a Builder that seals secrets with envelope.
func NewBuilder(envelope *crypto.Envelope) *Builder {
	return &Builder{
		envelope: envelope,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Exportable reports whether an account may be written to a backup.
// Hardware card keys never leave the card.
func Exportable(account model.Account) bool {
	_, isCard := account.Secret.(model.HardwareCardRef)
	return account.Secret != nil && !isCard
}

// WalletBackup builds the single-wallet record for one account. It returns
// model.ErrUnsupportedAccount for accounts that are never exported.
func (b *Builder) WalletBackup(aw model.AccountWallets, password []byte) (*model.WalletBackup, error) {
	if !Exportable(aw.Account) {
		return nil, model.ErrUnsupportedAccount
	}

	tag, data, err := codec.Encode(aw.Account.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encode secret of account %s: %w", aw.Account.ID, err)
	}
	defer clear(data)

	sealed, err := b.envelope.Seal(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt secret of account %s: %w", aw.Account.ID, err)
	}

	id := aw.Account.ID
	if id == "" {
		id = b.newID()
	}

	wallets := make([]model.EnabledWalletBackup, 0, len(aw.Wallets))
	for _, w := range aw.Wallets {
		wallets = append(wallets, model.EnabledWalletBackup{
			TokenQueryID: w.TokenQueryID,
			CoinName:     w.CoinName,
			CoinCode:     w.CoinCode,
			Decimals:     w.Decimals,
		})
	}

	return &model.WalletBackup{
		Crypto:         *sealed,
		ID:             id,
		Type:           string(tag),
		EnabledWallets: wallets,
		ManualBackup:   aw.Account.ManualBackup,
		FileBackup:     aw.Account.FileBackup,
		Timestamp:      b.now().Unix(),
		Version:        model.VersionV2,
	}, nil
}

// Document is the caller supplied content of one full backup.
type Document struct {
	Accounts  []model.AccountWallets
	Settings  model.Settings
	Watchlist []string
}

// FullBackup builds a multi-wallet document. Accounts that are not
// exportable are skipped without error.
func (b *Builder) FullBackup(doc Document, password []byte) (*model.FullBackup, error) {
	wallets := make([]model.NamedWalletBackup, 0, len(doc.Accounts))
	for _, aw := range doc.Accounts {
		if !Exportable(aw.Account) {
			continue
		}
		wb, err := b.WalletBackup(aw, password)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, model.NamedWalletBackup{Name: aw.Account.Name, Backup: *wb})
	}

	watchlist := doc.Watchlist
	if watchlist == nil {
		watchlist = []string{}
	}

	return &model.FullBackup{
		Wallets:   wallets,
		Watchlist: watchlist,
		Settings:  doc.Settings,
		Timestamp: b.now().Unix(),
		Version:   model.VersionV2,
		ID:        b.newID(),
	}, nil
}
