package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AlexZinkM/wallet-backup/internal/codec"
	"github.com/AlexZinkM/wallet-backup/internal/common"
	"github.com/AlexZinkM/wallet-backup/internal/crypto"
	"github.com/AlexZinkM/wallet-backup/internal/deniable"
	"github.com/AlexZinkM/wallet-backup/internal/logging"
	"github.com/AlexZinkM/wallet-backup/internal/model"
)

// Config wires a Service. Zero values of Codec and Random select Base64 and
// crypto/rand.
type Config struct {
	Kdf       model.KdfParams
	Align     int
	Container deniable.Options
	Codec     common.BinaryCodec
	Random    io.Reader
	Logger    logging.Logger
}

// Service creates and restores backups in every supported format.
type Service struct {
	envelope  *crypto.Envelope
	builder   *Builder
	codec     *Codec
	container *deniable.Container
	log       logging.Logger
}

// NewService validates cfg and creates a Service.
func NewService(cfg Config) (*Service, error) {
	if err := crypto.ValidateKdfParams(cfg.Kdf); err != nil {
		return nil, fmt.Errorf("invalid kdf params: %w", err)
	}
	if cfg.Container.Random == nil {
		cfg.Container.Random = cfg.Random
	}
	container, err := deniable.New(cfg.Container)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	envelope := crypto.NewEnvelope(cfg.Kdf, cfg.Codec, cfg.Random)
	return &Service{
		envelope:  envelope,
		builder:   NewBuilder(envelope),
		codec:     NewCodec(envelope, cfg.Align, cfg.Random),
		container: container,
		log:       cfg.Logger,
	}, nil
}

// Builder returns the document builder used by the service.
func (s *Service) Builder() *Builder {
	return s.builder
}

// Codec returns the JSON container codec used by the service.
func (s *Service) Codec() *Codec {
	return s.codec
}

// CreateRequest describes a backup to create. Duress is only valid for FormatV4.
type CreateRequest struct {
	Format         Format
	Main           Document
	MainPassword   []byte
	Duress         *Document
	DuressPassword []byte
}

// Create builds the backup described by req and returns its bytes.
func (s *Service) Create(ctx context.Context, req CreateRequest) ([]byte, error) {
	if len(req.MainPassword) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if req.Duress != nil && req.Format != FormatV4 {
		return nil, fmt.Errorf("%w: a duress document needs the v4 format", model.ErrUnsupportedFormat)
	}

	switch req.Format {
	case FormatWalletV2:
		exportable := make([]model.AccountWallets, 0, 1)
		for _, aw := range req.Main.Accounts {
			if Exportable(aw.Account) {
				exportable = append(exportable, aw)
			}
		}
		if len(exportable) != 1 {
			return nil, fmt.Errorf("single wallet backup needs exactly one exportable account, got %d", len(exportable))
		}
		wb, err := s.builder.WalletBackup(exportable[0], req.MainPassword)
		if err != nil {
			return nil, err
		}
		return s.codec.EncodeWalletV2(wb)

	case FormatFullV2:
		doc, err := s.builder.FullBackup(req.Main, req.MainPassword)
		if err != nil {
			return nil, err
		}
		return s.codec.EncodeFullV2(doc)

	case FormatV3:
		doc, err := s.builder.FullBackup(req.Main, req.MainPassword)
		if err != nil {
			return nil, err
		}
		return s.codec.WrapV3(doc, req.MainPassword)

	case FormatV4:
		doc, err := s.builder.FullBackup(req.Main, req.MainPassword)
		if err != nil {
			return nil, err
		}
		slots := []deniable.Slot{{Password: req.MainPassword, Document: doc}}
		if req.Duress != nil {
			if len(req.DuressPassword) == 0 {
				return nil, errors.New("duress password cannot be empty")
			}
			duress, err := s.builder.FullBackup(*req.Duress, req.DuressPassword)
			if err != nil {
				return nil, err
			}
			slots = append(slots, deniable.Slot{Password: req.DuressPassword, Document: duress})
		}
		return s.container.Build(ctx, slots)
	}

	return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedFormat, req.Format)
}

// RestoredAccount is one decrypted account.
type RestoredAccount struct {
	ID           string
	Name         string
	Secret       model.AccountSecret
	Wallets      []model.EnabledWallet
	ManualBackup bool
	FileBackup   bool
}

// RestoreResult is what a password unlocked.
type RestoreResult struct {
	Format    Format
	Accounts  []RestoredAccount
	Skipped   []string
	Settings  model.Settings
	Watchlist []string
	Timestamp time.Time
}

// DecryptRecord decrypts and decodes the secret of one record.
func (s *Service) DecryptRecord(wb *model.WalletBackup, password []byte) (model.AccountSecret, error) {
	plaintext, err := s.envelope.Open(&wb.Crypto, password)
	if err != nil {
		return nil, err
	}
	defer clear(plaintext)
	return codec.Decode(model.SecretType(wb.Type), plaintext)
}

// Restore unlocks data with password. It returns model.ErrNoPayload when the
// password unlocks nothing, whatever the reason.
func (s *Service) Restore(data, password []byte) (*RestoreResult, error) {
	format := Detect(data)

	switch format {
	case FormatV4:
		doc, err := s.container.Extract(data, password)
		if err != nil {
			return nil, err
		}
		return s.restoreFull(format, doc, password)

	case FormatV3:
		doc, err := s.codec.UnwrapV3(data, password)
		if errors.Is(err, model.ErrAuthentication) {
			return nil, model.ErrNoPayload
		}
		if err != nil {
			return nil, err
		}
		return s.restoreFull(format, doc, password)

	case FormatFullV2:
		doc, err := s.codec.DecodeFullV2(data)
		if err != nil {
			return nil, err
		}
		return s.restoreFull(format, doc, password)

	case FormatWalletV2, FormatLegacy:
		wb, err := s.codec.DecodeWalletV2(data)
		if err != nil {
			return nil, err
		}
		account, err := s.restoreRecord("", wb, password)
		if errors.Is(err, model.ErrAuthentication) {
			return nil, model.ErrNoPayload
		}
		if err != nil {
			return nil, err
		}
		s.log.Infof("Restored 1 account from %s backup", format)
		return &RestoreResult{
			Format:    format,
			Accounts:  []RestoredAccount{*account},
			Timestamp: time.Unix(wb.Timestamp, 0),
		}, nil
	}

	return nil, model.ErrUnsupportedFormat
}

func (s *Service) restoreFull(format Format, doc *model.FullBackup, password []byte) (*RestoreResult, error) {
	result := &RestoreResult{
		Format:    format,
		Settings:  doc.Settings,
		Watchlist: doc.Watchlist,
		Timestamp: time.Unix(doc.Timestamp, 0),
	}

	authFailures := 0
	for _, named := range doc.Wallets {
		account, err := s.restoreRecord(named.Name, &named.Backup, password)
		if err != nil {
			if errors.Is(err, model.ErrAuthentication) {
				authFailures++
			}
			s.log.Debugf("Skipped record %s", named.Backup.ID)
			result.Skipped = append(result.Skipped, named.Backup.ID)
			continue
		}
		result.Accounts = append(result.Accounts, *account)
	}

	if len(result.Accounts) == 0 && authFailures > 0 {
		return nil, model.ErrNoPayload
	}
	s.log.Infof("Restored %d of %d accounts from %s backup", len(result.Accounts), len(doc.Wallets), format)
	return result, nil
}

func (s *Service) restoreRecord(name string, wb *model.WalletBackup, password []byte) (*RestoredAccount, error) {
	secret, err := s.DecryptRecord(wb, password)
	if err != nil {
		return nil, err
	}

	wallets := make([]model.EnabledWallet, 0, len(wb.EnabledWallets))
	for _, w := range wb.EnabledWallets {
		wallets = append(wallets, model.EnabledWallet{
			TokenQueryID: w.TokenQueryID,
			CoinName:     w.CoinName,
			CoinCode:     w.CoinCode,
			Decimals:     w.Decimals,
		})
	}

	return &RestoredAccount{
		ID:           wb.ID,
		Name:         name,
		Secret:       secret,
		Wallets:      wallets,
		ManualBackup: wb.ManualBackup,
		FileBackup:   wb.FileBackup,
	}, nil
}

// Reencrypt restores a JSON backup with oldPassword and writes it again as
// v3 under newPassword with fresh salts and IVs. It refuses when any record
// was skipped, and rejects v4 containers since they may hold a document for
// another password.
func (s *Service) Reencrypt(ctx context.Context, data, oldPassword, newPassword []byte) ([]byte, error) {
	if Detect(data) == FormatV4 {
		return nil, fmt.Errorf("%w: v4 containers cannot be re-encrypted in place", model.ErrUnsupportedFormat)
	}
	restored, err := s.Restore(data, oldPassword)
	if err != nil {
		return nil, err
	}
	if len(restored.Skipped) > 0 {
		return nil, fmt.Errorf("%d records could not be restored: %v", len(restored.Skipped), restored.Skipped)
	}

	return s.Create(ctx, CreateRequest{
		Format:       FormatV3,
		Main:         restored.Document(),
		MainPassword: newPassword,
	})
}

// Document converts a restore result back into builder input.
func (r *RestoreResult) Document() Document {
	doc := Document{Settings: r.Settings, Watchlist: r.Watchlist}
	for _, a := range r.Accounts {
		doc.Accounts = append(doc.Accounts, model.AccountWallets{
			Account: model.Account{
				ID:           a.ID,
				Name:         a.Name,
				Secret:       a.Secret,
				ManualBackup: a.ManualBackup,
				FileBackup:   a.FileBackup,
			},
			Wallets: a.Wallets,
		})
	}
	return doc
}

// Report describes a backup without unlocking it.
type Report struct {
	Format  Format
	Size    int
	Records int
}

// Inspect reports the format of data. Record counts are only known for
// plain v2 documents.
func (s *Service) Inspect(data []byte) (*Report, error) {
	report := &Report{Format: Detect(data), Size: len(data)}

	switch report.Format {
	case FormatUnknown:
		return nil, model.ErrUnsupportedFormat
	case FormatFullV2:
		doc, err := s.codec.DecodeFullV2(data)
		if err != nil {
			return nil, err
		}
		report.Records = len(doc.Wallets)
	case FormatWalletV2, FormatLegacy:
		report.Records = 1
	}
	return report, nil
}
