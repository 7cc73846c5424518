package model

// Backup format versions.
const (
	VersionLegacy = 1
	VersionV2     = 2
	VersionV3     = 3
)

// KdfParams are the scrypt parameters stored with every encrypted blob.
// Salt is used as its UTF-8 bytes.
type KdfParams struct {
	DkLen int    `json:"dklen"`
	N     int    `json:"n"`
	P     int    `json:"p"`
	R     int    `json:"r"`
	Salt  string `json:"salt"`
}

// CipherParams holds the hex encoded IV.
type CipherParams struct {
	IV string `json:"iv"`
}

// BackupCrypto is the encrypted envelope of one secret or one document.
type BackupCrypto struct {
	Cipher       string       `json:"cipher"`
	CipherParams CipherParams `json:"cipherparams"`
	CipherText   string       `json:"ciphertext"`
	Kdf          string       `json:"kdf"`
	KdfParams    KdfParams    `json:"kdfparams"`
	Mac          string       `json:"mac"`
}

// EnabledWalletBackup is the persisted form of an EnabledWallet.
type EnabledWalletBackup struct {
	TokenQueryID string `json:"token_query_id"`
	CoinName     string `json:"coin_name,omitempty"`
	CoinCode     string `json:"coin_code,omitempty"`
	Decimals     int    `json:"decimals,omitempty"`
}

// WalletBackup is one account: its encrypted secret plus plain metadata.
type WalletBackup struct {
	Crypto         BackupCrypto          `json:"crypto"`
	ID             string                `json:"id"`
	Type           string                `json:"type"`
	EnabledWallets []EnabledWalletBackup `json:"enabled_wallets"`
	ManualBackup   bool                  `json:"manual_backup"`
	FileBackup     bool                  `json:"file_backup"`
	Timestamp      int64                 `json:"timestamp"`
	Version        int                   `json:"version"`
	AlignPayload   string                `json:"align_payload,omitempty"`
}

// NamedWalletBackup is an entry of FullBackup.Wallets.
type NamedWalletBackup struct {
	Name   string       `json:"name"`
	Backup WalletBackup `json:"backup"`
}

// Settings are the app-level settings carried by a full backup.
type Settings struct {
	BaseCurrency    string `json:"base_currency,omitempty" toml:"base_currency"`
	Language        string `json:"language,omitempty" toml:"language"`
	ThemeMode       string `json:"theme_mode,omitempty" toml:"theme_mode"`
	BalanceViewType string `json:"balance_view_type,omitempty" toml:"balance_view_type"`
	BalanceHidden   bool   `json:"balance_hidden,omitempty" toml:"balance_hidden"`
	AppIcon         string `json:"app_icon,omitempty" toml:"app_icon"`
}

// FullBackup is a multi-wallet backup document.
type FullBackup struct {
	Wallets      []NamedWalletBackup `json:"wallets"`
	Watchlist    []string            `json:"watchlist"`
	Settings     Settings            `json:"settings"`
	Timestamp    int64               `json:"timestamp"`
	Version      int                 `json:"version"`
	ID           string              `json:"id"`
	AlignPayload string              `json:"align_payload,omitempty"`
}

// BackupV3 wraps a whole FullBackup encrypted once.
type BackupV3 struct {
	Version   int    `json:"version"`
	Encrypted string `json:"encrypted"`
}
