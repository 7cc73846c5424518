package model

// Account is a wallet account handed in by the caller.
type Account struct {
	ID           string
	Name         string
	Secret       AccountSecret
	ManualBackup bool
	FileBackup   bool
}

// EnabledWallet is a token enabled for an account.
type EnabledWallet struct {
	TokenQueryID string
	CoinName     string
	CoinCode     string
	Decimals     int
}

// AccountWallets pairs an account with its enabled wallets.
type AccountWallets struct {
	Account Account
	Wallets []EnabledWallet
}
