package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/wallet-backup/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
watchlist = ["bitcoin", "solana"]

[settings]
base_currency = "EUR"
language = "de"

[[account]]
id = "main"
name = "Wallet 1"
type = "mnemonic"
words = "truth jaguar roof task always top hybrid rookie across bid punch ranch"
passphrase = "extra"
manual_backup = true

[[account.wallet]]
token_query_id = "bitcoin|derived:84"
coin_name = "Bitcoin"
coin_code = "BTC"
decimals = 8

[[account]]
id = "key"
name = "Private key"
type = "private_key"
key = "0x0fab"

[[account]]
id = "watch"
name = "Watch"
type = "solana_address"
address = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

[[account]]
id = "card"
name = "Card"
type = "hardware_card"
card_id = "card123"
public_key = "pubKeyABC"
backup_cards = 2
signed_hashes = 10
`

func TestParseDocument(t *testing.T) {
	m, err := Parse(sample)
	require.NoError(t, err)

	doc, err := m.Document()
	require.NoError(t, err)

	assert.Equal(t, []string{"bitcoin", "solana"}, doc.Watchlist)
	assert.Equal(t, "EUR", doc.Settings.BaseCurrency)
	require.Len(t, doc.Accounts, 4)

	first := doc.Accounts[0]
	assert.Equal(t, "main", first.Account.ID)
	assert.True(t, first.Account.ManualBackup)
	assert.Equal(t, "extra", first.Account.Secret.(model.Mnemonic).Passphrase)
	assert.Len(t, first.Account.Secret.(model.Mnemonic).Words, 12)
	assert.Equal(t, []model.EnabledWallet{{TokenQueryID: "bitcoin|derived:84", CoinName: "Bitcoin", CoinCode: "BTC", Decimals: 8}}, first.Wallets)

	assert.Equal(t, int64(0x0fab), doc.Accounts[1].Account.Secret.(model.EvmPrivateKey).Key.Int64())
	assert.Equal(t, model.ChainAddress{Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Chain: model.ChainSolana}, doc.Accounts[2].Account.Secret)
	assert.Equal(t, model.HardwareCardRef{CardID: "card123", WalletPublicKey: "pubKeyABC", BackupCardsCount: 2, SignedHashes: 10}, doc.Accounts[3].Account.Secret)
}

func TestDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unknown type", "[[account]]\ntype = \"bitcoin_wif\"\n"},
		{"bad private key", "[[account]]\ntype = \"private_key\"\nkey = \"xyz\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.text)
			require.NoError(t, err)
			_, err = m.Document()
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Accounts, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Parse("not = [valid")
	assert.Error(t, err)
}
