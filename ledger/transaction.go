package ledger

import (
	"strconv"
	"time"

	"github.com/fpibank/go-fpibank/crypto"
)

// TxType is the kind of ledger transaction.
type TxType string

const (
	TxBuy      TxType = "buy"
	TxSell     TxType = "sell"
	TxTransfer TxType = "transfer"
)

// FeeRate is charged on every ledger transaction. The fee is recorded on the
// transaction but collected nowhere; it is informational.
const FeeRate = 0.001

type Transaction struct {
	Id        string  `json:"id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	Symbol    string  `json:"symbol"`
	Type      TxType  `json:"type"`
	Fee       float64 `json:"fee"`
	Timestamp int64   `json:"timestamp"`
	Signature string  `json:"signature"`
}

// NewTransaction builds a signed transaction. Amount is an asset quantity and
// must be positive; the caller validates it. The signature is the checksum of
// the canonical fields, so any later mutation is detectable by re-signing.
func NewTransaction(from, to string, amount float64, symbol string, txType TxType) Transaction {
	tx := Transaction{
		Id:        crypto.NewId(),
		From:      from,
		To:        to,
		Amount:    amount,
		Symbol:    symbol,
		Type:      txType,
		Fee:       amount * FeeRate,
		Timestamp: time.Now().Unix(),
	}
	tx.Signature = tx.Sign()
	return tx
}

// Sign returns the digest of the transaction's canonical fields.
func (tx Transaction) Sign() string {
	return crypto.ChecksumHex(
		[]byte(tx.From),
		[]byte(tx.To),
		[]byte(strconv.FormatFloat(tx.Amount, 'f', -1, 64)),
		[]byte(tx.Symbol),
		[]byte(strconv.FormatInt(tx.Timestamp, 10)),
	)
}
