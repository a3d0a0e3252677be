package bank

import (
	"time"

	"github.com/fpibank/go-fpibank/crypto"
)

type TxKind string

const (
	TxTransfer   TxKind = "transfer"
	TxDeposit    TxKind = "deposit"
	TxWithdrawal TxKind = "withdrawal"
	TxPayment    TxKind = "payment"
)

type TxStatus string

const (
	StatusPending   TxStatus = "pending"
	StatusCompleted TxStatus = "completed"
	StatusFailed    TxStatus = "failed"
)

// Transaction is one entry of the append-only fiat log. Completed and
// failed transactions are never rewritten.
type Transaction struct {
	Id            string   `json:"id"`
	FromAccountId string   `json:"fromAccountId"`
	ToAccountId   string   `json:"toAccountId,omitempty"`
	Kind          TxKind   `json:"type"`
	Amount        float64  `json:"amount"`
	Currency      string   `json:"currency"`
	Description   string   `json:"description"`
	Status        TxStatus `json:"status"`
	Timestamp     int64    `json:"timestamp"`
}

func newTransaction(kind TxKind, fromAccountId, toAccountId string, amount float64, currency, description string) Transaction {
	return Transaction{
		Id:            crypto.NewId(),
		FromAccountId: fromAccountId,
		ToAccountId:   toAccountId,
		Kind:          kind,
		Amount:        amount,
		Currency:      currency,
		Description:   description,
		Status:        StatusCompleted,
		Timestamp:     time.Now().Unix(),
	}
}
