package bank

import (
	"time"

	"github.com/fpibank/go-fpibank/config"
	"github.com/fpibank/go-fpibank/crypto"
	"github.com/fpibank/go-fpibank/wallet"
)

type AccountKind string

const (
	Checking AccountKind = "checking"
	Savings  AccountKind = "savings"
	Deposit  AccountKind = "deposit"
)

type CardKind string

const (
	Debit  CardKind = "debit"
	Credit CardKind = "credit"
)

// Account balances are non-negative at all times. InterestRate is non-zero
// only for savings and deposit accounts; the per-kind constructors are the
// only way accounts come into existence, so the pairing cannot drift.
type Account struct {
	Id           string      `json:"id"`
	Number       string      `json:"accountNumber"`
	Kind         AccountKind `json:"accountType"`
	Balance      float64     `json:"balance"`
	Currency     string      `json:"currency"`
	InterestRate float64     `json:"interestRate,omitempty"`
	Active       bool        `json:"isActive"`
	CreatedAt    int64       `json:"createdAt"`
}

func newAccount(kind AccountKind, policy config.Bank) (*Account, error) {
	account := &Account{
		Id:        crypto.NewId(),
		Number:    accountNumber(),
		Kind:      kind,
		Currency:  policy.Currency,
		Active:    true,
		CreatedAt: time.Now().Unix(),
	}
	switch kind {
	case Checking:
		account.Balance = policy.OpeningBalance
	case Savings:
		account.InterestRate = policy.SavingsRate
	case Deposit:
		account.InterestRate = policy.DepositRate
	default:
		return nil, ErrUnknownKind
	}
	return account, nil
}

// CreditLimit is non-zero only for credit cards, enforced the same way as
// Account.InterestRate.
type Card struct {
	Id              string   `json:"id"`
	Number          string   `json:"cardNumber"`
	Kind            CardKind `json:"cardType"`
	Expiry          string   `json:"expiryDate"` // YYYY-MM
	CVV             string   `json:"cvv"`
	Balance         float64  `json:"balance"`
	CreditLimit     float64  `json:"creditLimit,omitempty"`
	CashbackRate    float64  `json:"cashback"`
	Active          bool     `json:"isActive"`
	LinkedAccountId string   `json:"linkedAccountId"`
	CreatedAt       int64    `json:"createdAt"`
}

func newCard(kind CardKind, linkedAccountId string, policy config.Bank) (*Card, error) {
	if kind != Debit && kind != Credit {
		return nil, ErrUnknownKind
	}
	card := &Card{
		Id:              crypto.NewId(),
		Number:          cardNumber(),
		Kind:            kind,
		Expiry:          time.Now().AddDate(policy.CardValidYears, 0, 0).Format("2006-01"),
		CVV:             cvv(),
		CashbackRate:    policy.CashbackRate,
		Active:          true,
		LinkedAccountId: linkedAccountId,
		CreatedAt:       time.Now().Unix(),
	}
	if kind == Credit {
		card.CreditLimit = policy.CreditLimit
	}
	return card, nil
}

// User is the aggregate root owning its accounts, cards and wallet. It is
// mutated only inside the Book's critical sections.
type User struct {
	Id        string         `json:"id"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Verified  bool           `json:"isVerified"`
	Accounts  []*Account     `json:"accounts"`
	Cards     []*Card        `json:"cards"`
	Wallet    *wallet.Wallet `json:"cryptoWallet"`
	CreatedAt int64          `json:"createdAt"`
}

func (u *User) account(accountId string) *Account {
	for _, account := range u.Accounts {
		if account.Id == accountId {
			return account
		}
	}
	return nil
}

func (u *User) Clone() *User {
	cp := *u
	cp.Accounts = make([]*Account, len(u.Accounts))
	for i, account := range u.Accounts {
		a := *account
		cp.Accounts[i] = &a
	}
	cp.Cards = make([]*Card, len(u.Cards))
	for i, card := range u.Cards {
		c := *card
		cp.Cards[i] = &c
	}
	cp.Wallet = u.Wallet.Clone()
	return &cp
}

func accountNumber() string {
	return "40817810" + digits(10)
}

func cardNumber() string {
	return "4274" + digits(12)
}

func cvv() string {
	return digits(3)
}

func digits(n int) string {
	entropy := crypto.GetEntropyCSPRNG(n)
	out := make([]byte, n)
	for i, b := range entropy {
		out[i] = '0' + b%10
	}
	return string(out)
}
