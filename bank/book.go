package bank

import (
	"sync"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/fpibank/go-fpibank/config"
	"github.com/fpibank/go-fpibank/crypto"
	"github.com/fpibank/go-fpibank/store"
	"github.com/fpibank/go-fpibank/wallet"
)

// Book is the account ledger. One mutex serializes every write so that
// read-current-state, compute, persist runs as a single critical section.
// Mutations are applied to a cloned user set and the clone is only swapped
// in after the store accepted it, so a storage failure applies nothing.
type Book struct {
	mu     sync.Mutex
	st     store.Store
	policy config.Bank
	users  []*User
	loaded bool
	log    log15.Logger
}

func New(st store.Store, policy config.Bank) *Book {
	return &Book{
		st:     st,
		policy: policy,
		log:    log15.New("module", "bank"),
	}
}

func (b *Book) ensureLocked() error {
	if b.loaded {
		return nil
	}
	var users []*User
	if _, err := store.LoadJSON(b.st, store.KeyUsers, &users); err != nil {
		return err
	}
	b.users = users
	b.loaded = true
	return nil
}

func (b *Book) cloneUsersLocked() []*User {
	users := make([]*User, len(b.users))
	for i, user := range b.users {
		users[i] = user.Clone()
	}
	return users
}

func (b *Book) commitLocked(users []*User) error {
	if err := store.SaveJSON(b.st, store.KeyUsers, users); err != nil {
		return err
	}
	b.users = users
	return nil
}

// RegisterUser creates the user aggregate with a freshly derived crypto
// wallet and no accounts. Auth flows live outside the core.
func (b *Book) RegisterUser(email, firstName, lastName, phone string) (*User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return nil, err
	}
	for _, user := range b.users {
		if user.Email == email {
			return nil, ErrEmailTaken
		}
	}

	user := &User{
		Id:        crypto.NewId(),
		Email:     email,
		Phone:     phone,
		FirstName: firstName,
		LastName:  lastName,
		Wallet:    wallet.New(),
		CreatedAt: time.Now().Unix(),
	}
	users := append(b.cloneUsersLocked(), user)
	if err := b.commitLocked(users); err != nil {
		return nil, err
	}
	b.log.Info("user registered", "user", user.Id)
	return user.Clone(), nil
}

// ResolveUser returns a copy of the user aggregate.
func (b *Book) ResolveUser(userId string) (*User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return nil, err
	}
	for _, user := range b.users {
		if user.Id == userId {
			return user.Clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

// ResolveAccount looks an account up across all users and returns the owner
// id with a copy of the account.
func (b *Book) ResolveAccount(accountId string) (string, *Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return "", nil, err
	}
	for _, user := range b.users {
		if account := user.account(accountId); account != nil {
			cp := *account
			return user.Id, &cp, nil
		}
	}
	return "", nil, ErrAccountNotFound
}

// OpenAccount opens an account of the given kind for the user. Checking
// accounts start with the policy opening balance, savings and deposit start
// empty at their policy interest rate.
func (b *Book) OpenAccount(userId string, kind AccountKind) (*Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return nil, err
	}

	users := b.cloneUsersLocked()
	user := findUser(users, userId)
	if user == nil {
		return nil, ErrUserNotFound
	}
	account, err := newAccount(kind, b.policy)
	if err != nil {
		return nil, err
	}
	user.Accounts = append(user.Accounts, account)
	if err := b.commitLocked(users); err != nil {
		return nil, err
	}
	b.log.Info("account opened", "user", userId, "account", account.Id, "kind", kind)
	cp := *account
	return &cp, nil
}

// IssueCard issues a card linked to one of the user's own accounts. The
// expiry is fixed at the policy card lifetime from issuance.
func (b *Book) IssueCard(userId string, kind CardKind, linkedAccountId string) (*Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return nil, err
	}

	users := b.cloneUsersLocked()
	user := findUser(users, userId)
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.account(linkedAccountId) == nil {
		return nil, ErrAccountNotFound
	}
	card, err := newCard(kind, linkedAccountId, b.policy)
	if err != nil {
		return nil, err
	}
	user.Cards = append(user.Cards, card)
	if err := b.commitLocked(users); err != nil {
		return nil, err
	}
	b.log.Info("card issued", "user", userId, "card", card.Id, "kind", kind)
	cp := *card
	return &cp, nil
}

// Transfer moves amount between two accounts, which may belong to different
// users. Debit, credit and persist happen in one critical section; on any
// failure neither balance changes.
func (b *Book) Transfer(fromAccountId, toAccountId string, amount float64, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return nil, err
	}

	users := b.cloneUsersLocked()
	from := findAccount(users, fromAccountId)
	to := findAccount(users, toAccountId)
	if from == nil || to == nil {
		return nil, ErrAccountNotFound
	}
	if from.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	from.Balance -= amount
	to.Balance += amount
	if err := b.commitLocked(users); err != nil {
		return nil, err
	}

	tx := newTransaction(TxTransfer, fromAccountId, toAccountId, amount, from.Currency, description)
	if err := b.recordLocked(tx); err != nil {
		return nil, err
	}
	b.log.Info("transfer completed", "from", fromAccountId, "to", toAccountId, "amount", amount)
	return &tx, nil
}

// Deposit credits amount to an account.
func (b *Book) Deposit(accountId string, amount float64, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return nil, err
	}

	users := b.cloneUsersLocked()
	account := findAccount(users, accountId)
	if account == nil {
		return nil, ErrAccountNotFound
	}
	account.Balance += amount
	if err := b.commitLocked(users); err != nil {
		return nil, err
	}

	tx := newTransaction(TxDeposit, accountId, "", amount, account.Currency, description)
	if err := b.recordLocked(tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Withdraw debits amount from an account, refusing to take the balance
// below zero.
func (b *Book) Withdraw(accountId string, amount float64, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return nil, err
	}

	users := b.cloneUsersLocked()
	account := findAccount(users, accountId)
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Balance < amount {
		return nil, ErrInsufficientFunds
	}
	account.Balance -= amount
	if err := b.commitLocked(users); err != nil {
		return nil, err
	}

	tx := newTransaction(TxWithdrawal, accountId, "", amount, account.Currency, description)
	if err := b.recordLocked(tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// CreditHolding adds crypto quantity to the user's wallet after a buy.
func (b *Book) CreditHolding(userId, symbol string, quantity float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return err
	}

	users := b.cloneUsersLocked()
	user := findUser(users, userId)
	if user == nil {
		return ErrUserNotFound
	}
	user.Wallet.Credit(symbol, quantity)
	return b.commitLocked(users)
}

// DebitHolding removes crypto quantity from the user's wallet before a sell.
func (b *Book) DebitHolding(userId, symbol string, quantity float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureLocked(); err != nil {
		return err
	}

	users := b.cloneUsersLocked()
	user := findUser(users, userId)
	if user == nil {
		return ErrUserNotFound
	}
	if err := user.Wallet.Debit(symbol, quantity); err != nil {
		return err
	}
	return b.commitLocked(users)
}

// Transactions returns the fiat transaction log in append order.
func (b *Book) Transactions() ([]Transaction, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var txs []Transaction
	if _, err := store.LoadJSON(b.st, store.KeyTransactions, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// recordLocked appends one completed transaction to the persisted log. If
// the log write fails after balances were persisted, the in-memory user set
// is invalidated so the next operation reloads the authoritative state.
func (b *Book) recordLocked(tx Transaction) error {
	var txs []Transaction
	if _, err := store.LoadJSON(b.st, store.KeyTransactions, &txs); err != nil {
		b.loaded = false
		return err
	}
	txs = append(txs, tx)
	if err := store.SaveJSON(b.st, store.KeyTransactions, txs); err != nil {
		b.loaded = false
		return err
	}
	return nil
}

// SetCurrentUser persists the session marker. It is a convenience for the
// UI layer and never authoritative.
func (b *Book) SetCurrentUser(userId string) error {
	user, err := b.ResolveUser(userId)
	if err != nil {
		return err
	}
	return store.SaveJSON(b.st, store.KeyCurrentUser, user)
}

func (b *Book) ClearCurrentUser() error {
	return store.SaveJSON(b.st, store.KeyCurrentUser, nil)
}

func (b *Book) CurrentUser() (*User, error) {
	var user *User
	if _, err := store.LoadJSON(b.st, store.KeyCurrentUser, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func findUser(users []*User, userId string) *User {
	for _, user := range users {
		if user.Id == userId {
			return user
		}
	}
	return nil
}

func findAccount(users []*User, accountId string) *Account {
	for _, user := range users {
		if account := user.account(accountId); account != nil {
			return account
		}
	}
	return nil
}
