package wallet

import (
	"encoding/hex"
	"errors"

	"github.com/tyler-smith/go-bip39"

	"github.com/fpibank/go-fpibank/crypto"
)

var ErrInsufficientHoldings = errors.New("insufficient holdings")

// Pricer reports the current reference-currency price of an asset, 0 when
// the symbol is unknown.
type Pricer interface {
	PriceOf(symbol string) float64
}

// Wallet holds crypto balances per asset symbol. The address is derived
// once at creation; holdings are the only mutable state, and only the bank
// mutates them.
type Wallet struct {
	Id       string             `json:"id"`
	Address  string             `json:"address"`
	Holdings map[string]float64 `json:"holdings"`
}

// New derives a wallet address from fresh bip39 entropy. The mnemonic is
// not retained: this is a simulated custody wallet, the bank never needs to
// re-derive keys from it.
func New() *Wallet {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		entropy = crypto.GetEntropyCSPRNG(16)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		panic("bip39 mnemonic from fresh entropy: " + err.Error())
	}
	seed := bip39.NewSeed(mnemonic, "")
	return &Wallet{
		Id:       crypto.NewId(),
		Address:  AddressFromSeed(seed),
		Holdings: make(map[string]float64),
	}
}

// AddressFromSeed maps a seed to the textual wallet address form.
func AddressFromSeed(seed []byte) string {
	return "fpi_" + hex.EncodeToString(crypto.Hash(16, seed))
}

func (w *Wallet) Balance(symbol string) float64 {
	return w.Holdings[symbol]
}

func (w *Wallet) Credit(symbol string, quantity float64) {
	if w.Holdings == nil {
		w.Holdings = make(map[string]float64)
	}
	w.Holdings[symbol] += quantity
}

func (w *Wallet) Debit(symbol string, quantity float64) error {
	if w.Holdings[symbol] < quantity {
		return ErrInsufficientHoldings
	}
	w.Holdings[symbol] -= quantity
	return nil
}

// TotalValue prices every holding at the current market. It is derived on
// demand, never stored.
func (w *Wallet) TotalValue(pricer Pricer) float64 {
	var total float64
	for symbol, quantity := range w.Holdings {
		total += quantity * pricer.PriceOf(symbol)
	}
	return total
}

func (w *Wallet) Clone() *Wallet {
	if w == nil {
		return nil
	}
	cp := *w
	cp.Holdings = make(map[string]float64, len(w.Holdings))
	for symbol, quantity := range w.Holdings {
		cp.Holdings[symbol] = quantity
	}
	return &cp
}
