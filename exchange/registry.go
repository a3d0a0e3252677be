package exchange

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/olebedev/emitter"

	"github.com/fpibank/go-fpibank/chain"
	"github.com/fpibank/go-fpibank/ledger"
	"github.com/fpibank/go-fpibank/store"
)

// Address is the fixed counterparty of every buy and sell.
const Address = "FPI_BANK_EXCHANGE"

// TopicPrices is emitted after every price refresh.
const TopicPrices = "prices"

var ErrUnknownAsset = errors.New("unknown asset")

// Registry owns the asset catalogue. Price reads and trades take the read
// lock; the periodic refresh takes the write lock, so a buy never sees a
// half-updated catalogue. The refresh cadence is owned by the caller: the
// registry only exposes the mutation.
type Registry struct {
	mu     sync.RWMutex
	st     store.Store
	chain  *chain.Chain
	assets []*Asset
	rnd    *rand.Rand
	bus    *emitter.Emitter
	log    log15.Logger
}

type Option func(*Registry)

// WithRand injects the perturbation source, fixed in tests.
func WithRand(rnd *rand.Rand) Option {
	return func(r *Registry) {
		r.rnd = rnd
	}
}

func WithEmitter(bus *emitter.Emitter) Option {
	return func(r *Registry) {
		r.bus = bus
	}
}

func New(st store.Store, c *chain.Chain, opts ...Option) *Registry {
	r := &Registry{
		st:     st,
		chain:  c,
		assets: defaultAssets(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		bus:    emitter.New(8),
		log:    log15.New("module", "exchange"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.restorePrices()
	return r
}

// restorePrices overlays the last persisted snapshot onto the catalogue.
// The snapshot is a secondary cache, so an unreadable or mismatched blob is
// logged and skipped, leaving the reference catalogue intact.
func (r *Registry) restorePrices() {
	var snapshot []*Asset
	found, err := store.LoadJSON(r.st, store.KeyCryptoPrices, &snapshot)
	if err != nil {
		r.log.Warn("price snapshot unreadable, keeping catalogue", "err", err)
		return
	}
	if !found {
		return
	}
	bySymbol := make(map[string]*Asset, len(snapshot))
	for _, asset := range snapshot {
		bySymbol[asset.Symbol] = asset
	}
	for _, asset := range r.assets {
		if saved, ok := bySymbol[asset.Symbol]; ok && saved.CurrentPrice > 0 {
			asset.CurrentPrice = saved.CurrentPrice
			asset.PriceChange24h = saved.PriceChange24h
		}
	}
}

// List returns a snapshot of the catalogue in insertion order.
func (r *Registry) List() []Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Asset, len(r.assets))
	for i, asset := range r.assets {
		out[i] = *asset
	}
	return out
}

// PriceOf returns the current price, 0 for an unknown symbol.
func (r *Registry) PriceOf(symbol string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if asset := r.lookup(symbol); asset != nil {
		return asset.CurrentPrice
	}
	return 0
}

func (r *Registry) lookup(symbol string) *Asset {
	for _, asset := range r.assets {
		if asset.Symbol == symbol {
			return asset
		}
	}
	return nil
}

// Quote converts a reference-currency amount to asset quantity at the
// current price.
func (r *Registry) Quote(symbol string, fiatAmount float64) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset := r.lookup(symbol)
	if asset == nil {
		return 0, ErrUnknownAsset
	}
	return fiatAmount / asset.CurrentPrice, nil
}

// ValueOf converts an asset quantity to its reference-currency amount.
func (r *Registry) ValueOf(symbol string, quantity float64) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset := r.lookup(symbol)
	if asset == nil {
		return 0, ErrUnknownAsset
	}
	return quantity * asset.CurrentPrice, nil
}

// RefreshPrices perturbs every price by a random factor in [-5%, +5%] and
// records the perturbation as the new 24h change. The updated catalogue is
// persisted as the cryptoPrices snapshot.
func (r *Registry) RefreshPrices() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, asset := range r.assets {
		changePercent := (r.rnd.Float64() - 0.5) * 10
		asset.CurrentPrice *= 1 + changePercent/100
		asset.PriceChange24h = changePercent
	}
	if err := store.SaveJSON(r.st, store.KeyCryptoPrices, r.assets); err != nil {
		return err
	}
	r.bus.Emit(TopicPrices)
	return nil
}

// Buy purchases fiatAmount worth of symbol for walletAddress. The trade is
// mined into the chain as a single-transaction block; the returned
// transaction is the mined one.
func (r *Registry) Buy(walletAddress, symbol string, fiatAmount float64) (*ledger.Transaction, error) {
	quantity, err := r.Quote(symbol, fiatAmount)
	if err != nil {
		return nil, err
	}
	return r.trade(ledger.NewTransaction(Address, walletAddress, quantity, symbol, ledger.TxBuy))
}

// Sell moves quantity of symbol from walletAddress back to the exchange.
func (r *Registry) Sell(walletAddress, symbol string, quantity float64) (*ledger.Transaction, error) {
	r.mu.RLock()
	asset := r.lookup(symbol)
	r.mu.RUnlock()
	if asset == nil {
		return nil, ErrUnknownAsset
	}
	return r.trade(ledger.NewTransaction(walletAddress, Address, quantity, symbol, ledger.TxSell))
}

func (r *Registry) trade(tx ledger.Transaction) (*ledger.Transaction, error) {
	block, err := r.chain.Append([]ledger.Transaction{tx})
	if err != nil {
		return nil, err
	}
	mined := block.Transactions[0]
	r.log.Info("trade mined", "type", mined.Type, "symbol", mined.Symbol, "quantity", mined.Amount, "block", block.Index)
	return &mined, nil
}
