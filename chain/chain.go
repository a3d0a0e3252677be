package chain

import (
	"sort"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/inconshreveable/log15"
	"github.com/olebedev/emitter"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/atomic"

	"github.com/fpibank/go-fpibank/ledger"
	"github.com/fpibank/go-fpibank/pow"
	"github.com/fpibank/go-fpibank/store"
)

// TopicBlock is emitted with the appended *ledger.Block as argument.
const TopicBlock = "block"

const blockCacheSize = 128

// Chain owns the block sequence exclusively. All writes funnel through one
// mutex; the persisted chain is updated before the in-memory one, so a
// storage failure never leaves a block half-appended.
type Chain struct {
	mu     sync.RWMutex
	st     store.Store
	blocks []ledger.Block
	loaded atomic.Bool

	txCache    *gocache.Cache
	blockCache *lru.Cache
	bus        *emitter.Emitter
	log        log15.Logger
}

type Option func(*Chain)

// WithEmitter shares an event bus with the rest of the application.
func WithEmitter(bus *emitter.Emitter) Option {
	return func(c *Chain) {
		c.bus = bus
	}
}

func New(st store.Store, opts ...Option) *Chain {
	blockCache, _ := lru.New(blockCacheSize)
	c := &Chain{
		st:         st,
		txCache:    gocache.New(5*time.Minute, 10*time.Minute),
		blockCache: blockCache,
		bus:        emitter.New(8),
		log:        log15.New("module", "chain"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bus exposes the event emitter for subscribers (TopicBlock).
func (c *Chain) Bus() *emitter.Emitter {
	return c.bus
}

// ensure lazily loads the chain from the store, materializing a mined
// genesis block when no chain has been persisted yet.
func (c *Chain) ensure() error {
	if c.loaded.Load() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureLocked()
}

func (c *Chain) ensureLocked() error {
	if c.loaded.Load() {
		return nil
	}
	var blocks []ledger.Block
	found, err := store.LoadJSON(c.st, store.KeyBlockchain, &blocks)
	if err != nil {
		return err
	}
	if !found {
		genesis, err := mine(0, ledger.GenesisPrevHash, time.Now().Unix(), nil)
		if err != nil {
			return err
		}
		blocks = []ledger.Block{genesis}
		if err := store.SaveJSON(c.st, store.KeyBlockchain, blocks); err != nil {
			return err
		}
		c.log.Info("genesis block mined", "hash", genesis.Hash, "nonce", genesis.Nonce)
	}
	c.blocks = blocks
	c.loaded.Store(true)
	return nil
}

// mine searches for the first nonce whose block digest satisfies the
// difficulty predicate.
func mine(index uint64, prevHash string, timestamp int64, txs []ledger.Transaction) (ledger.Block, error) {
	block := ledger.Block{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: txs,
		PrevHash:     prevHash,
	}
	nonce, digest, err := pow.Search(func(n uint64) string {
		block.Nonce = n
		return block.ComputeHash()
	})
	if err != nil {
		return ledger.Block{}, err
	}
	block.Nonce = nonce
	block.Hash = digest
	return block, nil
}

// Append mines a block holding txs on top of the current tail, persists the
// grown chain and only then commits it in memory. Returns
// pow.ErrMiningExhausted or a storage failure with nothing applied.
func (c *Chain) Append(txs []ledger.Transaction) (*ledger.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(); err != nil {
		return nil, err
	}

	tail := c.blocks[len(c.blocks)-1]
	block, err := mine(uint64(len(c.blocks)), tail.Hash, time.Now().Unix(), txs)
	if err != nil {
		return nil, err
	}

	grown := make([]ledger.Block, len(c.blocks), len(c.blocks)+1)
	copy(grown, c.blocks)
	grown = append(grown, block)
	if err := store.SaveJSON(c.st, store.KeyBlockchain, grown); err != nil {
		return nil, err
	}
	c.blocks = grown

	c.txCache.Flush()
	c.blockCache.Add(block.Hash, block)
	c.bus.Emit(TopicBlock, &block)
	c.log.Info("block appended", "index", block.Index, "txs", len(txs), "nonce", block.Nonce)
	return &block, nil
}

// Validate walks the chain in index order and reports whether every block's
// stored digest matches a recomputation and links to its predecessor. It
// reports corruption, it never repairs it.
func (c *Chain) Validate() bool {
	if err := c.ensure(); err != nil {
		c.log.Error("validate: chain unavailable", "err", err)
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validateLocked()
}

func (c *Chain) validateLocked() bool {
	if len(c.blocks) == 0 {
		return false
	}
	if c.blocks[0].PrevHash != ledger.GenesisPrevHash {
		return false
	}
	for i := 1; i < len(c.blocks); i++ {
		current := &c.blocks[i]
		if current.Hash != current.ComputeHash() {
			return false
		}
		if current.PrevHash != c.blocks[i-1].Hash {
			return false
		}
	}
	return true
}

// TransactionsFor collects every transaction where address is sender or
// receiver, most recent first. Equal timestamps keep chain order. Results
// are memoized per address until the next Append.
func (c *Chain) TransactionsFor(address string) ([]ledger.Transaction, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.txCache.Get(address); ok {
		return cached.([]ledger.Transaction), nil
	}

	var txs []ledger.Transaction
	for _, block := range c.blocks {
		for _, tx := range block.Transactions {
			if tx.From == address || tx.To == address {
				txs = append(txs, tx)
			}
		}
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp > txs[j].Timestamp
	})

	c.txCache.Set(address, txs, gocache.DefaultExpiration)
	return txs, nil
}

// BlockByHash returns the block with the given digest, or nil.
func (c *Chain) BlockByHash(hash string) (*ledger.Block, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.blockCache.Get(hash); ok {
		block := cached.(ledger.Block)
		return &block, nil
	}
	for i := range c.blocks {
		if c.blocks[i].Hash == hash {
			block := c.blocks[i]
			c.blockCache.Add(hash, block)
			return &block, nil
		}
	}
	return nil, nil
}

// Blocks returns a copy of the chain, genesis first.
func (c *Chain) Blocks() ([]ledger.Block, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]ledger.Block, len(c.blocks))
	copy(blocks, c.blocks)
	return blocks, nil
}

type Stats struct {
	BlockCount       int   `json:"blockCount"`
	TransactionCount int   `json:"transactionCount"`
	IsValid          bool  `json:"isValid"`
	LastBlockTime    int64 `json:"lastBlockTime"`
}

func (s Stats) String() string {
	return "[blocks " + strconv.Itoa(s.BlockCount) + "][txs " + strconv.Itoa(s.TransactionCount) + "][valid " + strconv.FormatBool(s.IsValid) + "]"
}

func (c *Chain) Stats() (Stats, error) {
	if err := c.ensure(); err != nil {
		return Stats{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		BlockCount:    len(c.blocks),
		IsValid:       c.validateLocked(),
		LastBlockTime: time.Now().Unix(),
	}
	for _, block := range c.blocks {
		stats.TransactionCount += len(block.Transactions)
	}
	if len(c.blocks) > 0 {
		stats.LastBlockTime = c.blocks[len(c.blocks)-1].Timestamp
	}
	return stats, nil
}
