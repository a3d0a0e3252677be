package chain_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpibank/go-fpibank/chain"
	"github.com/fpibank/go-fpibank/ledger"
	"github.com/fpibank/go-fpibank/pow"
	"github.com/fpibank/go-fpibank/store"
)

func newChain(t *testing.T) (*chain.Chain, store.Store) {
	st := store.NewMemory()
	return chain.New(st), st
}

func TestGenesis(t *testing.T) {
	c, _ := newChain(t)

	blocks, err := c.Blocks()
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	genesis := blocks[0]
	assert.Equal(t, uint64(0), genesis.Index)
	assert.Equal(t, ledger.GenesisPrevHash, genesis.PrevHash)
	assert.Empty(t, genesis.Transactions)
	assert.True(t, pow.CheckDigest(genesis.Hash))
}

func TestAppendLinksToTail(t *testing.T) {
	c, _ := newChain(t)

	tx := ledger.NewTransaction("FPI_BANK_EXCHANGE", "fpi_wallet", 0.1, "BTC", ledger.TxBuy)
	block, err := c.Append([]ledger.Transaction{tx})
	require.NoError(t, err)

	blocks, err := c.Blocks()
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, blocks[0].Hash, block.PrevHash)
	assert.Equal(t, uint64(1), block.Index)
	require.Len(t, block.Transactions, 1)
	assert.Equal(t, tx.Id, block.Transactions[0].Id)
	assert.True(t, pow.CheckDigest(block.Hash))
}

func TestValidateAppendOnlyChain(t *testing.T) {
	c, _ := newChain(t)

	for i := 0; i < 5; i++ {
		tx := ledger.NewTransaction("a", "b", float64(i+1), "ETH", ledger.TxTransfer)
		_, err := c.Append([]ledger.Transaction{tx})
		require.NoError(t, err)
	}
	assert.True(t, c.Validate())
	// idempotent, no state mutated between calls
	assert.True(t, c.Validate())
}

func TestValidateDetectsTampering(t *testing.T) {
	tamper := []struct {
		name string
		mut  func(blocks []ledger.Block)
	}{
		{"transactions", func(blocks []ledger.Block) {
			blocks[1].Transactions[0].Amount = 9999
		}},
		{"nonce", func(blocks []ledger.Block) {
			blocks[1].Nonce++
		}},
		{"prevHash", func(blocks []ledger.Block) {
			blocks[2].PrevHash = "00000000"
		}},
	}

	for _, tc := range tamper {
		t.Run(tc.name, func(t *testing.T) {
			st := store.NewMemory()
			c := chain.New(st)
			for i := 0; i < 2; i++ {
				tx := ledger.NewTransaction("a", "b", 1, "BTC", ledger.TxTransfer)
				_, err := c.Append([]ledger.Transaction{tx})
				require.NoError(t, err)
			}
			require.True(t, c.Validate())

			var blocks []ledger.Block
			found, err := store.LoadJSON(st, store.KeyBlockchain, &blocks)
			require.NoError(t, err)
			require.True(t, found)
			tc.mut(blocks)
			require.NoError(t, store.SaveJSON(st, store.KeyBlockchain, blocks))

			// reload the tampered chain through a fresh instance
			assert.False(t, chain.New(st).Validate())
		})
	}
}

func TestTransactionsForOrdering(t *testing.T) {
	c, _ := newChain(t)

	// all appended within the same second with overwhelming likelihood, so
	// insertion order must be preserved by the stable descending sort
	first := ledger.NewTransaction("addr", "x", 1, "BTC", ledger.TxTransfer)
	second := ledger.NewTransaction("y", "addr", 2, "BTC", ledger.TxTransfer)
	third := ledger.NewTransaction("addr", "z", 3, "BTC", ledger.TxTransfer)
	unrelated := ledger.NewTransaction("m", "n", 4, "BTC", ledger.TxTransfer)
	for _, tx := range []ledger.Transaction{first, second, third, unrelated} {
		_, err := c.Append([]ledger.Transaction{tx})
		require.NoError(t, err)
	}

	txs, err := c.TransactionsFor("addr")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	for i := 1; i < len(txs); i++ {
		assert.True(t, txs[i-1].Timestamp >= txs[i].Timestamp)
	}
	if txs[0].Timestamp == txs[2].Timestamp {
		assert.Equal(t, first.Id, txs[0].Id)
		assert.Equal(t, second.Id, txs[1].Id)
		assert.Equal(t, third.Id, txs[2].Id)
	}
}

func TestStats(t *testing.T) {
	c, _ := newChain(t)
	tx := ledger.NewTransaction("a", "b", 1, "ADA", ledger.TxTransfer)
	block, err := c.Append([]ledger.Transaction{tx})
	require.NoError(t, err)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.BlockCount)
	assert.Equal(t, 1, stats.TransactionCount)
	assert.True(t, stats.IsValid)
	assert.Equal(t, block.Timestamp, stats.LastBlockTime)
}

func TestBlockByHash(t *testing.T) {
	c, _ := newChain(t)
	tx := ledger.NewTransaction("a", "b", 1, "BNB", ledger.TxTransfer)
	appended, err := c.Append([]ledger.Transaction{tx})
	require.NoError(t, err)

	block, err := c.BlockByHash(appended.Hash)
	require.NoError(t, err)
	require.NotNil(t, block)
	assert.Equal(t, appended.Index, block.Index)

	missing, err := c.BlockByHash("ffffffff")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// readOnlyStore serves reads but refuses writes, to prove a failed persist
// leaves the in-memory chain untouched.
type readOnlyStore struct {
	store.Store
	failPuts bool
}

func (s *readOnlyStore) Put(key string, value []byte) error {
	if s.failPuts {
		return errors.Wrap(store.ErrUnavailable, "read only")
	}
	return s.Store.Put(key, value)
}

func TestAppendStorageFailureAppliesNothing(t *testing.T) {
	ro := &readOnlyStore{Store: store.NewMemory()}
	c := chain.New(ro)

	_, err := c.Append(nil) // genesis persisted while writable
	require.NoError(t, err)
	ro.failPuts = true

	before, err := c.Blocks()
	require.NoError(t, err)

	_, err = c.Append([]ledger.Transaction{ledger.NewTransaction("a", "b", 1, "BTC", ledger.TxTransfer)})
	require.Error(t, err)
	assert.Equal(t, store.ErrUnavailable, errors.Cause(err))

	after, err := c.Blocks()
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
	assert.True(t, c.Validate())
}
