package pow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fpibank/go-fpibank/crypto"
	"github.com/fpibank/go-fpibank/pow"
)

func TestSearch(t *testing.T) {
	payload := []byte("block payload")
	nonce, digest, err := pow.Search(func(n uint64) string {
		return crypto.ChecksumHex(payload, []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)})
	})
	assert.NoError(t, err)
	assert.True(t, nonce >= 1)
	assert.True(t, pow.CheckDigest(digest))
}

func TestSearchExhausted(t *testing.T) {
	calls := uint64(0)
	_, _, err := pow.Search(func(n uint64) string {
		calls++
		return "ff"
	})
	assert.Equal(t, pow.ErrMiningExhausted, err)
	assert.Equal(t, pow.MaxIterations, calls)
}

func TestCheckDigest(t *testing.T) {
	assert.True(t, pow.CheckDigest("00ab12cd"))
	assert.False(t, pow.CheckDigest("0ab12cd0"))
	assert.False(t, pow.CheckDigest(""))
}
