package crypto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash256(t *testing.T) {
	a := []byte{1, 2}
	b := []byte{3, 4}

	if !bytes.Equal(Hash256(a, b), Hash256([]byte{1, 2, 3, 4})) {
		t.Fatal("not equal")
	}
}

func TestChecksumDeterminism(t *testing.T) {
	data := []byte("fpi_bank_ledger")
	assert.Equal(t, Checksum(data), Checksum(data))
	assert.Equal(t, ChecksumHex(data), ChecksumHex(data))
}

func TestChecksumOrderSensitive(t *testing.T) {
	assert.NotEqual(t, Checksum([]byte("ab")), Checksum([]byte("ba")))
	// split points must not matter, only byte order
	assert.Equal(t, Checksum([]byte("ab"), []byte("cd")), Checksum([]byte("abcd")))
}

func TestChecksumHexWidth(t *testing.T) {
	assert.Equal(t, 8, len(ChecksumHex([]byte{})))
	assert.Equal(t, 8, len(ChecksumHex([]byte("x"))))
	assert.Equal(t, strings.Repeat("0", 8), ChecksumHex())
}
