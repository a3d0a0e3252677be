package crypto

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

func Hash256(data ...[]byte) []byte {
	d, _ := blake2b.New256(nil)
	for _, item := range data {
		d.Write(item)
	}
	return d.Sum(nil)
}

func Hash(size int, data ...[]byte) []byte {
	d, _ := blake2b.New(size, nil)
	for _, item := range data {
		d.Write(item)
	}
	return d.Sum(nil)
}

// Checksum accumulates h = h*31 + b over every input byte in order.
// It is a toy digest: deterministic and order-sensitive, not collision
// resistant. Chain hashes and transaction signatures only need to be
// reproducible across processes.
func Checksum(data ...[]byte) uint32 {
	var h uint32
	for _, item := range data {
		for _, b := range item {
			h = (h << 5) - h + uint32(b)
		}
	}
	return h
}

// ChecksumHex renders Checksum as fixed-width lowercase hex. The width is
// fixed so a difficulty predicate on the leading characters can be satisfied.
func ChecksumHex(data ...[]byte) string {
	return fmt.Sprintf("%08x", Checksum(data...))
}
