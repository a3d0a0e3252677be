package pow

import (
	"errors"
	"strings"
)

// Prefix is the difficulty predicate: a digest qualifies when its textual
// form starts with this. Two hex chars keep the expected search around 256
// iterations.
const Prefix = "00"

// MaxIterations bounds the nonce search. The predicate is probabilistic, so
// the loop has no natural exit; the cap turns a pathological input into
// ErrMiningExhausted instead of a hang.
const MaxIterations uint64 = 1 << 22

var ErrMiningExhausted = errors.New("mining exhausted: no qualifying digest within iteration cap")

// CheckDigest reports whether digest satisfies the difficulty predicate.
func CheckDigest(digest string) bool {
	return strings.HasPrefix(digest, Prefix)
}

// Search tries nonce = 1, 2, 3, ... calling seal for each candidate until
// the sealed digest satisfies CheckDigest. Returns the winning nonce and
// digest, or ErrMiningExhausted after MaxIterations attempts.
func Search(seal func(nonce uint64) string) (uint64, string, error) {
	for nonce := uint64(1); nonce <= MaxIterations; nonce++ {
		digest := seal(nonce)
		if CheckDigest(digest) {
			return nonce, digest, nil
		}
	}
	return 0, "", ErrMiningExhausted
}
